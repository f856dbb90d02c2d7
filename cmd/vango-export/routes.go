package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vango-export/internal/config"
	"github.com/vango-dev/vango-export/pkg/manifest"
)

func routesCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "routes [dir]",
		Short: "Print the route manifest of a routes directory",
		Long: `Scan a file-based routes directory and print its route manifest.

Directories become nested screens, (group) directories are kept as
groups, index files map to the empty segment and [param] files to
:param segments.

Examples:
  vango-export routes
  vango-export routes app/routes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := config.LoadOrDefault(".")
				if err != nil {
					return err
				}
				dir = cfg.RoutesPath()
			}
			return runRoutes(dir, summary)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print only the number of screens")

	return cmd
}

func runRoutes(dir string, summary bool) error {
	m, err := manifest.NewScanner(dir).Scan()
	if err != nil {
		return err
	}

	if summary {
		success("%d screens in %s", m.Count(), dir)
		return nil
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
