package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vango-export/internal/config"
	"github.com/vango-dev/vango-export/internal/errors"
	"github.com/vango-dev/vango-export/internal/preview"
)

func serveCmd() *cobra.Command {
	var (
		dir     string
		host    string
		port    int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview an export locally",
		Long: `Serve an export directory the way a static host would.

  /about       serves about.html
  /blog/       serves blog/index.html
  /metrics     Prometheus metrics
  .expo/       is never served

A 404.html in the export root is used for missing pages.

Examples:
  vango-export serve
  vango-export serve --dir=site --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(".")
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.OutputPath()
			}
			if host != "" {
				cfg.Preview.Host = host
			}
			if port != 0 {
				cfg.Preview.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(dir, cfg.PreviewAddress(), verbose)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Export directory (default from vango.json)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (default from vango.json)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vango.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")

	return cmd
}

func runServe(dir, addr string, verbose bool) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.Newf(errors.CategoryCLI, "Export directory %s does not exist", dir).
			WithSuggestion("Run 'vango-export export' first")
	}

	logger := newLogger(verbose)
	srv := preview.New(preview.Options{
		Dir:    dir,
		Addr:   addr,
		Logger: logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	printBanner()
	success("Serving %s at http://%s", dir, srv.Addr())
	info("Press Ctrl+C to stop")

	return srv.ListenAndServe(ctx)
}
