package main

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vango-export/internal/config"
	"github.com/vango-dev/vango-export/internal/devserver"
	"github.com/vango-dev/vango-export/internal/errors"
	"github.com/vango-dev/vango-export/internal/export"
	"github.com/vango-dev/vango-export/internal/publish"
)

type exportFlags struct {
	output      string
	scripts     []string
	minify      bool
	strict      bool
	devURL      string
	start       bool
	bucket      string
	prefix      string
	concurrency int
	metricsFile string
	verbose     bool
}

func exportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all routes to static files",
		Long: `Render every route of the dev server to static HTML.

This command:
  • Fetches the route manifest from the dev server
  • Renders each route once, in parallel
  • Writes HTML pages, server functions and .expo/routes.json
  • Uploads the export to S3 when a bucket is set

Examples:
  vango-export export
  vango-export export --output=site --script=/bundle.js
  vango-export export --start --bucket=my-site --prefix=preview/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output directory (default from vango.json)")
	f.StringArrayVar(&flags.scripts, "script", nil, "Script appended to every page (repeatable)")
	f.BoolVar(&flags.minify, "minify", false, "Ask the dev server for minified output")
	f.BoolVar(&flags.strict, "strict", false, "Fail when two routes export the same file")
	f.StringVar(&flags.devURL, "dev-url", "", "Dev server URL (default from vango.json)")
	f.BoolVar(&flags.start, "start", false, "Start the dev server for the export")
	f.StringVar(&flags.bucket, "bucket", "", "Also upload the export to this S3 bucket")
	f.StringVar(&flags.prefix, "prefix", "", "Key prefix inside the bucket")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Maximum parallel renders (0 = unlimited)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write export metrics in Prometheus text format")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	cfg, err := config.LoadOrDefault(".")
	if err != nil {
		return err
	}
	applyExportFlags(cmd, cfg, flags)

	if err := cfg.Validate(); err != nil {
		return err
	}
	readyTimeout, _ := cfg.ReadyTimeout()

	logger := newLogger(flags.verbose)

	client, err := devserver.NewClient(cfg.DevURL(), devserver.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if flags.start {
		info("Starting dev server...")
		mgr := devserver.NewManager(client, devserver.ManagerOptions{
			Command:      cfg.Dev.Command,
			Dir:          cfg.Dir(),
			ReadyTimeout: readyTimeout,
			Logger:       logger,
		})
		if err := mgr.Start(ctx); err != nil {
			return err
		}
		defer mgr.Stop()
	}

	var sinks []export.Sink
	if cfg.Publish.Bucket != "" {
		sink, err := newS3Sink(ctx, cfg.Publish)
		if err != nil {
			return err
		}
		sinks = append(sinks, sink)
	}

	reg := prometheus.NewRegistry()

	fmt.Printf("  Exporting %s to %s...\n", client.URL(), cfg.OutputPath())
	fmt.Println()

	exp := export.New(client, export.Options{
		OutputDir:   cfg.OutputPath(),
		Scripts:     cfg.Export.Scripts,
		Minify:      cfg.Export.Minify,
		Strict:      cfg.Export.Strict,
		Concurrency: cfg.Export.Concurrency,
		Publish:     sinks,
		Logger:      logger,
		Metrics:     export.NewMetrics(reg),
		OnProgress: func(step string) {
			info(step)
		},
		OnFile: func(kind export.FileKind, f export.FileInfo) {
			info("  %s (%s)", f.Path, humanize.Bytes(uint64(f.Size)))
		},
	})

	result, err := exp.Export(ctx)
	if err != nil {
		return err
	}

	if flags.metricsFile != "" {
		if err := prometheus.WriteToTextfile(flags.metricsFile, reg); err != nil {
			warn("Could not write metrics to %s: %v", flags.metricsFile, err)
		}
	}

	fmt.Println()
	success("Exported %d pages and %d functions in %s",
		len(result.Pages), len(result.Functions), result.Duration.Round(1000000))
	if cfg.Publish.Bucket != "" {
		success("Published to s3://%s/%s", cfg.Publish.Bucket, cfg.Publish.Prefix)
	}
	fmt.Println()
	fmt.Println("  To preview:")
	fmt.Printf("    vango-export serve --dir=%s\n", cfg.OutputPath())
	fmt.Println()

	return nil
}

// applyExportFlags overrides the configuration with explicitly set flags.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, flags exportFlags) {
	changed := cmd.Flags().Changed

	if flags.output != "" {
		cfg.Build.Output = flags.output
	}
	if changed("script") {
		cfg.Export.Scripts = flags.scripts
	}
	if changed("minify") {
		cfg.Export.Minify = flags.minify
	}
	if changed("strict") {
		cfg.Export.Strict = flags.strict
	}
	if changed("concurrency") {
		cfg.Export.Concurrency = flags.concurrency
	}
	if flags.devURL != "" {
		cfg.Dev.URL = flags.devURL
	}
	if flags.bucket != "" {
		cfg.Publish.Bucket = flags.bucket
	}
	if changed("prefix") {
		cfg.Publish.Prefix = flags.prefix
	}
}

func newS3Sink(ctx context.Context, pc config.PublishConfig) (*publish.S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if pc.Region != "" {
		opts = append(opts, awsconfig.WithRegion(pc.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E206").
			WithDetail("Could not load AWS configuration.").
			WithSuggestion("Set AWS_REGION and credentials, or configure a profile").
			Wrap(err)
	}
	slog.Debug("publishing export", "bucket", pc.Bucket, "prefix", pc.Prefix, "region", awsCfg.Region)

	return publish.NewS3Sink(s3.NewFromConfig(awsCfg), pc.Bucket, pc.Prefix), nil
}
