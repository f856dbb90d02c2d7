package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/vango-export/internal/config"
)

func TestApplyExportFlags(t *testing.T) {
	cmd := exportCmd()
	if err := cmd.ParseFlags([]string{
		"--output", "site",
		"--script", "/a.js",
		"--script", "/b.js",
		"--strict",
		"--concurrency", "3",
		"--dev-url", "http://127.0.0.1:9000",
		"--bucket", "my-site",
	}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	var flags exportFlags
	f := cmd.Flags()
	flags.output, _ = f.GetString("output")
	flags.scripts, _ = f.GetStringArray("script")
	flags.strict, _ = f.GetBool("strict")
	flags.concurrency, _ = f.GetInt("concurrency")
	flags.devURL, _ = f.GetString("dev-url")
	flags.bucket, _ = f.GetString("bucket")

	cfg := config.New()
	cfg.Export.Minify = true
	cfg.Publish.Prefix = "from-config/"
	applyExportFlags(cmd, cfg, flags)

	if cfg.Build.Output != "site" {
		t.Errorf("Build.Output = %q", cfg.Build.Output)
	}
	if len(cfg.Export.Scripts) != 2 || cfg.Export.Scripts[0] != "/a.js" {
		t.Errorf("Export.Scripts = %v", cfg.Export.Scripts)
	}
	if !cfg.Export.Strict || cfg.Export.Concurrency != 3 {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if !cfg.Export.Minify {
		t.Error("unset --minify should keep the configured value")
	}
	if cfg.DevURL() != "http://127.0.0.1:9000" {
		t.Errorf("DevURL() = %q", cfg.DevURL())
	}
	if cfg.Publish.Bucket != "my-site" || cfg.Publish.Prefix != "from-config/" {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
}

func TestRunRoutes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.go", "about.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("package routes\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := runRoutes(dir, true); err != nil {
		t.Errorf("runRoutes() error = %v", err)
	}
	if err := runRoutes(filepath.Join(dir, "missing"), false); err == nil {
		t.Error("runRoutes() on a missing directory should fail")
	}
}
