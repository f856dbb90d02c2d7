package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Sink receives exported files. Names are slash-separated and relative to
// the export root. WriteFile must be safe for concurrent use.
type Sink interface {
	WriteFile(ctx context.Context, name string, data []byte) error
}

// DirSink writes files below a local directory.
type DirSink struct {
	Root string
}

// WriteFile writes data to Root/name, creating parent directories.
func (s DirSink) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := cleanName(name)
	if err != nil {
		return err
	}

	dest := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

// cleanName cleans a slash-separated file name and rejects names that leave
// the export root.
func cleanName(name string) (string, error) {
	rel := path.Clean(strings.TrimPrefix(name, "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return rel, nil
}

// Tee returns a Sink that writes every file to all sinks concurrently.
func Tee(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) WriteFile(ctx context.Context, name string, data []byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range t {
		g.Go(func() error {
			return s.WriteFile(gctx, name, data)
		})
	}
	return g.Wait()
}
