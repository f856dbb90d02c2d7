package export

import (
	"context"
	"encoding/json"

	"github.com/vango-dev/vango-export/pkg/manifest"
)

// Server is the dev server the exporter renders through.
// RenderPage must be safe to call concurrently for distinct pathnames.
type Server interface {
	// Routes returns the route manifest.
	Routes(ctx context.Context) (*manifest.Manifest, error)

	// RenderPage renders a single pathname.
	RenderPage(ctx context.Context, pathname string, opts RenderOptions) (*Page, error)

	// Functions returns the routes manifest and server function sources.
	Functions(ctx context.Context, opts RenderOptions) (*Functions, error)
}

// RenderOptions are passed through to the dev server.
type RenderOptions struct {
	// Mode is the bundling mode, "production" for exports.
	Mode string

	// Minify asks the server to minify the output.
	Minify bool
}

// Page is the result of rendering one pathname.
type Page struct {
	// FetchData reports whether the route loads data at request time.
	FetchData bool

	// ScriptContents is the inline script the server produced, if any.
	ScriptContents string

	// Render produces the HTML document.
	Render func() (string, error)
}

// Functions is the server side of an export.
type Functions struct {
	// Routes is the routes manifest written to .expo/routes.json.
	Routes json.RawMessage

	// Files maps function file paths to their source text.
	Files map[string]string
}

// RenderFunc renders a pathname. It is the dev server's RenderPage with the
// render options bound.
type RenderFunc func(ctx context.Context, pathname string) (*Page, error)
