// Package export renders a route manifest into a flat set of static files.
//
// The export runs in two phases. CollectFiles walks the manifest, one
// goroutine per screen, and renders every route through the dev server into
// an in-memory FileSet. Each output path is claimed with FileSet.Reserve
// before its render starts, so routes that resolve to the same file are
// rendered exactly once. Exporter.Export then fetches the server functions
// manifest and commits everything to disk in sorted order:
//
//	<outputDir>/
//	├── .expo/routes.json          # routes manifest, 2-space indent
//	├── .expo/functions/<path>.js  # one file per server function
//	└── <route>.html               # one file per exported route
//
// The first render or write failure aborts the export. Files already written
// by that point are left on disk.
//
// # Usage
//
//	exp := export.New(devserver.NewClient(url), export.Options{
//	    OutputDir: "dist",
//	    Scripts:   []string{"/bundle.js"},
//	})
//	result, err := exp.Export(ctx)
package export
