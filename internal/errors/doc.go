// Package errors provides structured, actionable error messages for
// vango-export.
//
// Every failure the exporter can surface is registered under a code with a
// short message, a longer explanation and a documentation link. Callers
// attach the pathname being exported, a cleaned detail message and a
// suggestion before returning the error up the stack.
//
// # Error Categories
//
//   - render: the dev server failed to render a route
//   - manifest: the route manifest is malformed
//   - server: the dev server could not be reached or returned bad data
//   - filesystem: writing the export failed
//   - publish: uploading the export failed
//   - config: vango.json or environment problems
//   - cli: command line usage problems
//
// # Usage
//
//	err := errors.New("E200").
//	    WithPathname("/blog/post").
//	    WithDetail("Cannot find module './missing'").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E200: Static render failed
//	//
//	//   /blog/post
//	//
//	//   Cannot find module './missing'
//	//
//	//   Learn more: https://vango.dev/docs/errors/E200
package errors
