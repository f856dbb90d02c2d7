package export

import "github.com/vango-dev/vango-export/pkg/routepath"

// Request is one render of a leaf screen.
type Request struct {
	// Pathname is the URL path passed to the renderer, without a leading slash.
	Pathname string

	// OutputPath is the file the rendered HTML is stored at.
	OutputPath string

	// Route identifies the leaf that issued the request. Requests from one
	// leaf share it.
	Route string
}

// ScreenRequests returns the renders for the leaf name with the given segment
// under prefix.
//
// A segment that changes under SanitizeName, typically because it contains a
// (group), is rendered twice: once at its literal pathname with the group kept
// in the file name, then at its canonical pathname. Every other segment is
// rendered once. The requests are issued in order.
func ScreenRequests(prefix, name, segment string) []Request {
	filename := name + ".html"
	route := routepath.Join(prefix, name)
	cleanSegment := routepath.SanitizeName(segment)

	reqs := make([]Request, 0, 2)
	if cleanSegment != segment {
		reqs = append(reqs, Request{
			Pathname:   routepath.Join(prefix, segment),
			OutputPath: routepath.Join(prefix, filename),
			Route:      route,
		})
	}
	reqs = append(reqs, Request{
		Pathname:   routepath.Join(prefix, cleanSegment),
		OutputPath: routepath.Join(prefix, routepath.SanitizeName(filename)),
		Route:      route,
	})
	return reqs
}
