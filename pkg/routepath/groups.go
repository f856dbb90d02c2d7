package routepath

import (
	"regexp"
	"strings"
)

// groupPattern matches a single fragment fully wrapped in parentheses.
var groupPattern = regexp.MustCompile(`^\(([^/]+?)\)$`)

// MatchGroupName reports whether fragment is a route group marker such as
// "(tabs)" and returns the name inside the parentheses.
func MatchGroupName(fragment string) (string, bool) {
	m := groupPattern.FindStringSubmatch(fragment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SanitizeName strips route group markers from a "/"-separated segment.
// Empty fragments are dropped, so the result never has leading, trailing or
// doubled slashes. SanitizeName is idempotent.
func SanitizeName(segment string) string {
	parts := strings.Split(segment, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := MatchGroupName(p); ok {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// Join joins the non-empty parts with "/".
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
