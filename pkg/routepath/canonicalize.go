package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// CanonicalizeResult contains the result of path canonicalization.
type CanonicalizeResult struct {
	// Path is the canonicalized path (without query string).
	Path string

	// Query is the query string (without leading "?").
	Query string

	// Changed indicates if the path was modified during canonicalization.
	Changed bool
}

// Path canonicalization errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// CanonicalizePath normalizes a request path:
//   - trailing slash removed (except for root "/")
//   - repeated slashes collapsed
//   - "." segments removed and ".." segments resolved
//
// Backslashes, NUL bytes, malformed percent escapes and ".." segments that
// would climb above the root are rejected. A query string is split off and
// returned untouched.
func CanonicalizePath(input string) (CanonicalizeResult, error) {
	if input == "" {
		return CanonicalizeResult{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return CanonicalizeResult{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return CanonicalizeResult{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return CanonicalizeResult{}, err
		}
	}

	original := path

	var result []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return CanonicalizeResult{}, ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
		default:
			result = append(result, seg)
		}
	}

	path = "/" + strings.Join(result, "/")

	return CanonicalizeResult{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// RelativeFilePath canonicalizes a request path and decodes it into a
// slash-separated path relative to a served root. The root maps to "".
func RelativeFilePath(input string) (string, error) {
	res, err := CanonicalizePath(input)
	if err != nil {
		return "", err
	}
	decoded, err := url.PathUnescape(strings.TrimPrefix(res.Path, "/"))
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	// Decoding may reintroduce separators or dot segments.
	if strings.Contains(decoded, "\\") {
		return "", ErrBackslashInPath
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", ErrPathEscapesRoot
		}
	}
	return decoded, nil
}

// validatePercentEscapes checks that all percent-escapes are %XX with hex digits.
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
