package manifest

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vango-dev/vango-export/internal/errors"
)

// DefaultExtensions are the file extensions treated as route files.
var DefaultExtensions = []string{".go", ".tsx", ".ts", ".jsx", ".js"}

// paramPattern matches [param], [param:type] and [...param].
var paramPattern = regexp.MustCompile(`\[([.\w]+)(?::(\w+))?\]`)

// Scanner builds a manifest from a file-based routes directory.
//
//	app/
//	├── index.tsx          → "index": ""
//	├── about.tsx          → "about": "about"
//	├── _layout.tsx        → skipped
//	├── (tabs)/
//	│   └── home.tsx       → "(tabs)": {"path": "(tabs)", "screens": {"home": "home"}}
//	└── blog/
//	    └── [id].tsx       → "blog": {"path": "blog", "screens": {"[id]": ":id"}}
type Scanner struct {
	rootDir    string
	extensions map[string]bool
}

// NewScanner creates a scanner for rootDir. With no extensions given,
// DefaultExtensions are used.
func NewScanner(rootDir string, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Scanner{rootDir: rootDir, extensions: exts}
}

// Scan walks the routes directory and returns the manifest.
func (s *Scanner) Scan() (*Manifest, error) {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return nil, errors.New("E201").
			WithPathname(s.rootDir).
			WithDetail("Routes directory not found").
			Wrap(err)
	}
	if !info.IsDir() {
		return nil, errors.New("E201").
			WithPathname(s.rootDir).
			WithDetail("Routes path is not a directory")
	}

	screens, err := s.scanDir(s.rootDir)
	if err != nil {
		return nil, err
	}
	return &Manifest{Screens: screens}, nil
}

func (s *Scanner) scanDir(dir string) (Screens, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New("E201").WithPathname(dir).Wrap(err)
	}

	screens := make(Screens)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		var node Node
		if entry.IsDir() {
			children, err := s.scanDir(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				continue
			}
			node = &Branch{Name: name, Path: convertParams(name), Screens: children}
		} else {
			ext := filepath.Ext(name)
			if !s.extensions[ext] || strings.HasSuffix(name, "_test.go") {
				continue
			}
			base := strings.TrimSuffix(name, ext)
			if isSpecialFile(base) {
				continue
			}
			segment := convertParams(base)
			if base == "index" {
				segment = ""
			}
			name = base
			node = &Leaf{Name: base, Segment: segment}
		}

		if _, exists := screens[name]; exists {
			rel, _ := filepath.Rel(s.rootDir, filepath.Join(dir, name))
			return nil, errors.New("E201").
				WithPathname(filepath.ToSlash(rel)).
				WithDetail("Multiple route files resolve to the same screen name").
				WithSuggestion("Rename or remove one of the conflicting files")
		}
		screens[name] = node
	}
	return screens, nil
}

// isSpecialFile reports whether a route file defines layout, middleware or
// error handling rather than a screen. Special files start with "_" but do
// not end with it, matching _layout, _middleware and _error.
func isSpecialFile(base string) bool {
	if strings.HasPrefix(base, "_") && !strings.HasSuffix(base, "_") {
		return true
	}
	switch base {
	case "layout", "middleware", "routes_gen":
		return true
	}
	return false
}

// convertParams converts bracket parameters to router notation:
//   - [id] → :id
//   - [id:int] → :id
//   - [...slug] → *slug
func convertParams(path string) string {
	return paramPattern.ReplaceAllStringFunc(path, func(match string) string {
		inner := match[1 : len(match)-1]
		if strings.HasPrefix(inner, "...") {
			return "*" + inner[3:]
		}
		if idx := strings.Index(inner, ":"); idx != -1 {
			return ":" + inner[:idx]
		}
		return ":" + inner
	})
}
