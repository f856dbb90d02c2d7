package export

import (
	"sort"
	"sync"
)

// File is one entry of a FileSet.
type File struct {
	Path     string
	Contents string
}

type fileEntry struct {
	contents string
	owner    string
}

// FileSet maps output paths to file contents. It is safe for concurrent use.
//
// A path is claimed with Reserve before its contents are known; the
// placeholder stays empty until Set stores the rendered file.
type FileSet struct {
	mu      sync.Mutex
	entries map[string]*fileEntry
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{entries: make(map[string]*fileEntry)}
}

// Reserve claims path for owner if it is free. When the path is already
// claimed it returns the existing owner and false.
func (fs *FileSet) Reserve(path, owner string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if e, ok := fs.entries[path]; ok {
		return e.owner, false
	}
	fs.entries[path] = &fileEntry{owner: owner}
	return "", true
}

// Set stores contents for path, claiming it if needed.
func (fs *FileSet) Set(path, contents string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if e, ok := fs.entries[path]; ok {
		e.contents = contents
		return
	}
	fs.entries[path] = &fileEntry{contents: contents}
}

// Get returns the contents stored for path.
func (fs *FileSet) Get(path string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	e, ok := fs.entries[path]
	if !ok {
		return "", false
	}
	return e.contents, true
}

// Has reports whether path is claimed.
func (fs *FileSet) Has(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.entries[path]
	return ok
}

// Len returns the number of claimed paths.
func (fs *FileSet) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.entries)
}

// Sorted returns the entries ordered by path.
func (fs *FileSet) Sorted() []File {
	fs.mu.Lock()
	files := make([]File, 0, len(fs.entries))
	for path, e := range fs.entries {
		files = append(files, File{Path: path, Contents: e.contents})
	}
	fs.mu.Unlock()

	sortFiles(files)
	return files
}

func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
