package source

import (
	"fmt"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// NoFileID marks spans that do not belong to a registered file.
const NoFileID FileID = 0

// FileSet keeps the paths of every file that produced spans.
type FileSet struct {
	paths []string
	index map[string]FileID
}

// NewFileSet creates an empty set; id 0 is reserved.
func NewFileSet() *FileSet {
	return &FileSet{
		paths: []string{""},
		index: make(map[string]FileID),
	}
}

// Add registers path and returns its id. Adding the same path twice returns the same id.
func (fs *FileSet) Add(path string) FileID {
	if id, ok := fs.index[path]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(fs.paths))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	fs.paths = append(fs.paths, path)
	fs.index[path] = id
	return id
}

// Path returns the registered path for id, or "" when unknown.
func (fs *FileSet) Path(id FileID) string {
	if fs == nil || id == NoFileID || int(id) >= len(fs.paths) {
		return ""
	}
	return fs.paths[id]
}

// Format renders a span as path:line:col using the registered path.
func (fs *FileSet) Format(sp Span) string {
	path := fs.Path(sp.File)
	if path == "" {
		path = "<unknown>"
	}
	return FormatSpan(path, sp)
}

// FormatSpan renders sp against an explicit path.
func FormatSpan(path string, sp Span) string {
	switch {
	case sp.Line == 0:
		return path
	case sp.Col == 0:
		return fmt.Sprintf("%s:%d", path, sp.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
	}
}
