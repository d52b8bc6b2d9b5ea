package diagfmt

import (
	"path/filepath"

	"ferrum/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode, base string) string {
	path := fs.Path(id)
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		if rel, err := filepath.Rel(base, abs); err == nil {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// location renders path:line:col, dropping parts that are unknown.
func location(fs *source.FileSet, sp source.Span, mode PathMode, base string) string {
	path := formatPath(fs, sp.File, mode, base)
	if path == "" {
		path = "<unknown>"
	}
	return source.FormatSpan(path, sp)
}
