package source

import "testing"

func TestFileSetDeduplicatesPaths(t *testing.T) {
	fs := NewFileSet()
	a := fs.Add("demo/ferrum.toml")
	b := fs.Add("demo/ferrum.toml")
	if a != b {
		t.Fatalf("expected same id for same path, got %d and %d", a, b)
	}
	if a == NoFileID {
		t.Fatalf("registered file must not use the reserved id")
	}
	if got := fs.Path(a); got != "demo/ferrum.toml" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestFileSetFormat(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("main.toml")
	if got := fs.Format(Span{File: id, Line: 3, Col: 7}); got != "main.toml:3:7" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := fs.Format(Span{File: id, Line: 3}); got != "main.toml:3" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := fs.Format(Span{File: 42}); got != "<unknown>" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestSpanBefore(t *testing.T) {
	a := Span{File: 1, Line: 2, Col: 1}
	b := Span{File: 1, Line: 2, Col: 5}
	c := Span{File: 2, Line: 1, Col: 1}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("column ordering broken")
	}
	if !b.Before(c) {
		t.Fatalf("file ordering broken")
	}
}
