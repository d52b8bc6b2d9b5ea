package main

import (
	"bytes"
	"strings"
	"testing"

	"ferrum/internal/types"
)

func TestPrintLayoutAlignsColumns(t *testing.T) {
	s, err := types.NewStruct("Point", "geo", []types.StructMember{
		{Name: "x", Type: types.U32},
		{Name: "緯度経度", Type: types.U8},
	}, nil)
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	var buf bytes.Buffer
	if err := printLayout(&buf, types.StructType(s)); err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "geo::Point  size 5" {
		t.Fatalf("output:\n%s", buf.String())
	}
	want := []string{
		"  member    type  offset  size",
		"  x         u32        0     4",
		"  緯度経度  u8         4     1",
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i+1], w)
		}
	}
}
