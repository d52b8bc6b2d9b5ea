package main

import (
	"bytes"
	"testing"

	"ferrum/internal/mono"
	"ferrum/internal/types"
)

func TestPrintInstances(t *testing.T) {
	recs := []mono.Record{
		{Template: "demo::Pair", Args: []types.Type{types.U32, types.U8}, Fingerprint: 0xabc, Result: "demo::Pair<u32, u8>"},
		{Template: "main", Fingerprint: 1, Result: "fn main"},
	}
	var buf bytes.Buffer
	if err := printInstances(&buf, recs); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := "0000000000000abc  demo::Pair<u32, u8> => demo::Pair<u32, u8>\n" +
		"0000000000000001  main => fn main\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s", buf.String())
	}
}
