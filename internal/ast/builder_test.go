package ast

import (
	"testing"

	"ferrum/internal/source"
)

func TestBuilderTypeString(t *testing.T) {
	b := NewBuilder()
	var sp source.Span
	u32 := b.PathType("u32", sp)
	pair := b.PathType("demo::Pair", sp, u32, b.PathType("u8", sp))
	ref := b.RefType(pair, true, sp)
	tup := b.TupleType([]TypeID{b.PtrType(u32, false, sp)}, sp)

	if got := b.TypeString(ref); got != "&mut demo::Pair<u32, u8>" {
		t.Fatalf("ref = %q", got)
	}
	if got := b.TypeString(tup); got != "(*u32,)" {
		t.Fatalf("tuple = %q", got)
	}
	ns, name := b.Type(pair).Namespace()
	if ns != "demo" || name != "Pair" {
		t.Fatalf("namespace split = %q %q", ns, name)
	}
}

func TestArenaIDs(t *testing.T) {
	b := NewBuilder()
	if b.Stmt(NoStmtID) != nil || b.Stmt(StmtID(7)) != nil {
		t.Fatalf("invalid ids must return nil")
	}
	id := b.Let("x", false, NoTypeID, b.Lit(b.PathType("u8", source.Span{}), source.Span{}), source.Span{Line: 1})
	st := b.Stmt(id)
	if st == nil || st.Kind != StmtLet || st.Name != "x" || !st.Value.IsValid() {
		t.Fatalf("stmt = %+v", st)
	}
}
