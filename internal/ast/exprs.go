package ast

import "ferrum/internal/source"

type ExprKind uint8

const (
	// ExprLit is a literal value of Type placed in fresh stack storage.
	ExprLit ExprKind = iota + 1
	// ExprIdent names a variable whose data is moved out.
	ExprIdent
	// ExprRef is &Name.
	ExprRef
	// ExprMutRef is &mut Name.
	ExprMutRef
	// ExprHeap allocates a value of Type on the heap.
	ExprHeap
)

type Expr struct {
	Kind ExprKind
	Name string
	Type TypeID
	Span source.Span
}
