package ast

import "ferrum/internal/source"

type StmtKind uint8

const (
	StmtLet StmtKind = iota + 1
	StmtAssign
	StmtSwap
	StmtBlock
)

// Stmt is one statement. Let uses Name, Mutable, Type (optional) and Value;
// Assign uses Name and Value; Swap uses Name and Other; Block uses Body.
type Stmt struct {
	Kind    StmtKind
	Name    string
	Other   string
	Mutable bool
	Type    TypeID
	Value   ExprID
	Body    []StmtID
	Span    source.Span
}

// Func is `fn Name<Generics...>(Params...) -> Return { Body }` in Namespace.
// A method names its Owner aggregate; the owner's generics come first and an
// implicit `self: &Owner<...>` parameter precedes Params. A generic body is
// checked once per entry of Instances, each listing every generic argument.
type Func struct {
	Name      string
	Namespace string
	Owner     string
	Generics  []string
	Params    []Param
	Return    TypeID
	Instances [][]TypeID
	Body      []StmtID
	Span      source.Span
}

// Param is one function parameter. It enters the body initialised.
type Param struct {
	Name    string
	Type    TypeID
	Mutable bool
	Span    source.Span
}

// Global is a program-wide static declaration.
type Global struct {
	Name    string
	Mutable bool
	Type    TypeID
	Span    source.Span
}
