package ast

import (
	"strings"

	"ferrum/internal/source"
)

type TypeKind uint8

const (
	TypePath TypeKind = iota + 1 // ns::Name<Args...> or a builtin like u32
	TypeRef
	TypeMutRef
	TypePtr
	TypeMutPtr
	TypeTuple
)

// TypeExpr is a type annotation as written. Path types carry the qualified
// name and generic arguments; wrappers carry Elem; tuples carry Elems.
type TypeExpr struct {
	Kind  TypeKind
	Path  string
	Args  []TypeID
	Elem  TypeID
	Elems []TypeID
	Span  source.Span
}

// Namespace splits a path type into namespace and declaration name.
func (t *TypeExpr) Namespace() (ns string, name string) {
	if i := strings.LastIndex(t.Path, "::"); i >= 0 {
		return t.Path[:i], t.Path[i+2:]
	}
	return "", t.Path
}
