package ast

import "ferrum/internal/source"

// StructDecl is `struct Name<Generics...> { Fields... }` in Namespace.
type StructDecl struct {
	Name      string
	Namespace string
	Generics  []string
	Fields    []FieldDecl
	Span      source.Span
}

type FieldDecl struct {
	Name string
	Type TypeID
	Span source.Span
}

// EnumDecl is `enum Name<Generics...> { Variants... }` in Namespace.
type EnumDecl struct {
	Name      string
	Namespace string
	Generics  []string
	Variants  []VariantDecl
	Span      source.Span
}

type VariantDecl struct {
	Name   string
	Params []TypeID
	Span   source.Span
}
