package types

import (
	"fmt"
	"slices"

	"ferrum/internal/layout"
)

// StructMember is a single field of a concrete struct.
type StructMember struct {
	Name   string
	Type   Type
	Offset int
}

// Struct is a concrete struct type, immutable once defined.
//
// Fields keep declaration order; the byte layout is fixed once in Define.
type Struct struct {
	name        string
	namespace   Namespace
	fields      []StructMember
	index       map[string]int
	fingerprint uint64
	args        []Type
	size        int
	defined     bool
}

// NewStruct builds and lays out a struct. generics is the table the struct
// was instantiated with, nil for non-generic declarations.
func NewStruct(name string, ns Namespace, fields []StructMember, generics *GenericsTable) (*Struct, error) {
	s := DeclareStruct(name, ns, generics)
	if err := s.Define(fields); err != nil {
		return nil, err
	}
	return s, nil
}

// DeclareStruct returns a struct with identity but no fields yet. The handle
// may be referenced through pointers and references before Define runs,
// which is how `struct List { next: *List }` is built.
func DeclareStruct(name string, ns Namespace, generics *GenericsTable) *Struct {
	return &Struct{
		name:        name,
		namespace:   ns,
		fingerprint: generics.Fingerprint(),
		args:        generics.Types(),
	}
}

// Define sets the fields and lays the struct out. It may be called once.
func (s *Struct) Define(fields []StructMember) error {
	if s.defined {
		return fmt.Errorf("struct %s: already defined", s.namespace.Qualify(s.name))
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			return fmt.Errorf("struct %s: duplicate field %q", s.namespace.Qualify(s.name), f.Name)
		}
		index[f.Name] = i
	}
	s.fields, s.index = slices.Clone(fields), index
	s.align()
	if err := layout.Ferrum64().Check(s.namespace.Qualify(s.name), s.size); err != nil {
		return err
	}
	s.defined = true
	return nil
}

// Defined reports whether Define has completed.
func (s *Struct) Defined() bool { return s != nil && s.defined }

// align assigns field offsets in declaration order and recomputes the size.
func (s *Struct) align() {
	sizes := make([]int, len(s.fields))
	for i := range s.fields {
		sizes[i] = s.fields[i].Type.Size()
	}
	offsets, total := layout.Sequential(sizes)
	for i := range s.fields {
		s.fields[i].Offset = offsets[i]
	}
	s.size = total
}

func (s *Struct) Name() string         { return s.name }
func (s *Struct) Namespace() Namespace { return s.namespace }
func (s *Struct) Fingerprint() uint64  { return s.fingerprint }

// Size returns the byte size of the struct.
func (s *Struct) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Args returns the generic arguments the struct was instantiated with.
func (s *Struct) Args() []Type { return slices.Clone(s.args) }

// NumFields returns the number of fields.
func (s *Struct) NumFields() int { return len(s.fields) }

// Fields returns a copy of the fields in declaration order.
func (s *Struct) Fields() []StructMember { return slices.Clone(s.fields) }

// Field looks a field up by name.
func (s *Struct) Field(name string) (StructMember, bool) {
	i, ok := s.index[name]
	if !ok {
		return StructMember{}, false
	}
	return s.fields[i], true
}

// MatchesGenerics reports whether s was generated with the given table.
func (s *Struct) MatchesGenerics(generics *GenericsTable) bool {
	return s.fingerprint == generics.Fingerprint()
}

// Equal compares name, namespace and fingerprint. When both sides recorded
// generic arguments they are compared too, so a fingerprint collision does
// not merge two distinct instantiations.
func (s *Struct) Equal(o *Struct) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.name != o.name || s.namespace != o.namespace || s.fingerprint != o.fingerprint {
		return false
	}
	return typesEqual(s.args, o.args)
}
