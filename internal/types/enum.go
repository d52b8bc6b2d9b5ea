package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"ferrum/internal/layout"
)

// EnumParam is one payload parameter of a variant.
type EnumParam struct {
	Type   Type
	Offset int // relative to the start of the payload
}

// EnumVariant is a single variant. ID is the tag value.
type EnumVariant struct {
	Name   string
	ID     uint8
	Params []EnumParam
}

// EnumVariantDecl is the input to NewEnum, IDs are assigned in order.
type EnumVariantDecl struct {
	Name   string
	Params []Type
}

// Enum is a concrete tagged union, immutable once defined.
type Enum struct {
	name        string
	namespace   Namespace
	variants    []EnumVariant
	index       map[string]int
	fingerprint uint64
	args        []Type
	size        int
	defined     bool
}

// NewEnum builds and lays out an enum. Variant ids follow declaration order.
func NewEnum(name string, ns Namespace, decls []EnumVariantDecl, generics *GenericsTable) (*Enum, error) {
	e := DeclareEnum(name, ns, generics)
	if err := e.Define(decls); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareEnum is the enum counterpart of DeclareStruct.
func DeclareEnum(name string, ns Namespace, generics *GenericsTable) *Enum {
	return &Enum{
		name:        name,
		namespace:   ns,
		fingerprint: generics.Fingerprint(),
		args:        generics.Types(),
	}
}

// Define sets the variants and lays the enum out. It may be called once.
func (e *Enum) Define(decls []EnumVariantDecl) error {
	qualified := e.namespace.Qualify(e.name)
	if e.defined {
		return fmt.Errorf("enum %s: already defined", qualified)
	}
	variants := make([]EnumVariant, len(decls))
	index := make(map[string]int, len(decls))
	for i, d := range decls {
		id, err := safecast.Conv[uint8](i)
		if err != nil {
			return &layout.LayoutError{Kind: layout.LayoutErrTooManyVariants, Name: qualified, Value: len(decls)}
		}
		if _, dup := index[d.Name]; dup {
			return fmt.Errorf("enum %s: duplicate variant %q", qualified, d.Name)
		}
		params := make([]EnumParam, len(d.Params))
		for j, p := range d.Params {
			params[j] = EnumParam{Type: p}
		}
		variants[i] = EnumVariant{Name: d.Name, ID: id, Params: params}
		index[d.Name] = i
	}
	e.variants, e.index = variants, index
	e.align()
	if err := layout.Ferrum64().Check(qualified, e.size); err != nil {
		return err
	}
	e.defined = true
	return nil
}

// Defined reports whether Define has completed.
func (e *Enum) Defined() bool { return e != nil && e.defined }

// align lays every variant out from offset 0 and sets the size to the
// largest payload.
func (e *Enum) align() {
	sizes := make([][]int, len(e.variants))
	for i, v := range e.variants {
		sizes[i] = make([]int, len(v.Params))
		for j, p := range v.Params {
			sizes[i][j] = p.Type.Size()
		}
	}
	offsets, total := layout.Union(sizes)
	for i := range e.variants {
		for j := range e.variants[i].Params {
			e.variants[i].Params[j].Offset = offsets[i][j]
		}
	}
	e.size = total
}

func (e *Enum) Name() string         { return e.name }
func (e *Enum) Namespace() Namespace { return e.namespace }
func (e *Enum) Fingerprint() uint64  { return e.fingerprint }

// Size returns the payload size of the enum in bytes.
func (e *Enum) Size() int {
	if e == nil {
		return 0
	}
	return e.size
}

// Args returns the generic arguments the enum was instantiated with.
func (e *Enum) Args() []Type { return slices.Clone(e.args) }

// Variants returns a copy of the variants in declaration order.
func (e *Enum) Variants() []EnumVariant {
	out := make([]EnumVariant, len(e.variants))
	for i, v := range e.variants {
		out[i] = EnumVariant{Name: v.Name, ID: v.ID, Params: slices.Clone(v.Params)}
	}
	return out
}

// Variant looks a variant up by name.
func (e *Enum) Variant(name string) (EnumVariant, bool) {
	i, ok := e.index[name]
	if !ok {
		return EnumVariant{}, false
	}
	v := e.variants[i]
	v.Params = slices.Clone(v.Params)
	return v, true
}

// VariantByID looks a variant up by tag.
func (e *Enum) VariantByID(id uint8) (EnumVariant, bool) {
	if int(id) >= len(e.variants) {
		return EnumVariant{}, false
	}
	v := e.variants[id]
	v.Params = slices.Clone(v.Params)
	return v, true
}

// MatchesGenerics reports whether e was generated with the given table.
func (e *Enum) MatchesGenerics(generics *GenericsTable) bool {
	return e.fingerprint == generics.Fingerprint()
}

// Equal mirrors Struct.Equal.
func (e *Enum) Equal(o *Enum) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.name != o.name || e.namespace != o.namespace || e.fingerprint != o.fingerprint {
		return false
	}
	return typesEqual(e.args, o.args)
}
