package mono

import (
	"ferrum/internal/types"
)

// Template generates a final value F from a generics table. Generate fails
// when the table is malformed for the template or the template contains
// itself by value.
type Template[F any] interface {
	Name() string
	Generate(table *types.GenericsTable) (F, error)
	generate(in *instantiator, table *types.GenericsTable) (F, error)
}

// AggregateTemplate is a template whose result is a type, usable inside
// Nested slots.
type AggregateTemplate interface {
	Name() string
	instantiateType(in *instantiator, table *types.GenericsTable) (types.Type, error)
}

// Concrete is a declaration that is already final. It satisfies Template so
// concrete and pending declarations can be mixed, e.g. in parameter lists.
type Concrete[F any] struct {
	Label string
	Value F
}

func (c *Concrete[F]) Name() string { return c.Label }

func (c *Concrete[F]) Generate(*types.GenericsTable) (F, error) { return c.Value, nil }

func (c *Concrete[F]) generate(*instantiator, *types.GenericsTable) (F, error) {
	return c.Value, nil
}

// StructTemplate describes `struct Name<Generics...> { Fields... }`.
type StructTemplate struct {
	Label     string
	Namespace types.Namespace
	Generics  []string
	Fields    []FieldTemplate
}

// FieldTemplate is one struct field whose type may be generic.
type FieldTemplate struct {
	Name string
	Type Slot
}

func (t *StructTemplate) Name() string { return t.Namespace.Qualify(t.Label) }

// Arity returns the number of declared generic parameters.
func (t *StructTemplate) Arity() int { return len(t.Generics) }

func (t *StructTemplate) Generate(table *types.GenericsTable) (*types.Struct, error) {
	return instantiate[*types.Struct](newInstantiator(nil), t, table)
}

func (t *StructTemplate) generate(in *instantiator, table *types.GenericsTable) (*types.Struct, error) {
	s := types.DeclareStruct(t.Label, t.Namespace, table)
	in.declare(s)
	fields := make([]types.StructMember, len(t.Fields))
	for i, f := range t.Fields {
		ty, err := f.Type.resolve(in, table)
		if err != nil {
			return nil, withTemplate(err, t.Name())
		}
		fields[i] = types.StructMember{Name: f.Name, Type: ty}
	}
	if err := s.Define(fields); err != nil {
		return nil, &InstantiationError{Kind: ErrLayout, Template: t.Name(), Err: err}
	}
	return s, nil
}

func (t *StructTemplate) instantiateType(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	s, err := instantiate[*types.Struct](in, t, table)
	if err != nil {
		return types.Type{}, err
	}
	return types.StructType(s), nil
}

// EnumTemplate describes `enum Name<Generics...> { Variants... }`.
type EnumTemplate struct {
	Label     string
	Namespace types.Namespace
	Generics  []string
	Variants  []VariantTemplate
}

// VariantTemplate is one enum variant with possibly generic parameters.
type VariantTemplate struct {
	Name   string
	Params []Slot
}

func (t *EnumTemplate) Name() string { return t.Namespace.Qualify(t.Label) }

// Arity returns the number of declared generic parameters.
func (t *EnumTemplate) Arity() int { return len(t.Generics) }

func (t *EnumTemplate) Generate(table *types.GenericsTable) (*types.Enum, error) {
	return instantiate[*types.Enum](newInstantiator(nil), t, table)
}

func (t *EnumTemplate) generate(in *instantiator, table *types.GenericsTable) (*types.Enum, error) {
	e := types.DeclareEnum(t.Label, t.Namespace, table)
	in.declare(e)
	decls := make([]types.EnumVariantDecl, len(t.Variants))
	for i, v := range t.Variants {
		params, err := resolveAll(in, table, v.Params)
		if err != nil {
			return nil, withTemplate(err, t.Name())
		}
		decls[i] = types.EnumVariantDecl{Name: v.Name, Params: params}
	}
	if err := e.Define(decls); err != nil {
		return nil, &InstantiationError{Kind: ErrLayout, Template: t.Name(), Err: err}
	}
	return e, nil
}

func (t *EnumTemplate) instantiateType(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	e, err := instantiate[*types.Enum](in, t, table)
	if err != nil {
		return types.Type{}, err
	}
	return types.EnumType(e), nil
}

// TupleTemplate describes an anonymous tuple with generic elements.
type TupleTemplate struct {
	Elems []Slot
}

func (t *TupleTemplate) Name() string { return TupleSlot(*t).String() }

func (t *TupleTemplate) Generate(table *types.GenericsTable) (*types.Tuple, error) {
	return instantiate[*types.Tuple](newInstantiator(nil), t, table)
}

func (t *TupleTemplate) generate(in *instantiator, table *types.GenericsTable) (*types.Tuple, error) {
	elems, err := resolveAll(in, table, t.Elems)
	if err != nil {
		return nil, withTemplate(err, t.Name())
	}
	tup, err := types.NewTuple(elems...)
	if err != nil {
		return nil, &InstantiationError{Kind: ErrLayout, Template: t.Name(), Err: err}
	}
	return tup, nil
}

func (t *TupleTemplate) instantiateType(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	tup, err := instantiate[*types.Tuple](in, t, table)
	if err != nil {
		return types.Type{}, err
	}
	return types.TupleType(tup), nil
}
