package mono

import (
	"strconv"
	"strings"

	"ferrum/internal/types"
)

// Slot is a type position inside a template: already concrete (Typed) or
// pending resolution against a generics table.
type Slot interface {
	resolve(in *instantiator, table *types.GenericsTable) (types.Type, error)
	String() string
}

// Typed is a slot whose type is already known.
type Typed struct {
	Type types.Type
}

// Param refers to generic parameter Index of the enclosing template.
type Param struct {
	Index int
	Name  string
}

// RefSlot is &T or &mut T over another slot.
type RefSlot struct {
	Inner Slot
	Mut   bool
}

// PtrSlot is *T or *mut T over another slot.
type PtrSlot struct {
	Inner Slot
	Mut   bool
}

// TupleSlot is an anonymous tuple whose elements may be generic.
type TupleSlot struct {
	Elems []Slot
}

// Nested instantiates another generic aggregate with arguments resolved
// against the outer table, e.g. the field `inner: Box<T>` of `Wrapper<T>`.
type Nested struct {
	Template AggregateTemplate
	Args     []Slot
}

func (s Typed) resolve(*instantiator, *types.GenericsTable) (types.Type, error) {
	return s.Type, nil
}

func (s Typed) String() string { return s.Type.String() }

func (s Param) resolve(_ *instantiator, table *types.GenericsTable) (types.Type, error) {
	t, ok := table.At(s.Index)
	if !ok {
		return types.Type{}, &InstantiationError{Kind: ErrSlotOutOfRange, Slot: s.Index, Arity: table.Len()}
	}
	return t, nil
}

func (s Param) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "$" + strconv.Itoa(s.Index)
}

func (s RefSlot) resolve(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	inner, err := in.behindPointer(s.Inner, table)
	if err != nil {
		return types.Type{}, err
	}
	if s.Mut {
		return types.MutRef(inner), nil
	}
	return types.Ref(inner), nil
}

func (s RefSlot) String() string {
	if s.Mut {
		return "&mut " + s.Inner.String()
	}
	return "&" + s.Inner.String()
}

func (s PtrSlot) resolve(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	inner, err := in.behindPointer(s.Inner, table)
	if err != nil {
		return types.Type{}, err
	}
	if s.Mut {
		return types.MutPtr(inner), nil
	}
	return types.Ptr(inner), nil
}

func (s PtrSlot) String() string {
	if s.Mut {
		return "*mut " + s.Inner.String()
	}
	return "*" + s.Inner.String()
}

func (s TupleSlot) resolve(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	elems, err := resolveAll(in, table, s.Elems)
	if err != nil {
		return types.Type{}, err
	}
	tup, err := types.NewTuple(elems...)
	if err != nil {
		return types.Type{}, &InstantiationError{Kind: ErrLayout, Template: s.String(), Err: err}
	}
	return types.TupleType(tup), nil
}

func (s TupleSlot) String() string {
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Nested) resolve(in *instantiator, table *types.GenericsTable) (types.Type, error) {
	args, err := in.byValue(table, s.Args)
	if err != nil {
		return types.Type{}, err
	}
	return s.Template.instantiateType(in, types.NewGenericsTable(args...))
}

func (s Nested) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Template.Name() + "<" + strings.Join(parts, ", ") + ">"
}

func resolveAll(in *instantiator, table *types.GenericsTable, slots []Slot) ([]types.Type, error) {
	out := make([]types.Type, len(slots))
	for i, s := range slots {
		t, err := s.resolve(in, table)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
