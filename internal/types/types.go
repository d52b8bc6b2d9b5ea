package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"ferrum/internal/layout"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindElementary
	KindStruct
	KindEnum
	KindTuple
	KindRef
	KindMutRef
	KindPtr
	KindMutPtr
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindElementary:
		return "elementary"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindTuple:
		return "tuple"
	case KindRef:
		return "ref"
	case KindMutRef:
		return "mut-ref"
	case KindPtr:
		return "ptr"
	case KindMutPtr:
		return "mut-ptr"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Namespace is a qualified module path such as "std::collections".
type Namespace string

// Qualify joins the namespace and a declaration name with "::".
func (ns Namespace) Qualify(name string) string {
	if ns == "" {
		return name
	}
	return string(ns) + "::" + name
}

// Type is a value describing any Ferrum type.
//
// Elementary types are identified by their byte width alone; the alias is only
// used for display. Struct, enum and tuple payloads are shared immutable
// values. Reference and pointer kinds own their inner type.
type Type struct {
	kind  Kind
	width uint16
	alias string
	elem  *Type
	st    *Struct
	en    *Enum
	tup   *Tuple
}

// Elementary describes a plain value of width bytes (1..=256).
func Elementary(width int) (Type, error) {
	return NamedElementary("", width)
}

// NamedElementary is Elementary with a display alias like "u32".
func NamedElementary(alias string, width int) (Type, error) {
	w, err := safecast.Conv[uint16](width)
	if err != nil || w < 1 || w > layout.MaxElementaryWidth {
		return Type{}, &layout.LayoutError{Kind: layout.LayoutErrBadWidth, Name: alias, Value: width}
	}
	return Type{kind: KindElementary, width: w, alias: alias}, nil
}

// StructType wraps a concrete struct.
func StructType(s *Struct) Type {
	if s == nil {
		return Type{}
	}
	return Type{kind: KindStruct, st: s}
}

// EnumType wraps a concrete enum.
func EnumType(e *Enum) Type {
	if e == nil {
		return Type{}
	}
	return Type{kind: KindEnum, en: e}
}

// TupleType wraps a concrete tuple.
func TupleType(t *Tuple) Type {
	if t == nil {
		return Type{}
	}
	return Type{kind: KindTuple, tup: t}
}

// Ref describes &T.
func Ref(inner Type) Type { return wrap(KindRef, inner) }

// MutRef describes &mut T.
func MutRef(inner Type) Type { return wrap(KindMutRef, inner) }

// Ptr describes *T.
func Ptr(inner Type) Type { return wrap(KindPtr, inner) }

// MutPtr describes *mut T.
func MutPtr(inner Type) Type { return wrap(KindMutPtr, inner) }

func wrap(kind Kind, inner Type) Type {
	elem := inner
	return Type{kind: kind, elem: &elem}
}

// Kind returns the variant tag.
func (t Type) Kind() Kind { return t.kind }

// IsValid reports whether t was produced by a constructor.
func (t Type) IsValid() bool { return t.kind != KindInvalid }

// Width returns the byte width of an elementary type, 0 otherwise.
func (t Type) Width() int {
	if t.kind != KindElementary {
		return 0
	}
	return int(t.width)
}

// Elem returns the inner type of references and pointers.
func (t Type) Elem() (Type, bool) {
	if t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// Struct returns the struct payload or nil.
func (t Type) Struct() *Struct { return t.st }

// Enum returns the enum payload or nil.
func (t Type) Enum() *Enum { return t.en }

// Tuple returns the tuple payload or nil.
func (t Type) Tuple() *Tuple { return t.tup }

// IsReference reports &T and &mut T.
func (t Type) IsReference() bool { return t.kind == KindRef || t.kind == KindMutRef }

// IsPointer reports *T and *mut T.
func (t Type) IsPointer() bool { return t.kind == KindPtr || t.kind == KindMutPtr }

// IsAggregate reports struct, enum and tuple types.
func (t Type) IsAggregate() bool {
	return t.kind == KindStruct || t.kind == KindEnum || t.kind == KindTuple
}

// Size returns the byte footprint of a value of type t.
func (t Type) Size() int {
	switch t.kind {
	case KindElementary:
		return int(t.width)
	case KindStruct:
		return t.st.Size()
	case KindEnum:
		return t.en.Size()
	case KindTuple:
		return t.tup.Size()
	case KindRef, KindMutRef, KindPtr, KindMutPtr:
		return layout.PointerSize
	default:
		return 0
	}
}

// Equal compares two types: elementary by width, struct/enum nominally,
// tuples, references and pointers structurally.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindInvalid:
		return true
	case KindElementary:
		return t.width == o.width
	case KindStruct:
		return t.st.Equal(o.st)
	case KindEnum:
		return t.en.Equal(o.en)
	case KindTuple:
		return t.tup.Equal(o.tup)
	case KindRef, KindMutRef, KindPtr, KindMutPtr:
		return t.elem.Equal(*o.elem)
	}
	return false
}

// Hash returns a deterministic hash consistent with Equal.
func (t Type) Hash() uint64 {
	h := newHasher()
	t.hashInto(&h)
	return h.sum
}

func (t Type) hashInto(h *hasher) {
	h.mixByte(byte(t.kind))
	switch t.kind {
	case KindElementary:
		h.mixUint(uint64(t.width))
	case KindStruct:
		h.mixString(t.st.name)
		h.mixString(string(t.st.namespace))
		h.mixUint(t.st.fingerprint)
	case KindEnum:
		h.mixString(t.en.name)
		h.mixString(string(t.en.namespace))
		h.mixUint(t.en.fingerprint)
	case KindTuple:
		h.mixUint(uint64(len(t.tup.members)))
		for _, m := range t.tup.members {
			m.Type.hashInto(h)
		}
	case KindRef, KindMutRef, KindPtr, KindMutPtr:
		t.elem.hashInto(h)
	}
}

func (t Type) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t Type) writeTo(sb *strings.Builder) {
	switch t.kind {
	case KindElementary:
		if t.alias != "" {
			sb.WriteString(t.alias)
			return
		}
		fmt.Fprintf(sb, "e%d", t.width)
	case KindStruct:
		writeNominal(sb, t.st.namespace, t.st.name, t.st.args)
	case KindEnum:
		writeNominal(sb, t.en.namespace, t.en.name, t.en.args)
	case KindTuple:
		sb.WriteByte('(')
		for i, m := range t.tup.members {
			if i > 0 {
				sb.WriteString(", ")
			}
			m.Type.writeTo(sb)
		}
		if len(t.tup.members) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case KindRef:
		sb.WriteByte('&')
		t.elem.writeTo(sb)
	case KindMutRef:
		sb.WriteString("&mut ")
		t.elem.writeTo(sb)
	case KindPtr:
		sb.WriteByte('*')
		t.elem.writeTo(sb)
	case KindMutPtr:
		sb.WriteString("*mut ")
		t.elem.writeTo(sb)
	default:
		sb.WriteString("<invalid>")
	}
}

func writeNominal(sb *strings.Builder, ns Namespace, name string, args []Type) {
	sb.WriteString(ns.Qualify(name))
	if len(args) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.writeTo(sb)
	}
	sb.WriteByte('>')
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
