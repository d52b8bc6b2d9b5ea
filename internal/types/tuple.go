package types

import (
	"slices"

	"ferrum/internal/layout"
)

// TupleMember is one positional element of a tuple.
type TupleMember struct {
	Type   Type
	Offset int
}

// Tuple is a concrete, immutable, structurally typed tuple.
type Tuple struct {
	members []TupleMember
	size    int
}

// NewTuple builds and lays out a tuple of the given element types.
func NewTuple(elems ...Type) (*Tuple, error) {
	t := &Tuple{members: make([]TupleMember, len(elems))}
	for i, e := range elems {
		t.members[i] = TupleMember{Type: e}
	}
	t.align()
	if err := layout.Ferrum64().Check("tuple", t.size); err != nil {
		return nil, err
	}
	return t, nil
}

// align assigns cumulative offsets and recomputes the total size.
func (t *Tuple) align() {
	sizes := make([]int, len(t.members))
	for i := range t.members {
		sizes[i] = t.members[i].Type.Size()
	}
	offsets, total := layout.Sequential(sizes)
	for i := range t.members {
		t.members[i].Offset = offsets[i]
	}
	t.size = total
}

// Size returns the total byte size.
func (t *Tuple) Size() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Len returns the number of elements.
func (t *Tuple) Len() int { return len(t.members) }

// Members returns a copy of the elements.
func (t *Tuple) Members() []TupleMember { return slices.Clone(t.members) }

// Member returns element i.
func (t *Tuple) Member(i int) (TupleMember, bool) {
	if i < 0 || i >= len(t.members) {
		return TupleMember{}, false
	}
	return t.members[i], true
}

// Equal compares element types pairwise.
func (t *Tuple) Equal(o *Tuple) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || len(t.members) != len(o.members) {
		return false
	}
	for i := range t.members {
		if !t.members[i].Type.Equal(o.members[i].Type) {
			return false
		}
	}
	return true
}
