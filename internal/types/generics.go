package types

import "slices"

// GenericsTable holds the concrete substitutions for a generic declaration.
// Index i is generic parameter slot i. The fingerprint identifies one
// monomorphization: equal sequences always produce equal fingerprints.
type GenericsTable struct {
	table       []Type
	fingerprint uint64
}

// NewGenericsTable builds a table from the substitutions in slot order.
func NewGenericsTable(ts ...Type) *GenericsTable {
	table := slices.Clone(ts)
	return &GenericsTable{
		table:       table,
		fingerprint: fingerprintOf(table),
	}
}

// EmptyGenerics is the table used by non-generic declarations.
func EmptyGenerics() *GenericsTable {
	return NewGenericsTable()
}

func fingerprintOf(ts []Type) uint64 {
	h := newHasher()
	h.mixUint(uint64(len(ts)))
	for _, t := range ts {
		t.hashInto(&h)
	}
	return h.sum
}

// Fingerprint returns the content hash of the table. A nil table hashes like
// an empty one.
func (g *GenericsTable) Fingerprint() uint64 {
	if g == nil {
		return fingerprintOf(nil)
	}
	return g.fingerprint
}

// Len returns the number of substitutions.
func (g *GenericsTable) Len() int {
	if g == nil {
		return 0
	}
	return len(g.table)
}

// At returns the substitution for slot i.
func (g *GenericsTable) At(i int) (Type, bool) {
	if g == nil || i < 0 || i >= len(g.table) {
		return Type{}, false
	}
	return g.table[i], true
}

// Types returns a copy of the substitutions.
func (g *GenericsTable) Types() []Type {
	if g == nil || len(g.table) == 0 {
		return nil
	}
	return slices.Clone(g.table)
}

// Join appends other's entries after g's and rehashes. Used when a generic
// declaration nests another one, e.g. a generic method on a generic struct:
// the owner's slots come first, the method's own slots follow.
func (g *GenericsTable) Join(other *GenericsTable) *GenericsTable {
	joined := make([]Type, 0, g.Len()+other.Len())
	if g != nil {
		joined = append(joined, g.table...)
	}
	if other != nil {
		joined = append(joined, other.table...)
	}
	return &GenericsTable{table: joined, fingerprint: fingerprintOf(joined)}
}

// Equal compares the substitutions, not only the fingerprints.
func (g *GenericsTable) Equal(other *GenericsTable) bool {
	if g.Fingerprint() != other.Fingerprint() {
		return false
	}
	var a, b []Type
	if g != nil {
		a = g.table
	}
	if other != nil {
		b = other.table
	}
	return typesEqual(a, b)
}

func (g *GenericsTable) String() string {
	return ArgsString(g.Types())
}

// ArgsString renders types as "<a, b>".
func ArgsString(ts []Type) string {
	s := "<"
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ">"
}
