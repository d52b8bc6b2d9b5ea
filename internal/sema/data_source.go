package sema

import "fmt"

// DataLoc is a storage coordinate: a stack offset within a frame or a heap
// address. It never implies ownership.
type DataLoc struct {
	IsStack bool
	Loc     uint64
	Size    int
}

func (d DataLoc) String() string {
	where := "heap"
	if d.IsStack {
		where = "stack"
	}
	return fmt.Sprintf("%s@%d+%d", where, d.Loc, d.Size)
}

// SourceKind is the discriminant of DataSource.
type SourceKind uint8

const (
	// SourceLocation: the variable owns Data.
	SourceLocation SourceKind = iota
	// SourceReference: shared borrow of Target; Data is the pointer slot.
	SourceReference
	// SourceMutReference: exclusive borrow of Target.
	SourceMutReference
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocation:
		return "location"
	case SourceReference:
		return "reference"
	case SourceMutReference:
		return "mut reference"
	default:
		return fmt.Sprintf("SourceKind(%d)", k)
	}
}

// DataSource describes where a variable's value currently lives.
type DataSource struct {
	Kind SourceKind
	Data DataLoc
	// Target and the fields below are set for references.
	Target      VarLoc
	Referent    DataLoc // referent storage, kept so heap releases need no lookup
	Invalidated bool
}

// Location makes an owning data source.
func Location(d DataLoc) *DataSource {
	return &DataSource{Kind: SourceLocation, Data: d}
}

// Reference makes a shared reference to target whose data lives at referent.
func Reference(d DataLoc, target VarLoc, referent DataLoc) *DataSource {
	return &DataSource{Kind: SourceReference, Data: d, Target: target, Referent: referent}
}

// MutReference makes an exclusive reference to target.
func MutReference(d DataLoc, target VarLoc, referent DataLoc) *DataSource {
	return &DataSource{Kind: SourceMutReference, Data: d, Target: target, Referent: referent}
}

// IsRef reports whether the source is a (live or released) reference.
func (s *DataSource) IsRef() bool {
	return s != nil && (s.Kind == SourceReference || s.Kind == SourceMutReference)
}

// OnHeap reports whether a reference points to heap data.
func (s *DataSource) OnHeap() bool {
	return s.IsRef() && !s.Referent.IsStack
}

func (s *DataSource) String() string {
	if s == nil {
		return "<moved>"
	}
	if !s.IsRef() {
		return s.Data.String()
	}
	mark := "&"
	if s.Kind == SourceMutReference {
		mark = "&mut "
	}
	if s.Invalidated {
		return fmt.Sprintf("%s%s (released)", mark, s.Target)
	}
	return mark + s.Target.String()
}
