package sema

import (
	"fmt"

	"ferrum/internal/source"
	"ferrum/internal/types"
)

// VarID is a stable per-compiler identity of a declared variable.
type VarID uint32

// NoVarID marks a VarLoc that can only be resolved by name.
const NoVarID VarID = 0

// VarLoc is a lookup key for a variable: the scope level a lookup starts at,
// the declared name and, when known, the stable ID. It never owns anything.
type VarLoc struct {
	Frame int
	Name  string
	ID    VarID
}

func (l VarLoc) String() string {
	if l.Name == "" {
		return "<anonymous>"
	}
	return fmt.Sprintf("`%s`", l.Name)
}

// Variable is the unit the ownership model operates on. It survives until
// its scope ends even after its data moves out.
type Variable struct {
	id           VarID
	name         string
	ty           types.Type
	mutable      bool
	lifetime     Lifetime
	stackLvl     int
	borrow       BorrowState
	loc          *DataSource
	doInvalidate bool
	span         source.Span
}

// Decl carries what a binding declares.
type Decl struct {
	Name     string
	Type     types.Type
	Mutable  bool
	Lifetime Lifetime
	Span     source.Span
}

// NewVariable creates a variable declared at scope depth lvl.
func NewVariable(id VarID, lvl int, d Decl) *Variable {
	return &Variable{
		id:       id,
		name:     d.Name,
		ty:       d.Type,
		mutable:  d.Mutable,
		lifetime: d.Lifetime,
		stackLvl: lvl,
		span:     d.Span,
	}
}

func (v *Variable) ID() VarID             { return v.id }
func (v *Variable) Name() string          { return v.name }
func (v *Variable) Type() types.Type      { return v.ty }
func (v *Variable) Mutable() bool         { return v.mutable }
func (v *Variable) Lifetime() Lifetime    { return v.lifetime }
func (v *Variable) StackLvl() int         { return v.stackLvl }
func (v *Variable) Span() source.Span     { return v.span }
func (v *Variable) Source() *DataSource   { return v.loc }
func (v *Variable) DoInvalidate() bool    { return v.doInvalidate }
func (v *Variable) State() BorrowState    { return v.borrow }
func (v *Variable) Borrows() *BorrowState { return &v.borrow }

// Loc returns the key that resolves back to v from anywhere inside its scope.
func (v *Variable) Loc() VarLoc {
	return VarLoc{Frame: v.stackLvl + 1, Name: v.name, ID: v.id}
}

// IsInitialized reports whether v has storage or a reference bound.
func (v *Variable) IsInitialized() bool { return v.loc != nil }

// HoldsData reports whether v owns its data.
func (v *Variable) HoldsData() bool { return v.loc != nil && v.loc.Kind == SourceLocation }

// HoldsRef reports whether v currently refers to another variable.
func (v *Variable) HoldsRef() bool { return v.loc.IsRef() && !v.loc.Invalidated }

// EndLifetime closes a scoped lifetime at depth end.
func (v *Variable) EndLifetime(end int) {
	if v.lifetime.Kind == LifetimeScoped {
		v.lifetime.End = end
	}
}

func (v *Variable) String() string {
	mut := ""
	if v.mutable {
		mut = "mut "
	}
	return fmt.Sprintf("%s%s: %s [%s, %s]", mut, v.name, v.ty, v.loc, v.borrow)
}
