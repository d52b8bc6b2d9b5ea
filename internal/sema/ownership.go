package sema

import (
	"ferrum/internal/types"
)

// Borrow rebinds v to a reference of other. v's type selects the borrow kind:
// &T takes a shared borrow, &mut T an exclusive one. Stack referents are
// tracked at compile time and released with v; heap referents get runtime
// reference-count or lock ops instead. A rejected stack borrow leaves both
// variables untouched, including the reference v held before.
func (v *Variable) Borrow(other *Variable, ctx Context) error {
	var exclusive bool
	switch {
	case v.ty.Equal(types.Ref(other.ty)):
	case v.ty.Equal(types.MutRef(other.ty)):
		exclusive = true
	default:
		expected := types.Ref(other.ty)
		if v.ty.Kind() == types.KindMutRef {
			expected = types.MutRef(other.ty)
		}
		return mismatch(v.ty, expected)
	}
	if exclusive && !other.mutable {
		return errAt(ErrDataNotMutable, other.Loc())
	}
	if v.loc == nil {
		return errAt(ErrVariableNotInitialized, v.Loc())
	}
	if other.loc == nil {
		return errAt(ErrVariableNotInitialized, other.Loc())
	}
	referent := other.loc.Data
	heap := !referent.IsStack
	if !heap && !other.lifetime.Covers(v.lifetime) {
		return errAt(ErrLifetimeMismatch, other.Loc())
	}
	if !heap {
		if err := v.admits(other, exclusive, ctx); err != nil {
			return withVar(err, other.Loc())
		}
	}
	if err := v.TryInvalidateData(ctx); err != nil {
		return err
	}

	var err error
	switch {
	case heap && exclusive:
		err = ctx.GrabHeapMut(referent)
	case heap:
		err = ctx.IncHeapRC(referent)
	case exclusive:
		err = other.borrow.BorrowMut()
	default:
		err = other.borrow.IncShared()
	}
	if err != nil {
		return withVar(err, other.Loc())
	}

	slot := v.loc.Data
	if exclusive {
		v.loc = MutReference(slot, other.Loc(), referent)
	} else {
		v.loc = Reference(slot, other.Loc(), referent)
	}
	v.doInvalidate = !heap
	return nil
}

// admits tries the borrow transition on a copy of other's state, as it will
// be once v's current reference is released.
func (v *Variable) admits(other *Variable, exclusive bool, ctx Context) error {
	next := other.borrow
	if src := v.loc; src.IsRef() && !src.Invalidated && v.doInvalidate {
		if target, ok := ctx.ResolveVar(src.Target); ok && target == other {
			var err error
			if src.Kind == SourceMutReference {
				err = next.FreeMut()
			} else {
				err = next.DecShared()
			}
			if err != nil {
				return err
			}
		}
	}
	if exclusive {
		return next.BorrowMut()
	}
	return next.IncShared()
}

// TryInvalidateData prepares v for an ownership change. It fails while v is
// borrowed; otherwise a reference held by v is released.
func (v *Variable) TryInvalidateData(ctx Context) error {
	if v.borrow.IsBorrowed() {
		return errAt(ErrModifiedBorrowedData, v.Loc())
	}
	return v.release(ctx)
}

// Release drops the reference v holds, if any, without the borrowed check.
// Used when v's scope ends.
func (v *Variable) Release(ctx Context) error {
	return v.release(ctx)
}

func (v *Variable) release(ctx Context) error {
	src := v.loc
	if !src.IsRef() || src.Invalidated {
		return nil
	}
	exclusive := src.Kind == SourceMutReference
	switch {
	case src.OnHeap():
		var err error
		if exclusive {
			err = ctx.DropHeapMut(src.Referent)
		} else {
			err = ctx.DecHeapRC(src.Referent)
		}
		if err != nil {
			return err
		}
	case v.doInvalidate:
		var err error
		if exclusive {
			err = ctx.DerefMutVar(src.Target)
		} else {
			err = ctx.DerefVar(src.Target)
		}
		if err != nil {
			return withVar(err, src.Target)
		}
	}
	released := *src
	released.Invalidated = true
	v.loc = &released
	v.doInvalidate = false
	return nil
}

// TakeOwnership moves other's data into v, leaving other without data. A
// type mismatch leaves both variables untouched.
func (v *Variable) TakeOwnership(other *Variable, ctx Context) error {
	if v == other {
		return nil
	}
	if !v.ty.Equal(other.ty) {
		return mismatch(other.ty, v.ty)
	}
	if other.loc == nil {
		return errAt(ErrVariableNotInitialized, other.Loc())
	}
	if other.borrow.IsBorrowed() {
		return errAt(ErrModifiedBorrowedData, other.Loc())
	}
	if v.loc != nil && !v.mutable {
		return errAt(ErrDataNotMutable, v.Loc())
	}
	if other.HoldsRef() && other.doInvalidate {
		if target, ok := ctx.ResolveVar(other.loc.Target); ok && !target.lifetime.Covers(v.lifetime) {
			return errAt(ErrLifetimeMismatch, target.Loc())
		}
	}
	if err := v.TryInvalidateData(ctx); err != nil {
		return err
	}
	v.loc, other.loc = other.loc, nil
	v.doInvalidate, other.doInvalidate = other.doInvalidate, false
	return nil
}

// Swap exchanges the data of two variables of the same type. Borrow states
// stay with their variables.
func (v *Variable) Swap(other *Variable) error {
	if !v.ty.Equal(other.ty) {
		return mismatch(other.ty, v.ty)
	}
	v.loc, other.loc = other.loc, v.loc
	v.doInvalidate, other.doInvalidate = other.doInvalidate, v.doInvalidate
	return nil
}

// AssignData binds fresh storage to a variable that has none.
func (v *Variable) AssignData(src *DataSource) error {
	if v.loc != nil {
		return errAt(ErrAlreadyAssigned, v.Loc())
	}
	if src == nil {
		return illegalSource("non-empty")
	}
	v.loc = src
	v.doInvalidate = false
	return nil
}

// Overwrite prepares an initialised mutable variable to receive a new value.
// The old reference (if any) is released. A nil src keeps v's slot; otherwise
// v is rebound to src and heap data v owned is released.
func (v *Variable) Overwrite(src *DataSource, ctx Context) error {
	if v.loc == nil {
		return errAt(ErrVariableNotInitialized, v.Loc())
	}
	if !v.mutable {
		return errAt(ErrDataNotMutable, v.Loc())
	}
	if err := v.TryInvalidateData(ctx); err != nil {
		return err
	}
	old := v.loc
	if src == nil {
		v.loc = Location(old.Data)
		return nil
	}
	if old.Kind == SourceLocation && !old.Data.IsStack {
		if err := ctx.DecHeapRC(old.Data); err != nil {
			return err
		}
	}
	v.loc = src
	return nil
}

func withVar(err error, loc VarLoc) error {
	if se, ok := err.(*Error); ok && se.Var.Name == "" {
		cp := *se
		cp.Var = loc
		return &cp
	}
	return err
}
