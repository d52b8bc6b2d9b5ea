package sema

import (
	"errors"
	"testing"

	"ferrum/internal/types"
)

type fakeCtx struct {
	vars map[VarID]*Variable
	ops  []string
}

func newFakeCtx(vs ...*Variable) *fakeCtx {
	c := &fakeCtx{vars: make(map[VarID]*Variable)}
	for _, v := range vs {
		c.vars[v.ID()] = v
	}
	return c
}

func (c *fakeCtx) ResolveVar(loc VarLoc) (*Variable, bool) {
	v, ok := c.vars[loc.ID]
	return v, ok
}

func (c *fakeCtx) DerefVar(loc VarLoc) error {
	v, ok := c.ResolveVar(loc)
	if !ok {
		return errAt(ErrUnknownVariable, loc)
	}
	return v.borrow.DecShared()
}

func (c *fakeCtx) DerefMutVar(loc VarLoc) error {
	v, ok := c.ResolveVar(loc)
	if !ok {
		return errAt(ErrUnknownVariable, loc)
	}
	return v.borrow.FreeMut()
}

func (c *fakeCtx) hook(name string, d DataLoc) error {
	if d.IsStack {
		return illegalSource("heap")
	}
	c.ops = append(c.ops, name)
	return nil
}

func (c *fakeCtx) IncHeapRC(d DataLoc) error   { return c.hook("inc", d) }
func (c *fakeCtx) DecHeapRC(d DataLoc) error   { return c.hook("dec", d) }
func (c *fakeCtx) GrabHeapMut(d DataLoc) error { return c.hook("lock", d) }
func (c *fakeCtx) DropHeapMut(d DataLoc) error { return c.hook("unlock", d) }

func stackVar(id VarID, name string, ty types.Type, mutable bool, lvl int, at uint64) *Variable {
	v := NewVariable(id, lvl, Decl{Name: name, Type: ty, Mutable: mutable, Lifetime: Scoped(lvl, OpenEnd)})
	if err := v.AssignData(Location(DataLoc{IsStack: true, Loc: at, Size: ty.Size()})); err != nil {
		panic(err)
	}
	return v
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *sema.Error, got %v", err)
	}
	return se.Kind
}

func TestBorrowStateTransitions(t *testing.T) {
	var b BorrowState
	if err := b.DecShared(); kindOf(t, err) != ErrIllegalBorrowState {
		t.Fatalf("DecShared on None must fail")
	}
	for range 3 {
		if err := b.IncShared(); err != nil {
			t.Fatalf("IncShared: %v", err)
		}
	}
	if b.Kind() != BorrowShared || b.Count() != 3 {
		t.Fatalf("state = %s", b)
	}
	if err := b.BorrowMut(); kindOf(t, err) != ErrIllegalMutBorrow {
		t.Fatalf("BorrowMut while shared must fail")
	}
	if b.Count() != 3 {
		t.Fatalf("failed BorrowMut changed count to %d", b.Count())
	}
	for range 3 {
		if err := b.DecShared(); err != nil {
			t.Fatalf("DecShared: %v", err)
		}
	}
	if b != (BorrowState{}) {
		t.Fatalf("expected None, got %s", b)
	}
	if err := b.BorrowMut(); err != nil {
		t.Fatal(err)
	}
	if err := b.IncShared(); kindOf(t, err) != ErrIllegalSharedBorrow {
		t.Fatalf("IncShared while mut must fail")
	}
	if err := b.FreeMut(); err != nil {
		t.Fatal(err)
	}
	if err := b.FreeMut(); kindOf(t, err) != ErrIllegalBorrowState {
		t.Fatalf("FreeMut on None must fail")
	}
}

func TestBorrowStateNeverMutAndShared(t *testing.T) {
	var b BorrowState
	ops := []func() error{b.BorrowMut, b.IncShared, b.FreeMut, b.IncShared, b.IncShared, b.BorrowMut, b.DecShared, b.FreeMut, b.DecShared, b.BorrowMut}
	for i, op := range ops {
		_ = op()
		if b.Kind() == BorrowMut && b.Count() != 0 {
			t.Fatalf("step %d: mut with shared count %d", i, b.Count())
		}
		if b.Kind() == BorrowShared && b.Count() < 1 {
			t.Fatalf("step %d: shared with count %d", i, b.Count())
		}
	}
}

func TestSharedBorrowAndRelease(t *testing.T) {
	x := stackVar(1, "x", types.U32, false, 0, 0)
	r := stackVar(2, "r", types.Ref(types.U32), false, 0, 4)
	ctx := newFakeCtx(x, r)

	if err := r.Borrow(x, ctx); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if x.State() != SharedState(1) {
		t.Fatalf("x state = %s", x.State())
	}
	if !r.HoldsRef() || !r.DoInvalidate() {
		t.Fatalf("r should hold a tracked reference")
	}
	if err := r.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if x.State().IsBorrowed() {
		t.Fatalf("x still borrowed after release: %s", x.State())
	}
	if r.HoldsRef() {
		t.Fatalf("released reference still live")
	}
	if err := r.Release(ctx); err != nil {
		t.Fatalf("second release must be a no-op: %v", err)
	}
}

func TestMutBorrowRules(t *testing.T) {
	y := stackVar(1, "y", types.U32, true, 0, 0)
	m := stackVar(2, "m", types.MutRef(types.U32), false, 0, 4)
	s := stackVar(3, "s", types.Ref(types.U32), false, 0, 12)
	ctx := newFakeCtx(y, m, s)

	if err := m.Borrow(y, ctx); err != nil {
		t.Fatal(err)
	}
	if y.State() != MutState() {
		t.Fatalf("y state = %s", y.State())
	}
	err := s.Borrow(y, ctx)
	if kindOf(t, err) != ErrIllegalSharedBorrow {
		t.Fatalf("expected IllegalSharedBorrow, got %v", err)
	}
	if s.HoldsRef() {
		t.Fatalf("failed borrow must not bind")
	}

	frozen := stackVar(4, "f", types.U32, false, 0, 20)
	m2 := stackVar(5, "m2", types.MutRef(types.U32), false, 0, 24)
	if err := m2.Borrow(frozen, ctx); kindOf(t, err) != ErrDataNotMutable {
		t.Fatalf("expected DataNotMutable, got %v", err)
	}
}

func TestMutBorrowWhileSharedKeepsCount(t *testing.T) {
	y := stackVar(1, "y", types.U8, true, 0, 0)
	a := stackVar(2, "a", types.Ref(types.U8), false, 0, 1)
	b := stackVar(3, "b", types.Ref(types.U8), false, 0, 9)
	m := stackVar(4, "m", types.MutRef(types.U8), false, 0, 17)
	ctx := newFakeCtx(y, a, b, m)
	for _, r := range []*Variable{a, b} {
		if err := r.Borrow(y, ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Borrow(y, ctx); kindOf(t, err) != ErrIllegalMutBorrow {
		t.Fatalf("expected IllegalMutBorrow, got %v", err)
	}
	if y.State() != SharedState(2) {
		t.Fatalf("shared count changed: %s", y.State())
	}
}

func TestRejectedReborrowKeepsOldReference(t *testing.T) {
	a := stackVar(1, "a", types.U32, true, 0, 0)
	z := stackVar(2, "z", types.U32, true, 0, 4)
	m := stackVar(3, "m", types.MutRef(types.U32), true, 0, 8)
	s := stackVar(4, "s", types.Ref(types.U32), false, 0, 16)
	y := stackVar(5, "y", types.U32, false, 0, 24)
	r := stackVar(6, "r", types.Ref(types.U32), true, 0, 28)
	ctx := newFakeCtx(a, z, m, s, y, r)

	if err := m.Borrow(a, ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Borrow(z, ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Borrow(z, ctx); kindOf(t, err) != ErrIllegalMutBorrow {
		t.Fatalf("expected IllegalMutBorrow, got %v", err)
	}
	if !m.HoldsRef() || !m.DoInvalidate() || m.Source().Target.ID != a.ID() {
		t.Fatalf("m lost its reference to a: %+v", m.Source())
	}
	if a.State() != MutState() || z.State() != SharedState(1) {
		t.Fatalf("a=%s z=%s", a.State(), z.State())
	}

	// Re-borrowing the current target counts the released reference.
	if err := m.Borrow(a, ctx); err != nil {
		t.Fatalf("mut reborrow of the same target: %v", err)
	}
	if err := r.Borrow(y, ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Borrow(y, ctx); err != nil {
		t.Fatalf("shared reborrow: %v", err)
	}
	if a.State() != MutState() || y.State() != SharedState(1) {
		t.Fatalf("a=%s y=%s", a.State(), y.State())
	}
}

func TestBorrowTypeAndInitChecks(t *testing.T) {
	x := stackVar(1, "x", types.U32, false, 0, 0)
	wrong := stackVar(2, "w", types.Ref(types.U8), false, 0, 4)
	ctx := newFakeCtx(x, wrong)

	err := wrong.Borrow(x, ctx)
	var se *Error
	if !errors.As(err, &se) || se.Kind != ErrDataTypeMismatch {
		t.Fatalf("expected DataTypeMismatch, got %v", err)
	}
	if !se.Expected.Equal(types.Ref(types.U32)) || !se.Got.Equal(types.Ref(types.U8)) {
		t.Fatalf("mismatch types = %s / %s", se.Got, se.Expected)
	}

	empty := NewVariable(3, 0, Decl{Name: "e", Type: types.Ref(types.U32), Lifetime: Scoped(0, OpenEnd)})
	if err := empty.Borrow(x, ctx); kindOf(t, err) != ErrVariableNotInitialized {
		t.Fatalf("expected VariableNotInitialized, got %v", err)
	}
}

func TestBorrowDeeperReferentIsLifetimeMismatch(t *testing.T) {
	inner := stackVar(1, "inner", types.U32, false, 1, 0)
	outer := stackVar(2, "outer", types.Ref(types.U32), true, 0, 0)
	ctx := newFakeCtx(inner, outer)
	if err := outer.Borrow(inner, ctx); kindOf(t, err) != ErrLifetimeMismatch {
		t.Fatalf("expected LifetimeMismatch, got %v", err)
	}
	if inner.State().IsBorrowed() {
		t.Fatalf("failed borrow changed state")
	}
}

func TestHeapBorrowEmitsRuntimeOps(t *testing.T) {
	h := NewVariable(1, 0, Decl{Name: "h", Type: types.U64, Mutable: true, Lifetime: Dynamic()})
	if err := h.AssignData(Location(DataLoc{Loc: 0x1000, Size: 8})); err != nil {
		t.Fatal(err)
	}
	r := stackVar(2, "r", types.Ref(types.U64), true, 0, 0)
	ctx := newFakeCtx(h, r)

	if err := r.Borrow(h, ctx); err != nil {
		t.Fatal(err)
	}
	if h.State().IsBorrowed() || r.DoInvalidate() {
		t.Fatalf("heap borrow must not be tracked at compile time")
	}
	m := NewVariable(3, 0, Decl{Name: "m", Type: types.MutRef(types.U64), Lifetime: Scoped(0, OpenEnd)})
	if err := m.AssignData(Location(DataLoc{IsStack: true, Loc: 8, Size: 8})); err != nil {
		t.Fatal(err)
	}
	if err := m.Borrow(h, ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(ctx); err != nil {
		t.Fatal(err)
	}
	want := []string{"inc", "lock", "dec", "unlock"}
	if len(ctx.ops) != len(want) {
		t.Fatalf("ops = %v", ctx.ops)
	}
	for i := range want {
		if ctx.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", ctx.ops, want)
		}
	}
}

func TestTryInvalidateData(t *testing.T) {
	x := stackVar(1, "x", types.U32, true, 0, 0)
	r := stackVar(2, "r", types.Ref(types.U32), true, 0, 4)
	ctx := newFakeCtx(x, r)
	if err := r.Borrow(x, ctx); err != nil {
		t.Fatal(err)
	}
	if err := x.TryInvalidateData(ctx); kindOf(t, err) != ErrModifiedBorrowedData {
		t.Fatalf("expected ModifiedBorrowedData, got %v", err)
	}

	delete(ctx.vars, x.ID())
	if err := r.TryInvalidateData(ctx); kindOf(t, err) != ErrUnknownVariable {
		t.Fatalf("expected UnknownVariable, got %v", err)
	}
}

func TestTakeOwnership(t *testing.T) {
	a := stackVar(1, "a", types.U32, true, 0, 0)
	b := stackVar(2, "b", types.U8, false, 0, 4)
	ctx := newFakeCtx(a, b)
	locA, locB := a.Source(), b.Source()

	if err := a.TakeOwnership(b, ctx); kindOf(t, err) != ErrDataTypeMismatch {
		t.Fatalf("expected DataTypeMismatch, got %v", err)
	}
	if a.Source() != locA || b.Source() != locB {
		t.Fatalf("mismatch must leave locs unchanged")
	}

	c := NewVariable(3, 0, Decl{Name: "c", Type: types.U8, Lifetime: Scoped(0, OpenEnd)})
	if err := c.TakeOwnership(b, ctx); err != nil {
		t.Fatal(err)
	}
	if c.Source() != locB || b.IsInitialized() || b.HoldsData() || b.HoldsRef() {
		t.Fatalf("move did not transfer data")
	}
	if err := c.TakeOwnership(b, ctx); kindOf(t, err) != ErrVariableNotInitialized {
		t.Fatalf("moving from a moved variable must fail, got %v", err)
	}

	d := stackVar(4, "d", types.U8, false, 0, 5)
	if err := c.TakeOwnership(d, ctx); kindOf(t, err) != ErrDataNotMutable {
		t.Fatalf("reassigning immutable target must fail, got %v", err)
	}
}

func TestTakeOwnershipOfReferenceKeepsTracking(t *testing.T) {
	x := stackVar(1, "x", types.U32, false, 0, 0)
	r := stackVar(2, "r", types.Ref(types.U32), false, 0, 4)
	q := NewVariable(3, 0, Decl{Name: "q", Type: types.Ref(types.U32), Lifetime: Scoped(0, OpenEnd)})
	ctx := newFakeCtx(x, r, q)
	if err := r.Borrow(x, ctx); err != nil {
		t.Fatal(err)
	}
	if err := q.TakeOwnership(r, ctx); err != nil {
		t.Fatal(err)
	}
	if r.DoInvalidate() || !q.DoInvalidate() {
		t.Fatalf("tracking flag must move with the reference")
	}
	if err := q.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if x.State().IsBorrowed() {
		t.Fatalf("x still borrowed: %s", x.State())
	}
}

func TestSwapAndAssign(t *testing.T) {
	a := stackVar(1, "a", types.U32, true, 0, 0)
	b := stackVar(2, "b", types.U32, true, 0, 4)
	r := stackVar(3, "r", types.Ref(types.U32), false, 0, 8)
	ctx := newFakeCtx(a, b, r)
	if err := r.Borrow(a, ctx); err != nil {
		t.Fatal(err)
	}
	locA, locB := a.Source(), b.Source()
	if err := a.Swap(b); err != nil {
		t.Fatal(err)
	}
	if a.Source() != locB || b.Source() != locA {
		t.Fatalf("swap did not exchange locs")
	}
	if a.State() != SharedState(1) || b.State().IsBorrowed() {
		t.Fatalf("swap touched borrow state")
	}
	c := stackVar(4, "c", types.U8, true, 0, 16)
	if err := a.Swap(c); kindOf(t, err) != ErrDataTypeMismatch {
		t.Fatalf("expected DataTypeMismatch, got %v", err)
	}
	if err := a.AssignData(Location(DataLoc{IsStack: true})); kindOf(t, err) != ErrAlreadyAssigned {
		t.Fatalf("expected AlreadyAssigned, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	if !(&Error{Kind: ErrIllegalBorrowState}).Internal() || !illegalSource("heap").Internal() {
		t.Fatalf("internal kinds not flagged")
	}
	if (&Error{Kind: ErrIllegalMutBorrow}).Internal() {
		t.Fatalf("user error flagged as internal")
	}
	e := errAt(ErrModifiedBorrowedData, VarLoc{Name: "x"})
	if e.Error() != "cannot modify `x` while it is borrowed" {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestOverwrite(t *testing.T) {
	u32 := types.U32
	x := stackVar(1, "x", u32, false, 0, 0)
	if err := x.Overwrite(nil, newFakeCtx(x)); kindOf(t, err) != ErrDataNotMutable {
		t.Fatalf("overwrite of immutable must fail, got %v", err)
	}

	heap := DataLoc{Loc: 0x40, Size: 4}
	y := NewVariable(2, 0, Decl{Name: "y", Type: u32, Mutable: true, Lifetime: Scoped(0, OpenEnd)})
	if err := y.Overwrite(nil, newFakeCtx(y)); kindOf(t, err) != ErrVariableNotInitialized {
		t.Fatalf("overwrite of uninitialised must fail, got %v", err)
	}
	if err := y.AssignData(Location(heap)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	ctx := newFakeCtx(y)
	next := Location(DataLoc{Loc: 0x80, Size: 4})
	if err := y.Overwrite(next, ctx); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if y.Source() != next || len(ctx.ops) != 1 || ctx.ops[0] != "dec" {
		t.Fatalf("heap overwrite: src=%s ops=%v", y.Source(), ctx.ops)
	}
}
