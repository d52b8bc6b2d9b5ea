package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"ferrum/internal/bytecode"
	"ferrum/internal/sema"
	"ferrum/internal/source"
	"ferrum/internal/trace"
)

// heapBase is where the compile-time heap address counter starts, so heap
// cells never alias stack offsets in disassembly.
const heapBase uint64 = 0x1000_0000

var errNoScope = errors.New("no open scope")

// Compiler owns the scope chain, the global table and the chunk that
// receives maintenance ops. It is not safe for concurrent use.
type Compiler struct {
	chunk   *bytecode.Chunk
	scopes  []*StackScope
	globals map[string]*sema.Variable
	gorder  []*sema.Variable
	byID    map[sema.VarID]*sema.Variable
	nextID  uint32
	statics uint64
	heapTop uint64
	span    source.Span
	tracer  trace.Tracer
}

// New creates a compiler writing to a chunk called name.
func New(name string, tracer trace.Tracer) *Compiler {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Compiler{
		chunk:   bytecode.NewChunk(name),
		globals: make(map[string]*sema.Variable),
		byID:    make(map[sema.VarID]*sema.Variable),
		heapTop: heapBase,
		tracer:  tracer,
	}
}

func (c *Compiler) Chunk() *bytecode.Chunk { return c.chunk }

// Depth returns the number of open scopes; 0 means only globals are visible.
func (c *Compiler) Depth() int { return len(c.scopes) }

// SetSpan sets the position attached to ops emitted from now on.
func (c *Compiler) SetSpan(sp source.Span) { c.span = sp }

// Scope returns the open scope at index lvl, or nil.
func (c *Compiler) Scope(lvl int) *StackScope {
	if lvl < 0 || lvl >= len(c.scopes) {
		return nil
	}
	return c.scopes[lvl]
}

// PushScope opens a nested scope whose frame continues the parent's.
func (c *Compiler) PushScope() {
	var base uint64
	if n := len(c.scopes); n > 0 {
		base = c.scopes[n-1].sp
	}
	c.scopes = append(c.scopes, newStackScope(base))
	trace.Point(c.tracer, trace.ScopeScope, "scope.push", "", map[string]string{"depth": strconv.Itoa(len(c.scopes))})
}

// PopScope closes the innermost scope. Every reference held by its
// variables is released first, so bindings of the same scope may borrow each
// other in any order. A variable that is still borrowed afterwards is
// referenced from outside the scope and yields LifetimeMismatch. The scope is
// removed even when an error is returned.
func (c *Compiler) PopScope() error {
	n := len(c.scopes)
	if n == 0 {
		return errNoScope
	}
	scope := c.scopes[n-1]
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for i := len(scope.order) - 1; i >= 0; i-- {
		keep(scope.order[i].Release(c))
	}
	for i := len(scope.order) - 1; i >= 0; i-- {
		keep(c.drop(scope.order[i], n-1))
	}
	c.discard(scope)
	c.scopes = c.scopes[:n-1]
	trace.Point(c.tracer, trace.ScopeScope, "scope.pop", "", map[string]string{"depth": strconv.Itoa(n)})
	return first
}

// Unwind drops scopes down to depth without ownership checks. Used after an
// error, when the state is no longer trustworthy.
func (c *Compiler) Unwind(depth int) {
	for len(c.scopes) > depth && len(c.scopes) > 0 {
		c.discard(c.scopes[len(c.scopes)-1])
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

func (c *Compiler) discard(scope *StackScope) {
	for _, v := range scope.order {
		delete(c.byID, v.ID())
	}
}

// drop ends the lifetime of a variable whose references are already released.
func (c *Compiler) drop(v *sema.Variable, lvl int) error {
	if v.State().IsBorrowed() {
		return &sema.Error{Kind: sema.ErrLifetimeMismatch, Var: v.Loc(), Span: v.Span()}
	}
	if v.HoldsData() && !v.Source().Data.IsStack {
		if err := c.DecHeapRC(v.Source().Data); err != nil {
			return err
		}
	}
	v.EndLifetime(lvl)
	trace.Point(c.tracer, trace.ScopeVar, "release", v.Name(), nil)
	return nil
}

func (c *Compiler) newID() sema.VarID {
	c.nextID++
	if c.nextID == 0 {
		panic(fmt.Errorf("variable id overflow"))
	}
	return sema.VarID(c.nextID)
}

// Declare adds a variable to the innermost scope. The name is normalised to
// NFC and the lifetime defaults to the scope when unset.
func (c *Compiler) Declare(d sema.Decl) (*sema.Variable, error) {
	n := len(c.scopes)
	if n == 0 {
		return nil, errNoScope
	}
	d.Name = norm.NFC.String(d.Name)
	if d.Lifetime.Kind == sema.LifetimeScoped || d.Lifetime == (sema.Lifetime{}) {
		d.Lifetime = sema.Scoped(n-1, sema.OpenEnd)
	}
	v := sema.NewVariable(c.newID(), n-1, d)
	c.scopes[n-1].addVar(v)
	c.byID[v.ID()] = v
	trace.Point(c.tracer, trace.ScopeVar, "declare", v.Name(), map[string]string{"type": v.Type().String()})
	return v, nil
}

// DeclareGlobal adds a static variable with its own storage in the static
// segment. Statics are tracked at compile time like stack data.
func (c *Compiler) DeclareGlobal(d sema.Decl) (*sema.Variable, error) {
	d.Name = norm.NFC.String(d.Name)
	if _, ok := c.globals[d.Name]; ok {
		return nil, fmt.Errorf("global %q declared twice", d.Name)
	}
	d.Lifetime = sema.Static()
	v := sema.NewVariable(c.newID(), -1, d)
	size, err := safecast.Conv[uint64](v.Type().Size())
	if err != nil {
		return nil, fmt.Errorf("global %q: %w", d.Name, err)
	}
	if err := v.AssignData(sema.Location(sema.DataLoc{IsStack: true, Loc: c.statics, Size: v.Type().Size()})); err != nil {
		return nil, err
	}
	c.statics += size
	c.globals[d.Name] = v
	c.gorder = append(c.gorder, v)
	c.byID[v.ID()] = v
	return v, nil
}

// Globals lists static variables in declaration order.
func (c *Compiler) Globals() []*sema.Variable {
	return append([]*sema.Variable(nil), c.gorder...)
}

// AllocStack reserves storage in the innermost scope.
func (c *Compiler) AllocStack(size int) (sema.DataLoc, error) {
	if len(c.scopes) == 0 {
		return sema.DataLoc{}, errNoScope
	}
	return c.scopes[len(c.scopes)-1].AllocDataLoc(size), nil
}

// AllocHeap hands out a fresh heap cell address.
func (c *Compiler) AllocHeap(size int) sema.DataLoc {
	n, err := safecast.Conv[uint64](size)
	if err != nil {
		panic(fmt.Errorf("heap cell size overflow: %w", err))
	}
	loc := sema.DataLoc{Loc: c.heapTop, Size: size}
	c.heapTop += max(n, 1)
	return loc
}

// FindGlobal looks name up in the global table.
func (c *Compiler) FindGlobal(name string) *sema.Variable {
	return c.globals[norm.NFC.String(name)]
}

// FindVar searches scopes lvl-1 down to 0 and then the globals. The result
// must be treated as read-only; use FindVarMut to change ownership state.
func (c *Compiler) FindVar(name string, lvl int) *sema.Variable {
	return c.find(norm.NFC.String(name), lvl)
}

// FindVarMut is FindVar for callers that will mutate the variable.
func (c *Compiler) FindVarMut(name string, lvl int) *sema.Variable {
	return c.find(norm.NFC.String(name), lvl)
}

func (c *Compiler) find(name string, lvl int) *sema.Variable {
	lvl = min(lvl, len(c.scopes))
	for i := lvl - 1; i >= 0; i-- {
		if v := c.scopes[i].getVar(name); v != nil {
			return v
		}
	}
	return c.globals[name]
}

// Lookup finds name from the innermost scope.
func (c *Compiler) Lookup(name string) *sema.Variable {
	return c.FindVarMut(name, len(c.scopes))
}

// ResolveVar resolves a borrow referent. A VarLoc carrying an ID resolves to
// exactly that variable while it is alive, so later shadowing cannot
// redirect it; loc without an ID falls back to a name lookup.
func (c *Compiler) ResolveVar(loc sema.VarLoc) (*sema.Variable, bool) {
	if loc.ID != sema.NoVarID {
		v, ok := c.byID[loc.ID]
		return v, ok
	}
	v := c.FindVarMut(loc.Name, loc.Frame)
	return v, v != nil
}

// DerefVar drops one shared borrow of the variable at loc.
func (c *Compiler) DerefVar(loc sema.VarLoc) error {
	v, ok := c.ResolveVar(loc)
	if !ok {
		return &sema.Error{Kind: sema.ErrUnknownVariable, Var: loc}
	}
	return v.Borrows().DecShared()
}

// DerefMutVar drops the exclusive borrow of the variable at loc.
func (c *Compiler) DerefMutVar(loc sema.VarLoc) error {
	v, ok := c.ResolveVar(loc)
	if !ok {
		return &sema.Error{Kind: sema.ErrUnknownVariable, Var: loc}
	}
	return v.Borrows().FreeMut()
}

// IncHeapRC emits an increment of the runtime reference count of a heap cell.
func (c *Compiler) IncHeapRC(data sema.DataLoc) error { return c.emit(bytecode.OpIncRC, data) }

// DecHeapRC emits a decrement of the runtime reference count of a heap cell.
func (c *Compiler) DecHeapRC(data sema.DataLoc) error { return c.emit(bytecode.OpDecRC, data) }

// GrabHeapMut emits acquisition of a heap cell's exclusive lock.
func (c *Compiler) GrabHeapMut(data sema.DataLoc) error { return c.emit(bytecode.OpLockMut, data) }

// DropHeapMut emits release of a heap cell's exclusive lock.
func (c *Compiler) DropHeapMut(data sema.DataLoc) error { return c.emit(bytecode.OpUnlockMut, data) }

func (c *Compiler) emit(op bytecode.Op, data sema.DataLoc) error {
	if data.IsStack {
		err := &sema.Error{Kind: sema.ErrIllegalDataSource, Detail: "heap", Span: c.span}
		trace.Error(c.tracer, trace.ScopeVar, "data-source", err.Error())
		return err
	}
	size, err := safecast.Conv[uint32](data.Size)
	if err != nil {
		return fmt.Errorf("heap cell size: %w", err)
	}
	c.chunk.Write(bytecode.Instr{Op: op, Addr: data.Loc, Size: size}, c.span)
	trace.Point(c.tracer, trace.ScopeVar, "emit", op.String(), map[string]string{"addr": strconv.FormatUint(data.Loc, 16)})
	return nil
}

var _ sema.Context = (*Compiler)(nil)
