package sema

// Context is what ownership operations need from the compiler: resolving a
// referent through the scope chain, dropping compile-time borrows of stack
// referents and emitting runtime maintenance ops for heap data. The heap
// hooks fail with ErrIllegalDataSource on stack data.
type Context interface {
	ResolveVar(loc VarLoc) (*Variable, bool)
	DerefVar(loc VarLoc) error
	DerefMutVar(loc VarLoc) error
	IncHeapRC(data DataLoc) error
	DecHeapRC(data DataLoc) error
	GrabHeapMut(data DataLoc) error
	DropHeapMut(data DataLoc) error
}
