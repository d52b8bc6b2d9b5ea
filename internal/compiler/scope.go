package compiler

import (
	"fmt"

	"fortio.org/safecast"

	"ferrum/internal/sema"
)

// StackScope is one lexical level. Each name maps to a stack of
// declarations so shadowing pushes and lookups see only the newest.
type StackScope struct {
	vars  map[string][]*sema.Variable
	order []*sema.Variable
	base  uint64
	sp    uint64
}

func newStackScope(base uint64) *StackScope {
	return &StackScope{
		vars: make(map[string][]*sema.Variable),
		base: base,
		sp:   base,
	}
}

// AllocDataLoc reserves size bytes of this scope's frame and bumps the
// stack pointer.
func (s *StackScope) AllocDataLoc(size int) sema.DataLoc {
	n, err := safecast.Conv[uint64](size)
	if err != nil {
		panic(fmt.Errorf("stack slot size overflow: %w", err))
	}
	loc := sema.DataLoc{IsStack: true, Loc: s.sp, Size: size}
	s.sp += n
	return loc
}

// SP returns the next free stack offset.
func (s *StackScope) SP() uint64 { return s.sp }

func (s *StackScope) addVar(v *sema.Variable) {
	s.vars[v.Name()] = append(s.vars[v.Name()], v)
	s.order = append(s.order, v)
}

// getVar returns the most recent declaration of name.
func (s *StackScope) getVar(name string) *sema.Variable {
	decls := s.vars[name]
	if len(decls) == 0 {
		return nil
	}
	return decls[len(decls)-1]
}

// Vars lists declarations in declaration order, shadowed ones included.
func (s *StackScope) Vars() []*sema.Variable {
	out := make([]*sema.Variable, len(s.order))
	copy(out, s.order)
	return out
}
