package testkit

import (
	"fmt"

	"ferrum/internal/compiler"
	"ferrum/internal/sema"
)

// CheckBorrowInvariants cross-checks the compiler's live variables:
// 1) every live stack reference resolves to a live variable
// 2) a variable's shared count equals the live shared references to it
// 3) a variable is mut-borrowed iff exactly one live &mut refers to it
// 4) no variable sits in a scope deeper than its declaration level
// 5) a name declared in a scope resolves from that scope to a declaration of
// the same scope, and a global name resolves to the global
func CheckBorrowInvariants(c *compiler.Compiler) error {
	if c == nil {
		return fmt.Errorf("nil compiler")
	}
	live := c.Globals()
	for _, g := range live {
		if c.FindVar(g.Name(), 0) != g {
			return fmt.Errorf("global %s does not resolve", g.Loc())
		}
	}
	for lvl := range c.Depth() {
		for _, v := range c.Scope(lvl).Vars() {
			if v.StackLvl() != lvl {
				return fmt.Errorf("%s declared at %d sits in scope %d", v.Loc(), v.StackLvl(), lvl)
			}
			if got := c.FindVar(v.Name(), lvl+1); got == nil || got.StackLvl() != lvl {
				return fmt.Errorf("%s does not resolve from its own scope", v.Loc())
			}
			live = append(live, v)
		}
	}

	shared := make(map[sema.VarID]int)
	exclusive := make(map[sema.VarID]int)
	for _, v := range live {
		src := v.Source()
		if !v.HoldsRef() || !v.DoInvalidate() {
			continue
		}
		target, ok := c.ResolveVar(src.Target)
		if !ok {
			return fmt.Errorf("%s refers to unknown %s", v.Loc(), src.Target)
		}
		if src.Kind == sema.SourceMutReference {
			exclusive[target.ID()]++
		} else {
			shared[target.ID()]++
		}
	}

	for _, v := range live {
		st := v.State()
		n := st.Count()
		switch st.Kind() {
		case sema.BorrowShared:
			if shared[v.ID()] != n || exclusive[v.ID()] != 0 {
				return fmt.Errorf("%s is %s but has %d shared and %d mut references", v.Loc(), st, shared[v.ID()], exclusive[v.ID()])
			}
		case sema.BorrowMut:
			if exclusive[v.ID()] != 1 || shared[v.ID()] != 0 {
				return fmt.Errorf("%s is %s but has %d shared and %d mut references", v.Loc(), st, shared[v.ID()], exclusive[v.ID()])
			}
		default:
			if shared[v.ID()] != 0 || exclusive[v.ID()] != 0 {
				return fmt.Errorf("%s is not borrowed but has %d shared and %d mut references", v.Loc(), shared[v.ID()], exclusive[v.ID()])
			}
		}
	}
	return nil
}
