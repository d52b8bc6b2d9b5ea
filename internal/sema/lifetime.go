package sema

import "fmt"

// LifetimeKind classifies how long a variable's data lives.
type LifetimeKind uint8

const (
	// LifetimeDynamic is heap data; enforcement happens at runtime.
	LifetimeDynamic LifetimeKind = iota
	// LifetimeStatic lives for the whole program (globals, constants).
	LifetimeStatic
	// LifetimeScoped is stack data bounded by a lexical scope.
	LifetimeScoped
)

// OpenEnd marks a scoped lifetime whose scope has not closed yet.
const OpenEnd = -1

// Lifetime of a variable. Start and End are scope depths for scoped
// lifetimes; End stays OpenEnd until the scope pops.
type Lifetime struct {
	Kind  LifetimeKind
	Start int
	End   int
}

func Dynamic() Lifetime { return Lifetime{Kind: LifetimeDynamic, End: OpenEnd} }

func Static() Lifetime { return Lifetime{Kind: LifetimeStatic, End: OpenEnd} }

func Scoped(start, end int) Lifetime { return Lifetime{Kind: LifetimeScoped, Start: start, End: end} }

// IsOpen reports whether a scoped lifetime is still running.
func (l Lifetime) IsOpen() bool { return l.Kind != LifetimeScoped || l.End == OpenEnd }

// Covers reports whether data with lifetime l stays valid for as long as a
// holder with lifetime holder exists.
func (l Lifetime) Covers(holder Lifetime) bool {
	switch l.Kind {
	case LifetimeStatic, LifetimeDynamic:
		return true
	}
	if !l.IsOpen() {
		return false
	}
	switch holder.Kind {
	case LifetimeScoped:
		return l.Start <= holder.Start
	default:
		return false
	}
}

func (l Lifetime) String() string {
	switch l.Kind {
	case LifetimeDynamic:
		return "dynamic"
	case LifetimeStatic:
		return "static"
	default:
		if l.End == OpenEnd {
			return fmt.Sprintf("scoped(%d..)", l.Start)
		}
		return fmt.Sprintf("scoped(%d..%d)", l.Start, l.End)
	}
}
