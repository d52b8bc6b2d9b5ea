package mono

import (
	"ferrum/internal/types"
)

// maxNestingDepth bounds nested instantiation. Templates that keep growing
// their own arguments (Node<T> containing Node<(T, T)>) never reach a fixed
// point and are reported as recursive.
const maxNestingDepth = 64

type activeKey struct {
	tmpl any
	fp   uint64
	name string
	// handle is the declared but not yet defined aggregate, if any.
	handle any
	// barrier is the instantiator's barrier before this entry was pushed.
	barrier int
}

// instantiator carries the cache and the chain of templates being built.
//
// indirect counts the pointer and reference slots enclosing the slot being
// resolved. barrier is the value of indirect at the point where a by-value
// position began: the start of the innermost template or of a Nested
// argument list. A template may use an in-progress handle only when
// indirect > barrier, i.e. through a pointer it owns directly.
type instantiator struct {
	cache    *Cache
	active   []activeKey
	indirect int
	barrier  int
}

func newInstantiator(c *Cache) *instantiator {
	return &instantiator{cache: c}
}

// Instantiate produces the final value of tmpl for table, consulting and
// filling the cache. Requesting the same template with an equal table twice
// returns the identical value.
func Instantiate[F any](c *Cache, tmpl Template[F], table *types.GenericsTable) (F, error) {
	return instantiate(newInstantiator(c), tmpl, table)
}

func instantiate[F any](in *instantiator, tmpl Template[F], table *types.GenericsTable) (F, error) {
	var zero F
	if table == nil {
		table = types.EmptyGenerics()
	}
	key := cacheKey{tmpl: tmpl, fp: table.Fingerprint()}
	if v, ok := in.cache.lookup(key, table); ok {
		if f, ok := v.(F); ok {
			return f, nil
		}
	}
	if h, ok := in.pending(key, table); ok {
		if f, ok := h.(F); ok {
			return f, nil
		}
	}
	if err := in.enter(key, tmpl.Name()); err != nil {
		return zero, err
	}
	v, err := tmpl.generate(in, table)
	in.leave()
	if err != nil {
		return zero, err
	}
	in.cache.store(key, table, tmpl.Name(), v)
	return v, nil
}

// pending returns the in-progress handle for key when it is reached through
// an indirection.
func (in *instantiator) pending(key cacheKey, table *types.GenericsTable) (any, bool) {
	if in.indirect <= in.barrier {
		return nil, false
	}
	for _, a := range in.active {
		if a.tmpl == key.tmpl && a.fp == key.fp && a.handle != nil && matchesTable(a.handle, table) {
			return a.handle, true
		}
	}
	return nil, false
}

func matchesTable(h any, table *types.GenericsTable) bool {
	switch x := h.(type) {
	case *types.Struct:
		return types.NewGenericsTable(x.Args()...).Equal(table)
	case *types.Enum:
		return types.NewGenericsTable(x.Args()...).Equal(table)
	}
	return false
}

func (in *instantiator) enter(key cacheKey, name string) error {
	recursive := len(in.active) >= maxNestingDepth
	for _, a := range in.active {
		if a.tmpl == key.tmpl && a.fp == key.fp {
			recursive = true
			break
		}
	}
	if recursive {
		chain := make([]string, 0, len(in.active)+1)
		for _, a := range in.active {
			chain = append(chain, a.name)
		}
		chain = append(chain, name)
		return &InstantiationError{Kind: ErrRecursiveTemplate, Template: name, Chain: chain}
	}
	in.active = append(in.active, activeKey{tmpl: key.tmpl, fp: key.fp, name: name, barrier: in.barrier})
	in.barrier = in.indirect
	return nil
}

// declare publishes the handle of the template on top of the chain.
func (in *instantiator) declare(handle any) {
	if n := len(in.active); n > 0 {
		in.active[n-1].handle = handle
	}
}

func (in *instantiator) leave() {
	if n := len(in.active); n > 0 {
		in.barrier = in.active[n-1].barrier
		in.active = in.active[:n-1]
	}
}

// behindPointer resolves s one indirection deeper.
func (in *instantiator) behindPointer(s Slot, table *types.GenericsTable) (types.Type, error) {
	in.indirect++
	defer func() { in.indirect-- }()
	return s.resolve(in, table)
}

// byValue resolves slots as a new by-value position, hiding enclosing
// indirections from in-progress lookups.
func (in *instantiator) byValue(table *types.GenericsTable, slots []Slot) ([]types.Type, error) {
	saved := in.barrier
	in.barrier = in.indirect
	defer func() { in.barrier = saved }()
	return resolveAll(in, table, slots)
}

// Resolve evaluates a slot against table, instantiating nested templates
// through c. It is how a concrete type annotation like Box<u32> is turned
// into a type.
func Resolve(c *Cache, s Slot, table *types.GenericsTable) (types.Type, error) {
	if table == nil {
		table = types.EmptyGenerics()
	}
	return s.resolve(newInstantiator(c), table)
}
