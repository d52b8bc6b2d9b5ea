package compiler

import (
	"strings"

	"ferrum/internal/ast"
	"ferrum/internal/diag"
	"ferrum/internal/mono"
	"ferrum/internal/source"
	"ferrum/internal/types"
)

type aggregate struct {
	tmpl     mono.AggregateTemplate
	generics []string
}

// Registry turns declarations into mono templates and resolves type
// expressions to concrete types through a shared instantiation cache.
type Registry struct {
	ast       *ast.Builder
	cache     *mono.Cache
	templates map[string]aggregate
	order     []string
}

func NewRegistry(b *ast.Builder, cache *mono.Cache) *Registry {
	if cache == nil {
		cache = mono.NewCache()
	}
	return &Registry{ast: b, cache: cache, templates: make(map[string]aggregate)}
}

func (r *Registry) Cache() *mono.Cache { return r.cache }

// Templates lists registered template names in registration order.
func (r *Registry) Templates() []string { return append([]string(nil), r.order...) }

// Register declares every struct and enum first and fills their members in
// a second pass, so declarations may refer to each other in any order.
func (r *Registry) Register(structs []ast.StructDecl, enums []ast.EnumDecl) error {
	stmpls := make([]*mono.StructTemplate, len(structs))
	for i := range structs {
		d := &structs[i]
		t := &mono.StructTemplate{Label: d.Name, Namespace: types.Namespace(d.Namespace), Generics: d.Generics}
		if err := r.add(t.Name(), aggregate{tmpl: t, generics: d.Generics}, d.Span); err != nil {
			return err
		}
		stmpls[i] = t
	}
	etmpls := make([]*mono.EnumTemplate, len(enums))
	for i := range enums {
		d := &enums[i]
		t := &mono.EnumTemplate{Label: d.Name, Namespace: types.Namespace(d.Namespace), Generics: d.Generics}
		if err := r.add(t.Name(), aggregate{tmpl: t, generics: d.Generics}, d.Span); err != nil {
			return err
		}
		etmpls[i] = t
	}

	for i, d := range structs {
		fields := make([]mono.FieldTemplate, 0, len(d.Fields))
		for _, f := range d.Fields {
			slot, err := r.SlotFor(f.Type, d.Generics, d.Namespace)
			if err != nil {
				return err
			}
			fields = append(fields, mono.FieldTemplate{Name: f.Name, Type: slot})
		}
		stmpls[i].Fields = fields
	}
	for i, d := range enums {
		variants := make([]mono.VariantTemplate, 0, len(d.Variants))
		for _, v := range d.Variants {
			params := make([]mono.Slot, 0, len(v.Params))
			for _, p := range v.Params {
				slot, err := r.SlotFor(p, d.Generics, d.Namespace)
				if err != nil {
					return err
				}
				params = append(params, slot)
			}
			variants = append(variants, mono.VariantTemplate{Name: v.Name, Params: params})
		}
		etmpls[i].Variants = variants
	}
	return nil
}

func (r *Registry) add(name string, a aggregate, sp source.Span) error {
	if _, ok := r.templates[name]; ok {
		return errorf(diag.SemaDuplicateDecl, sp, "type %s declared twice", name)
	}
	if _, ok := types.Builtin(name); ok {
		return errorf(diag.SemaDuplicateDecl, sp, "type %s shadows a builtin", name)
	}
	r.templates[name] = a
	r.order = append(r.order, name)
	return nil
}

// Template looks up a registered aggregate by qualified name.
func (r *Registry) Template(name string) (mono.AggregateTemplate, bool) {
	a, ok := r.templates[name]
	return a.tmpl, ok
}

// SlotFor converts a type expression into a template slot. generics names
// the parameters in scope; ns is the declaring namespace, searched after
// the path as written.
func (r *Registry) SlotFor(id ast.TypeID, generics []string, ns string) (mono.Slot, error) {
	te := r.ast.Type(id)
	if te == nil {
		return nil, errorf(diag.InternalMalformedGenerics, source.Span{}, "dangling type expression %d", id)
	}
	switch te.Kind {
	case ast.TypeRef, ast.TypeMutRef:
		inner, err := r.SlotFor(te.Elem, generics, ns)
		if err != nil {
			return nil, err
		}
		return mono.RefSlot{Inner: inner, Mut: te.Kind == ast.TypeMutRef}, nil
	case ast.TypePtr, ast.TypeMutPtr:
		inner, err := r.SlotFor(te.Elem, generics, ns)
		if err != nil {
			return nil, err
		}
		return mono.PtrSlot{Inner: inner, Mut: te.Kind == ast.TypeMutPtr}, nil
	case ast.TypeTuple:
		elems := make([]mono.Slot, 0, len(te.Elems))
		for _, e := range te.Elems {
			s, err := r.SlotFor(e, generics, ns)
			if err != nil {
				return nil, err
			}
			elems = append(elems, s)
		}
		return mono.TupleSlot{Elems: elems}, nil
	}

	path := te.Path
	if !strings.Contains(path, "::") {
		for i, g := range generics {
			if g == path {
				if len(te.Args) > 0 {
					return nil, errorf(diag.SemaGenericArity, te.Span, "generic parameter %s takes no arguments", g)
				}
				return mono.Param{Index: i, Name: g}, nil
			}
		}
		if t, ok := types.Builtin(path); ok {
			if len(te.Args) > 0 {
				return nil, errorf(diag.SemaGenericArity, te.Span, "builtin %s takes no arguments", path)
			}
			return mono.Typed{Type: t}, nil
		}
	}
	a, ok := r.lookup(path, ns)
	if !ok {
		return nil, errorf(diag.SemaUnknownType, te.Span, "unknown type %s", path)
	}
	if len(te.Args) != len(a.generics) {
		return nil, errorf(diag.SemaGenericArity, te.Span, "%s expects %d generic arguments, got %d", a.tmpl.Name(), len(a.generics), len(te.Args))
	}
	args := make([]mono.Slot, 0, len(te.Args))
	for _, arg := range te.Args {
		s, err := r.SlotFor(arg, generics, ns)
		if err != nil {
			return nil, err
		}
		args = append(args, s)
	}
	return mono.Nested{Template: a.tmpl, Args: args}, nil
}

func (r *Registry) lookup(path, ns string) (aggregate, bool) {
	a, ok := r.templates[path]
	if !ok && ns != "" {
		a, ok = r.templates[types.Namespace(ns).Qualify(path)]
	}
	return a, ok
}

// Resolve produces the concrete type of a type expression written outside
// any generic declaration.
func (r *Registry) Resolve(id ast.TypeID) (types.Type, error) {
	return r.ResolveIn(id, nil, "", nil)
}

// ResolveIn resolves a type expression written inside one instance of a
// generic function: generics names the parameters bound by table and ns is
// the declaring namespace.
func (r *Registry) ResolveIn(id ast.TypeID, generics []string, ns string, table *types.GenericsTable) (types.Type, error) {
	slot, err := r.SlotFor(id, generics, ns)
	if err != nil {
		return types.Type{}, err
	}
	t, err := mono.Resolve(r.cache, slot, table)
	if err != nil {
		sp := source.Span{}
		if te := r.ast.Type(id); te != nil {
			sp = te.Span
		}
		return types.Type{}, typeError(err, sp)
	}
	return t, nil
}
