package compiler

import (
	"slices"

	"ferrum/internal/ast"
	"ferrum/internal/diag"
	"ferrum/internal/mono"
	"ferrum/internal/source"
	"ferrum/internal/types"
)

// Function is a registered function template. A method keeps its owner,
// whose generics fill the first slots of every instantiation.
type Function struct {
	Decl     *ast.Func
	Template *mono.FunctionTemplate
	owner    *aggregate
	generics []string
}

// Generics lists every generic parameter in slot order.
func (f *Function) Generics() []string { return f.generics }

// IsMethod reports whether f was declared on an owner aggregate.
func (f *Function) IsMethod() bool { return f.owner != nil }

// Function builds the template of fn. Parameter and return types become
// slots with the owner's and fn's own generics in scope.
func (r *Registry) Function(fn *ast.Func) (*Function, error) {
	f := &Function{Decl: fn}
	if fn.Owner != "" {
		a, ok := r.lookup(fn.Owner, fn.Namespace)
		if !ok {
			return nil, errorf(diag.SemaUnknownType, fn.Span, "unknown owner %s of fn %s", fn.Owner, fn.Name)
		}
		f.owner = &a
		f.generics = append(f.generics, a.generics...)
	}
	for _, g := range fn.Generics {
		if slices.Contains(f.generics, g) {
			return nil, errorf(diag.SemaDuplicateDecl, fn.Span, "generic parameter %s declared twice", g)
		}
		f.generics = append(f.generics, g)
	}

	tmpl := &mono.FunctionTemplate{Label: fn.Name, Namespace: types.Namespace(fn.Namespace), Generics: f.generics}
	seen := make(map[string]bool, len(fn.Params)+1)
	if f.owner != nil {
		args := make([]mono.Slot, len(f.owner.generics))
		for i, g := range f.owner.generics {
			args[i] = mono.Param{Index: i, Name: g}
		}
		self, err := r.param("self", mono.RefSlot{Inner: mono.Nested{Template: f.owner.tmpl, Args: args}}, false, f.generics, fn.Span)
		if err != nil {
			return nil, err
		}
		tmpl.Params = append(tmpl.Params, self)
		seen["self"] = true
	}
	for _, p := range fn.Params {
		if seen[p.Name] {
			return nil, errorf(diag.SemaDuplicateDecl, p.Span, "parameter %s declared twice", p.Name)
		}
		seen[p.Name] = true
		slot, err := r.SlotFor(p.Type, f.generics, fn.Namespace)
		if err != nil {
			return nil, err
		}
		decl, err := r.param(p.Name, slot, p.Mutable, f.generics, p.Span)
		if err != nil {
			return nil, err
		}
		tmpl.Params = append(tmpl.Params, decl)
	}
	if fn.Return.IsValid() {
		slot, err := r.SlotFor(fn.Return, f.generics, fn.Namespace)
		if err != nil {
			return nil, err
		}
		tmpl.Return = slot
	}
	f.Template = tmpl
	return f, nil
}

// param wraps a parameter slot. With no generics in scope the type is final
// and resolved once here.
func (r *Registry) param(name string, slot mono.Slot, mutable bool, generics []string, sp source.Span) (mono.Template[mono.VarDecl], error) {
	if len(generics) > 0 {
		return &mono.VarDeclTemplate{Label: name, Type: slot, Mutable: mutable}, nil
	}
	t, err := mono.Resolve(r.cache, slot, nil)
	if err != nil {
		return nil, typeError(err, sp)
	}
	return &mono.Concrete[mono.VarDecl]{Label: name, Value: mono.VarDecl{Name: name, Type: t, Mutable: mutable}}, nil
}

// Instantiate produces the signature of f for args, owner arguments first.
// Signatures are memoized in the shared cache.
func (r *Registry) Instantiate(f *Function, args []types.Type) (*mono.Function, error) {
	if len(args) != len(f.generics) {
		return nil, errorf(diag.SemaGenericArity, f.Decl.Span, "%s expects %d generic arguments, got %d", f.Template.Name(), len(f.generics), len(args))
	}
	var (
		fn  *mono.Function
		err error
	)
	if f.owner != nil {
		n := len(f.owner.generics)
		fn, err = mono.InstantiateMethod(r.cache, f.Template, types.NewGenericsTable(args[:n]...), types.NewGenericsTable(args[n:]...))
	} else {
		fn, err = mono.Instantiate[*mono.Function](r.cache, f.Template, types.NewGenericsTable(args...))
	}
	if err != nil {
		return nil, typeError(err, f.Decl.Span)
	}
	return fn, nil
}
