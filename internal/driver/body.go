package driver

import (
	"context"
	"errors"

	"ferrum/internal/ast"
	"ferrum/internal/compiler"
	"ferrum/internal/diag"
	"ferrum/internal/mono"
	"ferrum/internal/sema"
	"ferrum/internal/source"
	"ferrum/internal/trace"
	"ferrum/internal/types"
)

// bodyChecker walks one function body. It stops at the first error.
type bodyChecker struct {
	ast      *ast.Builder
	c        *compiler.Compiler
	reg      *compiler.Registry
	tracer   trace.Tracer
	verify   func(*compiler.Compiler) error
	moved    map[sema.VarID]source.Span
	generics []string
	ns       string
	table    *types.GenericsTable
}

// checkFunc checks one instance of fn. Parameters are declared initialised
// in the function scope before the body runs.
func checkFunc(ctx context.Context, res *CheckResult, prog *Program, fn *compiler.Function, inst *mono.Function, table *types.GenericsTable, verify func(*compiler.Compiler) error) error {
	tracer := trace.FromContext(ctx)
	decl := fn.Decl
	span := trace.Begin(tracer, trace.ScopePass, "fn", trace.CurrentSpan(ctx)).WithExtra("name", decl.Name)
	if table.Len() > 0 {
		span.WithExtra("args", table.String())
	}

	bc := &bodyChecker{
		ast:      prog.AST,
		c:        res.Compiler,
		reg:      res.Registry,
		tracer:   tracer,
		verify:   verify,
		moved:    make(map[sema.VarID]source.Span),
		generics: fn.Generics(),
		ns:       decl.Namespace,
		table:    table,
	}
	depth := bc.c.Depth()
	bc.c.SetSpan(decl.Span)
	bc.c.PushScope()
	err := bc.params(inst.Header.Params, decl)
	if err == nil {
		err = bc.stmts(decl.Body)
	}
	if err == nil {
		bc.c.SetSpan(decl.Span)
		err = bc.c.PopScope()
	}
	if err != nil {
		bc.c.Unwind(depth)
		var se *sema.Error
		if errors.As(err, &se) && se.Internal() {
			trace.Error(tracer, trace.ScopePass, "fn", se.Error())
		}
		span.End("error")
		return err
	}
	span.End("ok")
	return nil
}

func (bc *bodyChecker) params(decls []mono.VarDecl, fn *ast.Func) error {
	for _, p := range decls {
		sp := fn.Span
		for _, ap := range fn.Params {
			if ap.Name == p.Name {
				sp = ap.Span
				break
			}
		}
		v, err := bc.c.Declare(sema.Decl{Name: p.Name, Type: p.Type, Mutable: p.Mutable, Span: sp})
		if err != nil {
			return err
		}
		loc, err := bc.c.AllocStack(p.Type.Size())
		if err != nil {
			return err
		}
		if err := v.AssignData(sema.Location(loc)); err != nil {
			return err
		}
		trace.Point(bc.tracer, trace.ScopeVar, "param", p.Name, map[string]string{"type": p.Type.String()})
	}
	return nil
}

func (bc *bodyChecker) resolve(id ast.TypeID) (types.Type, error) {
	return bc.reg.ResolveIn(id, bc.generics, bc.ns, bc.table)
}

func (bc *bodyChecker) stmts(ids []ast.StmtID) error {
	for _, id := range ids {
		st := bc.ast.Stmt(id)
		if st == nil {
			return errors.New("dangling statement")
		}
		bc.c.SetSpan(st.Span)
		if err := bc.stmt(st); err != nil {
			return spanned(err, st.Span)
		}
		if bc.verify != nil {
			if err := bc.verify(bc.c); err != nil {
				return &compiler.Error{Code: diag.InternalBorrowState, Span: st.Span, Err: err}
			}
		}
	}
	return nil
}

func spanned(err error, sp source.Span) error {
	var se *sema.Error
	if errors.As(err, &se) && se.Span.IsZero() {
		return se.WithSpan(sp)
	}
	return err
}

func (bc *bodyChecker) stmt(st *ast.Stmt) error {
	switch st.Kind {
	case ast.StmtLet:
		return bc.let(st)
	case ast.StmtAssign:
		return bc.assign(st)
	case ast.StmtSwap:
		return bc.swap(st)
	case ast.StmtBlock:
		bc.c.PushScope()
		if err := bc.stmts(st.Body); err != nil {
			return err
		}
		bc.c.SetSpan(st.Span)
		return bc.c.PopScope()
	default:
		return errors.New("unknown statement kind")
	}
}

func (bc *bodyChecker) lookup(name string) (*sema.Variable, error) {
	v := bc.c.Lookup(name)
	if v == nil {
		return nil, &sema.Error{Kind: sema.ErrUnknownVariable, Var: sema.VarLoc{Frame: bc.c.Depth(), Name: name}}
	}
	return v, nil
}

// source resolves what an expression reads before anything is declared, so
// `let x = x` sees the outer binding.
func (bc *bodyChecker) source(e *ast.Expr) (types.Type, *sema.Variable, error) {
	switch e.Kind {
	case ast.ExprLit, ast.ExprHeap:
		t, err := bc.resolve(e.Type)
		return t, nil, err
	case ast.ExprIdent:
		v, err := bc.lookup(e.Name)
		if err != nil {
			return types.Type{}, nil, err
		}
		if at, ok := bc.moved[v.ID()]; ok && !v.IsInitialized() {
			return types.Type{}, nil, &compiler.Error{
				Code: diag.SemaUseAfterMove,
				Span: e.Span,
				Msg:  "use of moved value " + v.Loc().String() + " (moved at " + at.String() + ")",
			}
		}
		return v.Type(), v, nil
	case ast.ExprRef:
		v, err := bc.lookup(e.Name)
		if err != nil {
			return types.Type{}, nil, err
		}
		return types.Ref(v.Type()), v, nil
	case ast.ExprMutRef:
		v, err := bc.lookup(e.Name)
		if err != nil {
			return types.Type{}, nil, err
		}
		return types.MutRef(v.Type()), v, nil
	default:
		return types.Type{}, nil, errors.New("unknown expression kind")
	}
}

func (bc *bodyChecker) let(st *ast.Stmt) error {
	var declared types.Type
	if st.Type.IsValid() {
		t, err := bc.resolve(st.Type)
		if err != nil {
			return err
		}
		declared = t
	}
	value := bc.ast.Expr(st.Value)
	if value == nil {
		if !declared.IsValid() {
			return &compiler.Error{Code: diag.SemaError, Span: st.Span, Msg: "cannot infer the type of `" + st.Name + "`"}
		}
		_, err := bc.c.Declare(sema.Decl{Name: st.Name, Type: declared, Mutable: st.Mutable, Span: st.Span})
		return err
	}

	t, src, err := bc.source(value)
	if err != nil {
		return err
	}
	if declared.IsValid() && !declared.Equal(t) {
		return &sema.Error{Kind: sema.ErrDataTypeMismatch, Got: t, Expected: declared, Span: value.Span}
	}
	v, err := bc.c.Declare(sema.Decl{Name: st.Name, Type: t, Mutable: st.Mutable, Span: st.Span})
	if err != nil {
		return err
	}
	return bc.bind(v, value, src)
}

// bind gives a variable without storage the value of e.
func (bc *bodyChecker) bind(v *sema.Variable, e *ast.Expr, src *sema.Variable) error {
	switch e.Kind {
	case ast.ExprLit:
		loc, err := bc.c.AllocStack(v.Type().Size())
		if err != nil {
			return err
		}
		return v.AssignData(sema.Location(loc))
	case ast.ExprHeap:
		return v.AssignData(sema.Location(bc.c.AllocHeap(v.Type().Size())))
	case ast.ExprIdent:
		return bc.move(v, src, e.Span)
	default:
		slot, err := bc.c.AllocStack(v.Type().Size())
		if err != nil {
			return err
		}
		if err := v.AssignData(sema.Location(slot)); err != nil {
			return err
		}
		return bc.borrow(v, src)
	}
}

func (bc *bodyChecker) move(dst, src *sema.Variable, at source.Span) error {
	if err := dst.TakeOwnership(src, bc.c); err != nil {
		return err
	}
	if dst != src {
		bc.moved[src.ID()] = at
	}
	delete(bc.moved, dst.ID())
	trace.Point(bc.tracer, trace.ScopeVar, "move", src.Name()+" -> "+dst.Name(), nil)
	return nil
}

func (bc *bodyChecker) borrow(v, target *sema.Variable) error {
	if err := v.Borrow(target, bc.c); err != nil {
		return err
	}
	trace.Point(bc.tracer, trace.ScopeVar, "borrow", v.Name()+" -> "+target.Name(), map[string]string{"state": target.State().String()})
	return nil
}

func (bc *bodyChecker) assign(st *ast.Stmt) error {
	v, err := bc.lookup(st.Name)
	if err != nil {
		return err
	}
	value := bc.ast.Expr(st.Value)
	if value == nil {
		return errors.New("assignment without a value")
	}
	t, src, err := bc.source(value)
	if err != nil {
		return err
	}
	if !v.Type().Equal(t) {
		return &sema.Error{Kind: sema.ErrDataTypeMismatch, Got: t, Expected: v.Type(), Span: value.Span}
	}
	if value.Kind == ast.ExprIdent {
		return bc.move(v, src, value.Span)
	}
	if !v.IsInitialized() {
		// Deferred initialisation of a declared binding.
		if err := bc.bind(v, value, src); err != nil {
			return err
		}
		delete(bc.moved, v.ID())
		return nil
	}

	switch value.Kind {
	case ast.ExprLit:
		var next *sema.DataSource
		if d := v.Source().Data; !d.IsStack {
			loc, err := bc.c.AllocStack(v.Type().Size())
			if err != nil {
				return err
			}
			next = sema.Location(loc)
		}
		return v.Overwrite(next, bc.c)
	case ast.ExprHeap:
		return v.Overwrite(sema.Location(bc.c.AllocHeap(v.Type().Size())), bc.c)
	default:
		if !v.Mutable() {
			return &sema.Error{Kind: sema.ErrDataNotMutable, Var: v.Loc()}
		}
		return bc.borrow(v, src)
	}
}

func (bc *bodyChecker) swap(st *ast.Stmt) error {
	a, err := bc.lookup(st.Name)
	if err != nil {
		return err
	}
	b, err := bc.lookup(st.Other)
	if err != nil {
		return err
	}
	for _, v := range []*sema.Variable{a, b} {
		switch {
		case !v.Mutable():
			return &sema.Error{Kind: sema.ErrDataNotMutable, Var: v.Loc()}
		case !v.IsInitialized():
			return &sema.Error{Kind: sema.ErrVariableNotInitialized, Var: v.Loc()}
		case v.State().IsBorrowed():
			return &sema.Error{Kind: sema.ErrModifiedBorrowedData, Var: v.Loc()}
		}
	}
	return a.Swap(b)
}
