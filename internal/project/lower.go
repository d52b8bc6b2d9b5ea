package project

import (
	"errors"
	"fmt"
	"strings"

	"ferrum/internal/ast"
	"ferrum/internal/diag"
	"ferrum/internal/driver"
	"ferrum/internal/source"
)

// Program lowers the manifest into a checkable program.
func (m *Manifest) Program() (*driver.Program, error) {
	l := &lowerer{m: m, b: ast.NewBuilder()}
	cfg := &m.Config
	prog := &driver.Program{Name: cfg.Package.Name, AST: l.b}

	for _, s := range cfg.Structs {
		d := ast.StructDecl{Name: s.Name, Namespace: s.Namespace, Generics: s.Generics, Span: l.span(s.Line, 0)}
		for _, f := range s.Fields {
			t, err := l.typ(f.Type, s.Line, 0)
			if err != nil {
				return nil, err
			}
			d.Fields = append(d.Fields, ast.FieldDecl{Name: f.Name, Type: t, Span: d.Span})
		}
		prog.Structs = append(prog.Structs, d)
	}
	for _, e := range cfg.Enums {
		d := ast.EnumDecl{Name: e.Name, Namespace: e.Namespace, Generics: e.Generics, Span: l.span(e.Line, 0)}
		for _, v := range e.Variants {
			vd := ast.VariantDecl{Name: v.Name, Span: d.Span}
			for _, p := range v.Params {
				t, err := l.typ(p, e.Line, 0)
				if err != nil {
					return nil, err
				}
				vd.Params = append(vd.Params, t)
			}
			d.Variants = append(d.Variants, vd)
		}
		prog.Enums = append(prog.Enums, d)
	}
	for _, g := range cfg.Globals {
		t, err := l.typ(g.Type, g.Line, 0)
		if err != nil {
			return nil, err
		}
		prog.Globals = append(prog.Globals, ast.Global{Name: g.Name, Mutable: g.Mutable, Type: t, Span: l.span(g.Line, 0)})
	}
	for _, fn := range cfg.Funcs {
		f, err := l.fn(fn)
		if err != nil {
			return nil, fmt.Errorf("fn %s: %w", fn.Name, err)
		}
		prog.Funcs = append(prog.Funcs, f)
	}
	return prog, nil
}

func (l *lowerer) fn(fn FuncConfig) (ast.Func, error) {
	out := ast.Func{
		Name:      fn.Name,
		Namespace: fn.Namespace,
		Owner:     fn.Owner,
		Generics:  fn.Generics,
		Span:      l.span(fn.Line, 0),
	}
	for _, p := range fn.Params {
		t, err := l.typ(p.Type, fn.Line, 0)
		if err != nil {
			return ast.Func{}, err
		}
		out.Params = append(out.Params, ast.Param{Name: p.Name, Type: t, Mutable: p.Mut, Span: out.Span})
	}
	if fn.Returns != "" {
		t, err := l.typ(fn.Returns, fn.Line, 0)
		if err != nil {
			return ast.Func{}, err
		}
		out.Return = t
	}
	for _, args := range fn.Instances {
		ids := make([]ast.TypeID, 0, len(args))
		for _, a := range args {
			t, err := l.typ(a, fn.Line, 0)
			if err != nil {
				return ast.Func{}, err
			}
			ids = append(ids, t)
		}
		out.Instances = append(out.Instances, ids)
	}
	body, err := l.stmts(fn.Stmts)
	if err != nil {
		return ast.Func{}, err
	}
	out.Body = body
	return out, nil
}

type lowerer struct {
	m *Manifest
	b *ast.Builder
}

func (l *lowerer) span(line, col uint32) source.Span {
	return source.Span{File: l.m.File, Line: line, Col: col}
}

func (l *lowerer) typ(s string, line, col uint32) (ast.TypeID, error) {
	t, err := ParseType(l.b, s, l.span(line, col))
	if err != nil {
		return ast.NoTypeID, &ManifestError{Code: diag.ProjBadTypeExpr, Path: l.m.Path, Line: line, Msg: "bad type expression", Err: err}
	}
	return t, nil
}

func (l *lowerer) stmts(in []StmtConfig) ([]ast.StmtID, error) {
	out := make([]ast.StmtID, 0, len(in))
	for _, st := range in {
		id, err := l.stmt(st)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (l *lowerer) stmt(st StmtConfig) (ast.StmtID, error) {
	sp := l.span(st.Line, st.Col)
	switch st.Op {
	case "let":
		ty := ast.NoTypeID
		if st.Type != "" {
			t, err := l.typ(st.Type, st.Line, st.Col)
			if err != nil {
				return ast.NoStmtID, err
			}
			ty = t
		}
		value := ast.NoExprID
		if st.Value != "" {
			v, err := l.expr(st.Value, sp)
			if err != nil {
				return ast.NoStmtID, err
			}
			value = v
		}
		return l.b.Let(st.Name, st.Mut, ty, value, sp), nil
	case "assign":
		v, err := l.expr(st.Value, sp)
		if err != nil {
			return ast.NoStmtID, err
		}
		return l.b.Assign(st.Name, v, sp), nil
	case "swap":
		return l.b.Swap(st.Name, st.With, sp), nil
	case "block":
		body, err := l.stmts(st.Body)
		if err != nil {
			return ast.NoStmtID, err
		}
		return l.b.Block(body, sp), nil
	default:
		return ast.NoStmtID, &ManifestError{Code: diag.ProjManifestInvalid, Path: l.m.Path, Line: st.Line, Msg: fmt.Sprintf("unknown op %q", st.Op)}
	}
}

var errEmptyExpr = errors.New("empty expression")

// expr reads `lit T`, `heap T`, `&name`, `&mut name` or a bare name.
func (l *lowerer) expr(s string, sp source.Span) (ast.ExprID, error) {
	s = strings.TrimSpace(s)
	bad := func(err error) error {
		return &ManifestError{Code: diag.ProjManifestInvalid, Path: l.m.Path, Line: sp.Line, Msg: fmt.Sprintf("bad value %q", s), Err: err}
	}
	if s == "" {
		return ast.NoExprID, bad(errEmptyExpr)
	}
	if kw, rest, ok := strings.Cut(s, " "); ok && (kw == "lit" || kw == "heap") {
		t, err := l.typ(rest, sp.Line, sp.Col)
		if err != nil {
			return ast.NoExprID, err
		}
		if kw == "lit" {
			return l.b.Lit(t, sp), nil
		}
		return l.b.Heap(t, sp), nil
	}
	if rest, ok := strings.CutPrefix(s, "&"); ok {
		rest = strings.TrimSpace(rest)
		mut := false
		if name, ok := strings.CutPrefix(rest, "mut "); ok {
			mut, rest = true, strings.TrimSpace(name)
		}
		if !validName(rest) {
			return ast.NoExprID, bad(errors.New("expected a variable name"))
		}
		return l.b.Borrow(rest, mut, sp), nil
	}
	if !validName(s) {
		return ast.NoExprID, bad(errors.New("expected a variable name"))
	}
	return l.b.Ident(s, sp), nil
}

func validName(s string) bool {
	r := &typeReader{in: s}
	return r.ident() == s && s != ""
}
