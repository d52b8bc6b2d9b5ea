package driver

import (
	"context"
	"errors"
	"strconv"

	"ferrum/internal/ast"
	"ferrum/internal/compiler"
	"ferrum/internal/diag"
	"ferrum/internal/mono"
	"ferrum/internal/observ"
	"ferrum/internal/sema"
	"ferrum/internal/source"
	"ferrum/internal/trace"
	"ferrum/internal/types"
)

// CheckOptions tunes a Check run.
type CheckOptions struct {
	MaxDiagnostics int
	EnableTimings  bool
	PhaseObserver  PhaseObserver
	// Verify, when set, runs after every statement; a non-nil error is
	// reported as an internal diagnostic and stops the function.
	Verify func(*compiler.Compiler) error
}

// CheckResult holds the outcome of checking a program.
type CheckResult struct {
	Bag      *diag.Bag
	Compiler *compiler.Compiler
	Registry *compiler.Registry
	Timer    *observ.Timer

	// Instances lists every function instance whose body was checked.
	Instances []mono.FunctionPtr
	Checked   int
	Failed    int
}

// Cache returns the instantiation cache shared by all functions.
func (r *CheckResult) Cache() *mono.Cache { return r.Registry.Cache() }

// Check registers the program's templates and globals, then runs the
// ownership rules over every function body. A failing function contributes
// one diagnostic; checking continues with the next function. The returned
// error is reserved for failures outside the program itself.
func Check(ctx context.Context, prog *Program, opts CheckOptions) (*CheckResult, error) {
	if prog == nil || prog.AST == nil {
		return nil, errors.New("driver: empty program")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx)).
		WithExtra("program", prog.Name)
	ctx = trace.WithSpan(ctx, span)

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, observer: opts.PhaseObserver}

	res := &CheckResult{
		Bag:      diag.NewBag(opts.MaxDiagnostics),
		Compiler: compiler.New(prog.Name, tracer),
		Registry: compiler.NewRegistry(prog.AST, mono.NewCache()),
		Timer:    timer,
	}

	done := ph.start("register")
	err := res.Registry.Register(prog.Structs, prog.Enums)
	done(strconv.Itoa(len(res.Registry.Templates())) + " templates")
	if err != nil {
		res.Bag.Add(compiler.ToDiagnostic(err, declSpan(prog)))
		span.End("register failed")
		return res, nil
	}

	done = ph.start("globals")
	for _, g := range prog.Globals {
		if err := declareGlobal(res, prog, g); err != nil {
			res.Bag.Add(compiler.ToDiagnostic(err, g.Span))
		}
	}
	done("")

	done = ph.start("functions")
	for i := range prog.Funcs {
		checkDecl(ctx, res, prog, &prog.Funcs[i], opts.Verify)
	}
	done(strconv.Itoa(res.Checked) + " functions")

	if timer != nil {
		timer.Set("instances", res.Cache().Len())
		timer.Set("cache_hits", res.Cache().Hits())
		timer.Set("ops", res.Compiler.Chunk().Len())
		report := timer.Report()
		appendTimingDiagnostic(res.Bag, timingPayload{
			Program:  prog.Name,
			TotalMS:  report.TotalMS,
			Phases:   report.Phases,
			Counters: report.Counters,
		})
	}
	span.WithExtra("failed", strconv.Itoa(res.Failed)).End("")
	return res, nil
}

// checkDecl registers fn and checks its body once per instance. A function
// without generics has a single implicit instance; a generic one without
// instances only has its signature checked.
func checkDecl(ctx context.Context, res *CheckResult, prog *Program, fn *ast.Func, verify func(*compiler.Compiler) error) {
	def, err := res.Registry.Function(fn)
	if err != nil {
		res.Checked++
		res.Failed++
		res.Bag.Add(compiler.ToDiagnostic(err, fn.Span))
		return
	}
	instances := fn.Instances
	if len(instances) == 0 && len(def.Generics()) == 0 {
		instances = [][]ast.TypeID{nil}
	}
	for _, ids := range instances {
		res.Checked++
		table, err := instanceArgs(res.Registry, ids)
		var inst *mono.Function
		if err == nil {
			inst, err = res.Registry.Instantiate(def, table.Types())
		}
		if err == nil {
			res.Instances = append(res.Instances, inst.Ptr())
			err = checkFunc(ctx, res, prog, def, inst, table, verify)
		}
		if err != nil {
			res.Failed++
			d := compiler.ToDiagnostic(err, fn.Span)
			if table.Len() > 0 {
				d = d.WithNote(fn.Span, "in instance "+def.Template.Name()+table.String())
			}
			res.Bag.Add(d)
		}
	}
}

func instanceArgs(reg *compiler.Registry, ids []ast.TypeID) (*types.GenericsTable, error) {
	args := make([]types.Type, 0, len(ids))
	for _, id := range ids {
		t, err := reg.Resolve(id)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return types.NewGenericsTable(args...), nil
}

// declSpan is where registration errors without their own span point.
func declSpan(prog *Program) source.Span {
	if len(prog.Structs) > 0 {
		return prog.Structs[0].Span
	}
	if len(prog.Enums) > 0 {
		return prog.Enums[0].Span
	}
	return source.Span{}
}

func declareGlobal(res *CheckResult, prog *Program, g ast.Global) error {
	ty, err := res.Registry.Resolve(g.Type)
	if err != nil {
		return err
	}
	_, err = res.Compiler.DeclareGlobal(sema.Decl{Name: g.Name, Type: ty, Mutable: g.Mutable, Span: g.Span})
	if err != nil {
		return &compiler.Error{Code: diag.SemaDuplicateDecl, Span: g.Span, Err: err}
	}
	return nil
}
