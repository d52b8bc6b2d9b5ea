package compiler

import (
	"errors"
	"testing"

	"ferrum/internal/ast"
	"ferrum/internal/diag"
	"ferrum/internal/source"
	"ferrum/internal/types"
)

func codeOf(t *testing.T, err error) diag.Code {
	t.Helper()
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *compiler.Error, got %v", err)
	}
	return ce.Code
}

func pairDecl(b *ast.Builder) ast.StructDecl {
	return ast.StructDecl{
		Name:      "Pair",
		Namespace: "demo",
		Generics:  []string{"T", "U"},
		Fields: []ast.FieldDecl{
			{Name: "a", Type: b.PathType("T", source.Span{})},
			{Name: "b", Type: b.PathType("U", source.Span{})},
		},
	}
}

func TestRegistryResolvesGenericStruct(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	if err := r.Register([]ast.StructDecl{pairDecl(b)}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	id := b.PathType("demo::Pair", source.Span{}, b.PathType("u32", source.Span{}), b.PathType("u8", source.Span{}))
	ty, err := r.Resolve(id)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ty.Size() != 5 {
		t.Fatalf("size = %d, want 5", ty.Size())
	}
	f, ok := ty.Struct().Field("b")
	if !ok || f.Offset != 4 {
		t.Fatalf("field b = %+v", f)
	}
	again, err := r.Resolve(id)
	if err != nil || again.Struct() != ty.Struct() {
		t.Fatalf("second resolve must hit the cache")
	}
	if r.Cache().Hits() == 0 {
		t.Fatalf("cache hits = 0")
	}
}

func TestRegistryNamespaceLookupAndOrder(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	holder := ast.StructDecl{
		Name:      "Holder",
		Namespace: "demo",
		Fields: []ast.FieldDecl{
			{Name: "p", Type: b.PathType("Pair", source.Span{}, b.PathType("u16", source.Span{}), b.PathType("u16", source.Span{}))},
			{Name: "r", Type: b.RefType(b.PathType("u8", source.Span{}), false, source.Span{})},
		},
	}
	opt := ast.EnumDecl{
		Name:     "Opt",
		Generics: []string{"T"},
		Variants: []ast.VariantDecl{{Name: "None"}, {Name: "Some", Params: []ast.TypeID{b.PathType("T", source.Span{})}}},
	}
	if err := r.Register([]ast.StructDecl{holder, pairDecl(b)}, []ast.EnumDecl{opt}); err != nil {
		t.Fatalf("register: %v", err)
	}
	ty, err := r.Resolve(b.PathType("demo::Holder", source.Span{}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ty.Size() != 4+8 {
		t.Fatalf("holder size = %d", ty.Size())
	}
	e, err := r.Resolve(b.PathType("Opt", source.Span{}, b.PathType("u32", source.Span{})))
	if err != nil {
		t.Fatalf("resolve enum: %v", err)
	}
	if e.Kind() != types.KindEnum {
		t.Fatalf("kind = %s", e.Kind())
	}
	names := r.Templates()
	if len(names) != 3 || names[0] != "demo::Holder" || names[2] != "Opt" {
		t.Fatalf("templates = %v", names)
	}
}

func TestRegistryErrors(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	if err := r.Register([]ast.StructDecl{pairDecl(b)}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Resolve(b.PathType("demo::Nope", source.Span{})); codeOf(t, err) != diag.SemaUnknownType {
		t.Fatalf("expected unknown type, got %v", err)
	}
	if _, err := r.Resolve(b.PathType("demo::Pair", source.Span{}, b.PathType("u8", source.Span{}))); codeOf(t, err) != diag.SemaGenericArity {
		t.Fatalf("expected arity error, got %v", err)
	}
	if _, err := r.Resolve(b.PathType("u8", source.Span{}, b.PathType("u8", source.Span{}))); codeOf(t, err) != diag.SemaGenericArity {
		t.Fatalf("expected arity error on builtin, got %v", err)
	}
	if err := r.Register([]ast.StructDecl{pairDecl(b)}, nil); codeOf(t, err) != diag.SemaDuplicateDecl {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestRegistryResolvesLinkedList(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	list := ast.StructDecl{
		Name: "List",
		Fields: []ast.FieldDecl{
			{Name: "v", Type: b.PathType("u32", source.Span{})},
			{Name: "next", Type: b.PtrType(b.PathType("List", source.Span{}), false, source.Span{})},
		},
	}
	if err := r.Register([]ast.StructDecl{list}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	ty, err := r.Resolve(b.PathType("List", source.Span{Line: 3, Col: 1}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	next, ok := ty.Struct().Field("next")
	if !ok || ty.Size() != 12 || next.Offset != 4 {
		t.Fatalf("size = %d next = %+v", ty.Size(), next)
	}
	if elem, _ := next.Type.Elem(); !elem.Equal(ty) {
		t.Fatalf("next points at %s", elem)
	}
}

func TestRegistryRejectsByValueRecursion(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	list := ast.StructDecl{
		Name: "List",
		Fields: []ast.FieldDecl{
			{Name: "v", Type: b.PathType("u32", source.Span{})},
			{Name: "next", Type: b.PathType("List", source.Span{})},
		},
	}
	if err := r.Register([]ast.StructDecl{list}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := r.Resolve(b.PathType("List", source.Span{Line: 3, Col: 1}))
	if codeOf(t, err) != diag.SemaRecursiveType {
		t.Fatalf("expected recursive type, got %v", err)
	}
	d := ToDiagnostic(err, source.Span{})
	if d.Primary.Line != 3 || d.Code != diag.SemaRecursiveType {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestRegistryFunctionInstances(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	if err := r.Register([]ast.StructDecl{pairDecl(b)}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	u8 := b.PathType("u8", source.Span{})
	plain := &ast.Func{Name: "plain", Params: []ast.Param{{Name: "a", Type: u8}}}
	f, err := r.Function(plain)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	inst, err := r.Instantiate(f, nil)
	if err != nil {
		t.Fatalf("instantiate plain: %v", err)
	}
	if len(inst.Header.Params) != 1 || !inst.Header.Params[0].Type.Equal(types.U8) || inst.Header.Return.IsValid() {
		t.Fatalf("plain header = %+v", inst.Header)
	}
	if _, err := r.Instantiate(f, []types.Type{types.U8}); codeOf(t, err) != diag.SemaGenericArity {
		t.Fatalf("extra argument: %v", err)
	}

	swap := &ast.Func{
		Name:      "swap",
		Namespace: "demo",
		Owner:     "Pair",
		Generics:  []string{"V"},
		Params:    []ast.Param{{Name: "v", Type: b.PathType("V", source.Span{}), Mutable: true}},
		Return:    b.PathType("Pair", source.Span{}, b.PathType("U", source.Span{}), b.PathType("T", source.Span{})),
	}
	m, err := r.Function(swap)
	if err != nil {
		t.Fatalf("method: %v", err)
	}
	if !m.IsMethod() || len(m.Generics()) != 3 {
		t.Fatalf("generics = %v", m.Generics())
	}
	args := []types.Type{types.U32, types.U8, types.U16}
	mi, err := r.Instantiate(m, args)
	if err != nil {
		t.Fatalf("instantiate method: %v", err)
	}
	h := mi.Header
	if len(h.Params) != 2 || h.Params[0].Name != "self" || h.Params[0].Type.Kind() != types.KindRef {
		t.Fatalf("params = %+v", h.Params)
	}
	self, _ := h.Params[0].Type.Elem()
	if self.Size() != 5 || !h.Params[1].Mutable || !h.Params[1].Type.Equal(types.U16) {
		t.Fatalf("self = %s, v = %+v", self, h.Params[1])
	}
	if f, ok := h.Return.Struct().Field("a"); !ok || !f.Type.Equal(types.U8) {
		t.Fatalf("return = %s", h.Return)
	}
	again, err := r.Instantiate(m, args)
	if err != nil || again != mi || again.Ptr() != mi.Ptr() {
		t.Fatalf("equal arguments must reuse the instance")
	}
	if !mi.MatchesGenerics(types.NewGenericsTable(args...)) {
		t.Fatalf("instance fingerprint must cover owner and own arguments")
	}
}

func TestRegistryFunctionErrors(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRegistry(b, nil)
	if err := r.Register([]ast.StructDecl{pairDecl(b)}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	u8 := b.PathType("u8", source.Span{})
	cases := []struct {
		name string
		fn   ast.Func
		code diag.Code
	}{
		{"unknown owner", ast.Func{Name: "f", Owner: "Missing"}, diag.SemaUnknownType},
		{"generic clash", ast.Func{Name: "f", Namespace: "demo", Owner: "Pair", Generics: []string{"T"}}, diag.SemaDuplicateDecl},
		{"duplicate param", ast.Func{Name: "f", Params: []ast.Param{{Name: "a", Type: u8}, {Name: "a", Type: u8}}}, diag.SemaDuplicateDecl},
		{"self param", ast.Func{Name: "f", Namespace: "demo", Owner: "Pair", Params: []ast.Param{{Name: "self", Type: u8}}}, diag.SemaDuplicateDecl},
		{"unknown param type", ast.Func{Name: "f", Params: []ast.Param{{Name: "a", Type: b.PathType("Nope", source.Span{})}}}, diag.SemaUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Function(&tc.fn); codeOf(t, err) != tc.code {
				t.Fatalf("code = %v", err)
			}
		})
	}
}
