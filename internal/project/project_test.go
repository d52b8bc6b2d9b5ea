package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ferrum/internal/ast"
	"ferrum/internal/diag"
	"ferrum/internal/driver"
	"ferrum/internal/source"
)

const demoManifest = `
[package]
name = "demo"

[[struct]]
name = "Pair"
namespace = "demo"
generics = ["T", "U"]
fields = [{ name = "a", type = "T" }, { name = "b", type = "U" }]
line = 5

[[enum]]
name = "Opt"
generics = ["T"]
variants = [{ name = "None" }, { name = "Some", params = ["T"] }]

[[global]]
name = "LIMIT"
type = "u64"

[[fn]]
name = "ok"
line = 20

[[fn.stmt]]
op = "let"
name = "p"
value = "lit demo::Pair<u32, u8>"
line = 21

[[fn.stmt]]
op = "block"
line = 22
body = [
  { op = "let", name = "r", value = "&p", line = 23 },
  { op = "let", name = "l", value = "&LIMIT", line = 24 },
]

[[fn]]
name = "bad"
line = 30

[[fn.stmt]]
op = "let"
name = "y"
mut = true
value = "lit u32"
line = 31

[[fn.stmt]]
op = "let"
name = "m"
value = "&mut y"
line = 32

[[fn.stmt]]
op = "let"
name = "s"
value = "&y"
line = 33
col = 5
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func manifestCode(t *testing.T, err error) diag.Code {
	t.Helper()
	var me *ManifestError
	if !errors.As(err, &me) {
		t.Fatalf("expected *ManifestError, got %v", err)
	}
	return me.Code
}

func TestLoadAndCheckManifest(t *testing.T) {
	path := writeManifest(t, demoManifest)
	files := source.NewFileSet()
	m, err := Load(path, files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Config.Package.Name != "demo" || len(m.Config.Funcs) != 2 {
		t.Fatalf("config = %+v", m.Config)
	}
	prog, err := m.Program()
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	res, err := driver.Check(context.Background(), prog, driver.CheckOptions{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %+v", items)
	}
	d := items[0]
	if d.Code != diag.SemaIllegalSharedBorrow || d.Primary.Line != 33 || d.Primary.Col != 5 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if files.Format(d.Primary) != path+":33:5" {
		t.Fatalf("formatted = %s", files.Format(d.Primary))
	}
}

const genericManifest = `
[package]
name = "gen"

[[struct]]
name = "Box"
namespace = "demo"
generics = ["T"]
fields = [{ name = "v", type = "T" }]

[[fn]]
name = "keep"
namespace = "demo"
generics = ["T"]
params = [{ name = "x", type = "T" }, { name = "r", type = "&T" }]
returns = "Box<T>"
instances = [["u32"], ["u8"], ["u32"]]
line = 10

[[fn.stmt]]
op = "let"
name = "y"
type = "T"
value = "x"
line = 11

[[fn.stmt]]
op = "let"
name = "b"
value = "lit Box<T>"
line = 12

[[fn]]
name = "get"
namespace = "demo"
owner = "Box"
generics = ["U"]
params = [{ name = "u", type = "U", mut = true }]
instances = [["u16", "u64"]]
line = 20

[[fn.stmt]]
op = "let"
name = "s"
value = "&self"
line = 21

[[fn.stmt]]
op = "let"
name = "w"
value = "&mut u"
line = 22

[[fn]]
name = "broken"
generics = ["T"]
instances = [["u8", "u8"]]
line = 30
`

func TestCheckGenericFunctions(t *testing.T) {
	m, err := Load(writeManifest(t, genericManifest), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	prog, err := m.Program()
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if fn := prog.Funcs[0]; len(fn.Params) != 2 || len(fn.Instances) != 3 || !fn.Return.IsValid() {
		t.Fatalf("lowered keep = %+v", fn)
	}
	res, err := driver.Check(context.Background(), prog, driver.CheckOptions{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaGenericArity || items[0].Primary.Line != 30 {
		t.Fatalf("diagnostics = %+v", items)
	}
	if len(items[0].Notes) != 1 {
		t.Fatalf("arity failure must name the instance: %+v", items[0])
	}
	if res.Checked != 5 || res.Failed != 1 {
		t.Fatalf("checked=%d failed=%d", res.Checked, res.Failed)
	}
	inst := res.Instances
	if len(inst) != 4 {
		t.Fatalf("instances = %+v", inst)
	}
	if inst[0] != inst[2] || inst[0] == inst[1] {
		t.Fatalf("equal arguments must share one instance: %+v", inst)
	}
	if inst[0].FunctionID != "demo::keep" || inst[3].FunctionID != "demo::get" {
		t.Fatalf("function ids = %+v", inst)
	}
}

func TestFindManifest(t *testing.T) {
	path := writeManifest(t, demoManifest)
	sub := filepath.Join(filepath.Dir(path), "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := FindManifest(sub)
	if err != nil || !ok || got != path {
		t.Fatalf("FindManifest = %q %v %v", got, ok, err)
	}
	if got, ok, _ := FindManifest(path); !ok || got != path {
		t.Fatalf("file argument must be returned as is, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		code    diag.Code
	}{
		{"no package", "[[fn]]\nname = \"f\"\n", diag.ProjManifestInvalid},
		{"no name", "[package]\n", diag.ProjManifestInvalid},
		{"syntax", "[package\nname = 1\n", diag.ProjManifestSyntax},
		{"unknown key", "[package]\nname = \"x\"\nversion = \"1\"\n", diag.ProjManifestInvalid},
		{"bad op", "[package]\nname = \"x\"\n[[fn]]\nname = \"f\"\n[[fn.stmt]]\nop = \"jump\"\n", diag.ProjManifestInvalid},
		{"param without type", "[package]\nname = \"x\"\n[[fn]]\nname = \"f\"\nparams = [{ name = \"a\" }]\n", diag.ProjManifestInvalid},
		{"swap without other", "[package]\nname = \"x\"\n[[fn]]\nname = \"f\"\n[[fn.stmt]]\nop = \"swap\"\nname = \"a\"\n", diag.ProjManifestInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tc.content), nil)
			if got := manifestCode(t, err); got != tc.code {
				t.Fatalf("code = %s, want %s (%v)", got, tc.code, err)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil); manifestCode(t, err) != diag.ProjManifestNotFound {
		t.Fatalf("missing file: %v", err)
	}
}

func TestParseType(t *testing.T) {
	b := ast.NewBuilder()
	cases := map[string]string{
		"u32":                     "u32",
		"&mut demo::Pair<u32,u8>": "&mut demo::Pair<u32, u8>",
		"*mutex":                  "*mutex",
		"( u8 , &u16 )":           "(u8, &u16)",
		"()":                      "()",
		"Box<Box<u8>>":            "Box<Box<u8>>",
	}
	for in, want := range cases {
		id, err := ParseType(b, in, source.Span{})
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := b.TypeString(id); got != want {
			t.Fatalf("%q rendered as %q, want %q", in, got, want)
		}
	}
	for _, in := range []string{"", "&", "Pair<>", "Pair<u8", "u8 u8", "1abc", "a::"} {
		if _, err := ParseType(b, in, source.Span{}); err == nil {
			t.Fatalf("%q must fail", in)
		}
	}
}

func TestLowerBadValue(t *testing.T) {
	path := writeManifest(t, "[package]\nname = \"x\"\n[[fn]]\nname = \"f\"\n[[fn.stmt]]\nop = \"let\"\nname = \"a\"\nvalue = \"& 1x\"\nline = 7\n")
	m, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := m.Program(); manifestCode(t, err) != diag.ProjManifestInvalid {
		t.Fatalf("expected invalid value, got %v", err)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got := d.String(); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("digest = %s", got)
	}
	if d.Short() != "ba7816bf" {
		t.Fatalf("short = %s", d.Short())
	}
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
