package types

import (
	"fmt"
	"slices"
	"strings"
)

// builtinWidths lists the elementary types every module can name.
var builtinWidths = map[string]int{
	"i8":   1,
	"i16":  2,
	"i32":  4,
	"i64":  8,
	"i128": 16,
	"u8":   1,
	"u16":  2,
	"u32":  4,
	"u64":  8,
	"u128": 16,
	"f32":  4,
	"f64":  8,
	"bool": 1,
	"char": 4,
}

var (
	I8   = mustBuiltin("i8")
	I16  = mustBuiltin("i16")
	I32  = mustBuiltin("i32")
	I64  = mustBuiltin("i64")
	U8   = mustBuiltin("u8")
	U16  = mustBuiltin("u16")
	U32  = mustBuiltin("u32")
	U64  = mustBuiltin("u64")
	F32  = mustBuiltin("f32")
	F64  = mustBuiltin("f64")
	Bool = mustBuiltin("bool")
)

// Builtin returns the elementary type registered under name.
func Builtin(name string) (Type, bool) {
	name = strings.TrimSpace(name)
	w, ok := builtinWidths[name]
	if !ok {
		return Type{}, false
	}
	t, err := NamedElementary(name, w)
	if err != nil {
		return Type{}, false
	}
	return t, true
}

// BuiltinNames returns all builtin names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinWidths))
	for n := range builtinWidths {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func mustBuiltin(name string) Type {
	t, ok := Builtin(name)
	if !ok {
		panic(fmt.Sprintf("types: unknown builtin %q", name))
	}
	return t
}
