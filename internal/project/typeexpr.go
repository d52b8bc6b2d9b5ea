package project

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ferrum/internal/ast"
	"ferrum/internal/source"
)

// TypeSyntaxError reports a malformed type string.
type TypeSyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *TypeSyntaxError) Error() string {
	return fmt.Sprintf("bad type %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}

// ParseType reads a type written as in source code into b:
//
//	&T  &mut T  *T  *mut T  (T, U)  ()  ns::Name<T, U>  u32
func ParseType(b *ast.Builder, input string, sp source.Span) (ast.TypeID, error) {
	r := &typeReader{b: b, in: input, span: sp}
	id, err := r.typ()
	if err != nil {
		return ast.NoTypeID, err
	}
	r.skipSpace()
	if r.pos < len(r.in) {
		return ast.NoTypeID, r.fail("unexpected trailing input")
	}
	return id, nil
}

type typeReader struct {
	b    *ast.Builder
	in   string
	pos  int
	span source.Span
}

func (r *typeReader) fail(msg string) error {
	return &TypeSyntaxError{Input: r.in, Offset: r.pos, Msg: msg}
}

func (r *typeReader) skipSpace() {
	for r.pos < len(r.in) && (r.in[r.pos] == ' ' || r.in[r.pos] == '\t') {
		r.pos++
	}
}

func (r *typeReader) eat(tok string) bool {
	r.skipSpace()
	if strings.HasPrefix(r.in[r.pos:], tok) {
		r.pos += len(tok)
		return true
	}
	return false
}

// eatKeyword consumes kw only when it is not the prefix of a longer name.
func (r *typeReader) eatKeyword(kw string) bool {
	r.skipSpace()
	rest := r.in[r.pos:]
	if !strings.HasPrefix(rest, kw) {
		return false
	}
	if next, _ := utf8.DecodeRuneInString(rest[len(kw):]); isIdentRune(next) {
		return false
	}
	r.pos += len(kw)
	return true
}

func (r *typeReader) typ() (ast.TypeID, error) {
	switch {
	case r.eat("&"):
		mut := r.eatKeyword("mut")
		elem, err := r.typ()
		if err != nil {
			return ast.NoTypeID, err
		}
		return r.b.RefType(elem, mut, r.span), nil
	case r.eat("*"):
		mut := r.eatKeyword("mut")
		elem, err := r.typ()
		if err != nil {
			return ast.NoTypeID, err
		}
		return r.b.PtrType(elem, mut, r.span), nil
	case r.eat("("):
		elems, err := r.list(")")
		if err != nil {
			return ast.NoTypeID, err
		}
		return r.b.TupleType(elems, r.span), nil
	}
	path, err := r.path()
	if err != nil {
		return ast.NoTypeID, err
	}
	var args []ast.TypeID
	if r.eat("<") {
		if args, err = r.list(">"); err != nil {
			return ast.NoTypeID, err
		}
		if len(args) == 0 {
			return ast.NoTypeID, r.fail("empty generic argument list")
		}
	}
	return r.b.PathType(path, r.span, args...), nil
}

// list reads comma separated types up to and including closer. A trailing
// comma is allowed.
func (r *typeReader) list(closer string) ([]ast.TypeID, error) {
	var out []ast.TypeID
	for {
		if r.eat(closer) {
			return out, nil
		}
		t, err := r.typ()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if r.eat(",") {
			continue
		}
		if !r.eat(closer) {
			return nil, r.fail("expected , or " + closer)
		}
		return out, nil
	}
}

func (r *typeReader) path() (string, error) {
	var sb strings.Builder
	for {
		id := r.ident()
		if id == "" {
			return "", r.fail("expected a type name")
		}
		sb.WriteString(id)
		if !r.eat("::") {
			return sb.String(), nil
		}
		sb.WriteString("::")
	}
}

func (r *typeReader) ident() string {
	r.skipSpace()
	start := r.pos
	for r.pos < len(r.in) {
		ch, size := utf8.DecodeRuneInString(r.in[r.pos:])
		if !isIdentRune(ch) || (r.pos == start && unicode.IsDigit(ch)) {
			break
		}
		r.pos += size
	}
	return r.in[start:r.pos]
}

func isIdentRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
