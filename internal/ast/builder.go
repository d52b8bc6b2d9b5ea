package ast

import (
	"strings"

	"ferrum/internal/source"
)

// Builder owns the arenas of one program.
type Builder struct {
	Types *Arena[TypeExpr]
	Exprs *Arena[Expr]
	Stmts *Arena[Stmt]
}

func NewBuilder() *Builder {
	return &Builder{
		Types: NewArena[TypeExpr](64),
		Exprs: NewArena[Expr](64),
		Stmts: NewArena[Stmt](64),
	}
}

func (b *Builder) Type(id TypeID) *TypeExpr { return b.Types.Get(uint32(id)) }
func (b *Builder) Expr(id ExprID) *Expr     { return b.Exprs.Get(uint32(id)) }
func (b *Builder) Stmt(id StmtID) *Stmt     { return b.Stmts.Get(uint32(id)) }

func (b *Builder) PathType(path string, span source.Span, args ...TypeID) TypeID {
	return TypeID(b.Types.Allocate(TypeExpr{Kind: TypePath, Path: path, Args: args, Span: span}))
}

func (b *Builder) RefType(elem TypeID, mut bool, span source.Span) TypeID {
	kind := TypeRef
	if mut {
		kind = TypeMutRef
	}
	return TypeID(b.Types.Allocate(TypeExpr{Kind: kind, Elem: elem, Span: span}))
}

func (b *Builder) PtrType(elem TypeID, mut bool, span source.Span) TypeID {
	kind := TypePtr
	if mut {
		kind = TypeMutPtr
	}
	return TypeID(b.Types.Allocate(TypeExpr{Kind: kind, Elem: elem, Span: span}))
}

func (b *Builder) TupleType(elems []TypeID, span source.Span) TypeID {
	return TypeID(b.Types.Allocate(TypeExpr{Kind: TypeTuple, Elems: elems, Span: span}))
}

func (b *Builder) Lit(ty TypeID, span source.Span) ExprID {
	return ExprID(b.Exprs.Allocate(Expr{Kind: ExprLit, Type: ty, Span: span}))
}

func (b *Builder) Ident(name string, span source.Span) ExprID {
	return ExprID(b.Exprs.Allocate(Expr{Kind: ExprIdent, Name: name, Span: span}))
}

func (b *Builder) Borrow(name string, mut bool, span source.Span) ExprID {
	kind := ExprRef
	if mut {
		kind = ExprMutRef
	}
	return ExprID(b.Exprs.Allocate(Expr{Kind: kind, Name: name, Span: span}))
}

func (b *Builder) Heap(ty TypeID, span source.Span) ExprID {
	return ExprID(b.Exprs.Allocate(Expr{Kind: ExprHeap, Type: ty, Span: span}))
}

func (b *Builder) Let(name string, mutable bool, ty TypeID, value ExprID, span source.Span) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: StmtLet, Name: name, Mutable: mutable, Type: ty, Value: value, Span: span}))
}

func (b *Builder) Assign(name string, value ExprID, span source.Span) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: StmtAssign, Name: name, Value: value, Span: span}))
}

func (b *Builder) Swap(a, other string, span source.Span) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: StmtSwap, Name: a, Other: other, Span: span}))
}

func (b *Builder) Block(body []StmtID, span source.Span) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: StmtBlock, Body: body, Span: span}))
}

// TypeString renders a type annotation back to source form.
func (b *Builder) TypeString(id TypeID) string {
	var sb strings.Builder
	b.writeType(&sb, id)
	return sb.String()
}

func (b *Builder) writeType(sb *strings.Builder, id TypeID) {
	t := b.Type(id)
	if t == nil {
		sb.WriteString("<?>")
		return
	}
	switch t.Kind {
	case TypePath:
		sb.WriteString(t.Path)
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				b.writeType(sb, a)
			}
			sb.WriteByte('>')
		}
	case TypeRef:
		sb.WriteByte('&')
		b.writeType(sb, t.Elem)
	case TypeMutRef:
		sb.WriteString("&mut ")
		b.writeType(sb, t.Elem)
	case TypePtr:
		sb.WriteByte('*')
		b.writeType(sb, t.Elem)
	case TypeMutPtr:
		sb.WriteString("*mut ")
		b.writeType(sb, t.Elem)
	case TypeTuple:
		sb.WriteByte('(')
		for i, e := range t.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			b.writeType(sb, e)
		}
		if len(t.Elems) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	}
}
