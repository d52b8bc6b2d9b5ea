package driver

import "ferrum/internal/ast"

// Program is everything one check run needs: the node arena and the
// declarations that refer into it.
type Program struct {
	Name    string
	AST     *ast.Builder
	Structs []ast.StructDecl
	Enums   []ast.EnumDecl
	Globals []ast.Global
	Funcs   []ast.Func
}
