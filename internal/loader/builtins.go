package loader

import (
	"github.com/frisbee-lang/frisbee/internal/ast"
)

// builtinModules lists every module name satisfied from a statically
// compiled table rather than from a `<name>.frisbee` file (spec.md §4.6
// step 2), and the declarations it contributes to the type table so that
// scope rewrite can resolve `new`/`spawn` references against them.
//
// The declarations' method bodies are empty: a built-in's behavior is
// implemented natively (internal/loader/builtin) and never interpreted by
// internal/runtime's AST walker, so only the shape (kind, fields, method
// names) needs to be here.
var builtinModules = map[string][]*ast.Decl{
	"sockets": {
		{
			Kind:   ast.Active,
			Module: "sockets",
			Type:   "TCPServer",
			Fields: []string{"port"},
			Methods: map[string]*ast.MethodDecl{
				"accept": {Name: "accept"},
			},
		},
		{
			Kind:   ast.Active,
			Module: "sockets",
			Type:   "TCPConnection",
			Fields: nil,
			Methods: map[string]*ast.MethodDecl{
				"get":  {Name: "get"},
				"send": {Name: "send", Params: []ast.Param{{Name: "s"}}},
			},
		},
	},
}

// isBuiltinModule reports whether name is satisfied from builtinModules
// rather than from disk.
func isBuiltinModule(name string) bool {
	_, ok := builtinModules[name]
	return ok
}
