// Package loader implements spec.md §4.6: it deserializes a program's
// s-expression form (internal/wire/sexpr) into internal/ast structures,
// recursively resolves imports (built-ins from a static table, everything
// else from `<module>.frisbee` files next to the entry module), and
// rewrites every new/spawn node's unqualified typename to the module that
// declares it.
//
// The s-expression grammar a module file is expected to contain is:
//
//	(module <name>
//	  (import <module> <typename>...)
//	  ...
//	  (decl passive|active <TypeName> (<field>...)
//	    (method <name> (<param>...) <stmt>...)
//	    ...)
//	  ...)
//
// Statements: (assign n e) (field-assign r f e) (index-assign a i e)
// (return [e]) (send r m e...) (wait n r m e...) (expr e) (if c (s...) (s...))
// (while c (s...)).
//
// Expressions: int/string literals, symbols (true/false/void/this resolve
// to their literal, anything else is an Ident), and lists headed by one of
// + - * / and or < > == != (BinOp), not, index, field, call, new, spawn.
package loader

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/wire/sexpr"
)

func parseModule(n sexpr.Node) (*ast.Module, error) {
	items, err := requireForm(n, "module")
	if err != nil {
		return nil, err
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: (module ...) needs a name", ErrParse)
	}
	name, err := requireSymbol(items[1])
	if err != nil {
		return nil, fmt.Errorf("%w: module name: %v", ErrParse, err)
	}

	mod := &ast.Module{Name: name, Imports: map[string][]string{}}
	for _, item := range items[2:] {
		sub, ok := asList(item)
		if !ok || len(sub) == 0 {
			return nil, fmt.Errorf("%w: expected (import ...) or (decl ...)", ErrParse)
		}
		head, err := requireSymbol(sub[0])
		if err != nil {
			return nil, err
		}
		switch head {
		case "import":
			if len(sub) < 2 {
				return nil, fmt.Errorf("%w: (import <module> ...) needs a module name", ErrParse)
			}
			importedModule, err := requireSymbol(sub[1])
			if err != nil {
				return nil, err
			}
			typeNames := make([]string, 0, len(sub)-2)
			for _, t := range sub[2:] {
				tn, err := requireSymbol(t)
				if err != nil {
					return nil, err
				}
				typeNames = append(typeNames, tn)
			}
			mod.Imports[importedModule] = typeNames

		case "decl":
			decl, err := parseDecl(sub)
			if err != nil {
				return nil, err
			}
			mod.Decls = append(mod.Decls, decl)

		default:
			return nil, fmt.Errorf("%w: unknown top-level form %q", ErrParse, head)
		}
	}
	return mod, nil
}

func parseDecl(items []sexpr.Node) (*ast.Decl, error) {
	if len(items) < 4 {
		return nil, fmt.Errorf("%w: (decl kind Type (fields...) ...) is malformed", ErrParse)
	}
	kindSym, err := requireSymbol(items[1])
	if err != nil {
		return nil, err
	}
	var kind ast.Kind
	switch kindSym {
	case "passive":
		kind = ast.Passive
	case "active":
		kind = ast.Active
	default:
		return nil, fmt.Errorf("%w: decl kind must be passive or active, got %q", ErrParse, kindSym)
	}

	typeName, err := requireSymbol(items[2])
	if err != nil {
		return nil, err
	}

	fieldList, ok := asList(items[3])
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a field list", ErrParse, typeName)
	}
	fields := make([]string, 0, len(fieldList))
	for _, f := range fieldList {
		fn, err := requireSymbol(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fn)
	}

	decl := &ast.Decl{
		Kind:    kind,
		Type:    typeName,
		Fields:  fields,
		Methods: map[string]*ast.MethodDecl{},
	}
	for _, m := range items[4:] {
		method, err := parseMethod(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", typeName, err)
		}
		decl.Methods[method.Name] = method
	}
	return decl, nil
}

func parseMethod(n sexpr.Node) (*ast.MethodDecl, error) {
	items, err := requireForm(n, "method")
	if err != nil {
		return nil, err
	}
	if len(items) < 3 {
		return nil, fmt.Errorf("%w: (method name (params...) stmt...) is malformed", ErrParse)
	}
	name, err := requireSymbol(items[1])
	if err != nil {
		return nil, err
	}
	paramList, ok := asList(items[2])
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a parameter list", ErrParse, name)
	}
	params := make([]ast.Param, 0, len(paramList))
	for _, p := range paramList {
		pn, err := requireSymbol(p)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pn})
	}

	body, err := parseStmts(items[3:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &ast.MethodDecl{Name: name, Params: params, Body: body}, nil
}

func parseStmts(nodes []sexpr.Node) ([]ast.Stmt, error) {
	stmts := make([]ast.Stmt, 0, len(nodes))
	for _, n := range nodes {
		s, err := parseStmt(n)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func parseStmt(n sexpr.Node) (ast.Stmt, error) {
	items, ok := asList(n)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: expected a statement form", ErrParse)
	}
	head, err := requireSymbol(items[0])
	if err != nil {
		return nil, err
	}

	switch head {
	case "assign":
		if len(items) != 3 {
			return nil, fmt.Errorf("%w: (assign name expr)", ErrParse)
		}
		name, err := requireSymbol(items[1])
		if err != nil {
			return nil, err
		}
		val, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name, Value: val}, nil

	case "field-assign":
		if len(items) != 4 {
			return nil, fmt.Errorf("%w: (field-assign receiver field expr)", ErrParse)
		}
		recv, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		field, err := requireSymbol(items[2])
		if err != nil {
			return nil, err
		}
		val, err := parseExpr(items[3])
		if err != nil {
			return nil, err
		}
		return &ast.FieldAssign{Receiver: recv, Field: field, Value: val}, nil

	case "index-assign":
		if len(items) != 4 {
			return nil, fmt.Errorf("%w: (index-assign array idx expr)", ErrParse)
		}
		arr, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		idx, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		val, err := parseExpr(items[3])
		if err != nil {
			return nil, err
		}
		return &ast.IndexAssign{Array: arr, Idx: idx, Value: val}, nil

	case "return":
		if len(items) == 1 {
			return &ast.Return{}, nil
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: (return [expr])", ErrParse)
		}
		val, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: val}, nil

	case "send":
		if len(items) < 3 {
			return nil, fmt.Errorf("%w: (send receiver method args...)", ErrParse)
		}
		recv, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		method, err := requireSymbol(items[2])
		if err != nil {
			return nil, err
		}
		args, err := parseExprs(items[3:])
		if err != nil {
			return nil, err
		}
		return &ast.Send{Receiver: recv, Method: method, Args: args}, nil

	case "wait":
		if len(items) < 4 {
			return nil, fmt.Errorf("%w: (wait name receiver method args...)", ErrParse)
		}
		name, err := requireSymbol(items[1])
		if err != nil {
			return nil, err
		}
		recv, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		method, err := requireSymbol(items[3])
		if err != nil {
			return nil, err
		}
		args, err := parseExprs(items[4:])
		if err != nil {
			return nil, err
		}
		return &ast.Wait{Name: name, Receiver: recv, Method: method, Args: args}, nil

	case "expr":
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: (expr e)", ErrParse)
		}
		x, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil

	case "if":
		if len(items) < 3 || len(items) > 4 {
			return nil, fmt.Errorf("%w: (if cond (then...) [(else...)])", ErrParse)
		}
		cond, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		thenList, ok := asList(items[2])
		if !ok {
			return nil, fmt.Errorf("%w: if: expected a then-branch statement list", ErrParse)
		}
		then, err := parseStmts(thenList)
		if err != nil {
			return nil, err
		}
		var elseStmts []ast.Stmt
		if len(items) == 4 {
			elseList, ok := asList(items[3])
			if !ok {
				return nil, fmt.Errorf("%w: if: expected an else-branch statement list", ErrParse)
			}
			elseStmts, err = parseStmts(elseList)
			if err != nil {
				return nil, err
			}
		}
		return &ast.If{Cond: cond, Then: then, Else: elseStmts}, nil

	case "while":
		if len(items) != 3 {
			return nil, fmt.Errorf("%w: (while cond (body...))", ErrParse)
		}
		cond, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		bodyList, ok := asList(items[2])
		if !ok {
			return nil, fmt.Errorf("%w: while: expected a body statement list", ErrParse)
		}
		body, err := parseStmts(bodyList)
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body}, nil

	default:
		return nil, fmt.Errorf("%w: unknown statement form %q", ErrParse, head)
	}
}

var binOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"and": true, "or": true, "<": true, ">": true, "==": true, "!=": true,
}

func parseExprs(nodes []sexpr.Node) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := parseExpr(n)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func parseExpr(n sexpr.Node) (ast.Expr, error) {
	switch n.Kind {
	case sexpr.KindInt:
		return &ast.IntLit{Value: n.Int}, nil

	case sexpr.KindString:
		return &ast.StringLit{Value: n.String}, nil

	case sexpr.KindSymbol:
		switch n.Symbol {
		case "true":
			return &ast.BoolLit{Value: true}, nil
		case "false":
			return &ast.BoolLit{Value: false}, nil
		case "void":
			return &ast.VoidLit{}, nil
		case "this":
			return &ast.This{}, nil
		default:
			return &ast.Ident{Name: n.Symbol}, nil
		}

	case sexpr.KindList:
		items := n.List
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: empty expression form", ErrParse)
		}
		head, err := requireSymbol(items[0])
		if err != nil {
			return nil, err
		}

		switch {
		case binOps[head]:
			if len(items) != 3 {
				return nil, fmt.Errorf("%w: (%s left right)", ErrParse, head)
			}
			left, err := parseExpr(items[1])
			if err != nil {
				return nil, err
			}
			right, err := parseExpr(items[2])
			if err != nil {
				return nil, err
			}
			return &ast.BinOp{Op: head, Left: left, Right: right}, nil

		case head == "not":
			if len(items) != 2 {
				return nil, fmt.Errorf("%w: (not operand)", ErrParse)
			}
			operand, err := parseExpr(items[1])
			if err != nil {
				return nil, err
			}
			return &ast.Not{Operand: operand}, nil

		case head == "index":
			if len(items) != 3 {
				return nil, fmt.Errorf("%w: (index array idx)", ErrParse)
			}
			arr, err := parseExpr(items[1])
			if err != nil {
				return nil, err
			}
			idx, err := parseExpr(items[2])
			if err != nil {
				return nil, err
			}
			return &ast.Index{Array: arr, Idx: idx}, nil

		case head == "field":
			if len(items) != 3 {
				return nil, fmt.Errorf("%w: (field receiver name)", ErrParse)
			}
			recv, err := parseExpr(items[1])
			if err != nil {
				return nil, err
			}
			field, err := requireSymbol(items[2])
			if err != nil {
				return nil, err
			}
			return &ast.FieldAccess{Receiver: recv, Field: field}, nil

		case head == "call":
			if len(items) < 3 {
				return nil, fmt.Errorf("%w: (call receiver method args...)", ErrParse)
			}
			recv, err := parseExpr(items[1])
			if err != nil {
				return nil, err
			}
			method, err := requireSymbol(items[2])
			if err != nil {
				return nil, err
			}
			args, err := parseExprs(items[3:])
			if err != nil {
				return nil, err
			}
			return &ast.MethodCall{Receiver: recv, Method: method, Args: args}, nil

		case head == "new":
			if len(items) < 2 {
				return nil, fmt.Errorf("%w: (new Type args...)", ErrParse)
			}
			typ, err := requireSymbol(items[1])
			if err != nil {
				return nil, err
			}
			args, err := parseExprs(items[2:])
			if err != nil {
				return nil, err
			}
			return &ast.New{Type: typ, Args: args}, nil

		case head == "spawn":
			if len(items) < 2 {
				return nil, fmt.Errorf("%w: (spawn Type args...)", ErrParse)
			}
			typ, err := requireSymbol(items[1])
			if err != nil {
				return nil, err
			}
			args, err := parseExprs(items[2:])
			if err != nil {
				return nil, err
			}
			return &ast.Spawn{Type: typ, Args: args}, nil

		default:
			return nil, fmt.Errorf("%w: unknown expression form %q", ErrParse, head)
		}

	default:
		return nil, fmt.Errorf("%w: unhandled sexpr node kind", ErrParse)
	}
}

func asList(n sexpr.Node) ([]sexpr.Node, bool) {
	if n.Kind != sexpr.KindList {
		return nil, false
	}
	return n.List, true
}

func requireSymbol(n sexpr.Node) (string, error) {
	if n.Kind != sexpr.KindSymbol {
		return "", fmt.Errorf("%w: expected a symbol", ErrParse)
	}
	return n.Symbol, nil
}

// requireForm asserts n is a list whose first element is the symbol head,
// returning the list's items.
func requireForm(n sexpr.Node, head string) ([]sexpr.Node, error) {
	items, ok := asList(n)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: expected (%s ...)", ErrParse, head)
	}
	got, err := requireSymbol(items[0])
	if err != nil {
		return nil, err
	}
	if got != head {
		return nil, fmt.Errorf("%w: expected (%s ...), got (%s ...)", ErrParse, head, got)
	}
	return items, nil
}
