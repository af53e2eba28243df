package loader

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
)

// rewriteStmts resolves every New/Spawn node's Module field found anywhere
// in stmts against typeToModule, recursing into every nested statement and
// expression field — the Go equivalent of
// original_source/evaluation/loader.py's find_new_and_spawn, which walks a
// dataclass's fields via reflection rather than a fixed type switch.
func rewriteStmts(stmts []ast.Stmt, typeToModule map[string]string) error {
	for _, s := range stmts {
		if err := rewriteStmt(s, typeToModule); err != nil {
			return err
		}
	}
	return nil
}

func rewriteStmt(s ast.Stmt, typeToModule map[string]string) error {
	switch st := s.(type) {
	case *ast.Assign:
		return rewriteExpr(st.Value, typeToModule)
	case *ast.FieldAssign:
		if err := rewriteExpr(st.Receiver, typeToModule); err != nil {
			return err
		}
		return rewriteExpr(st.Value, typeToModule)
	case *ast.IndexAssign:
		if err := rewriteExpr(st.Array, typeToModule); err != nil {
			return err
		}
		if err := rewriteExpr(st.Idx, typeToModule); err != nil {
			return err
		}
		return rewriteExpr(st.Value, typeToModule)
	case *ast.Return:
		if st.Value == nil {
			return nil
		}
		return rewriteExpr(st.Value, typeToModule)
	case *ast.Send:
		if err := rewriteExpr(st.Receiver, typeToModule); err != nil {
			return err
		}
		return rewriteExprs(st.Args, typeToModule)
	case *ast.Wait:
		if err := rewriteExpr(st.Receiver, typeToModule); err != nil {
			return err
		}
		return rewriteExprs(st.Args, typeToModule)
	case *ast.ExprStmt:
		return rewriteExpr(st.X, typeToModule)
	case *ast.If:
		if err := rewriteExpr(st.Cond, typeToModule); err != nil {
			return err
		}
		if err := rewriteStmts(st.Then, typeToModule); err != nil {
			return err
		}
		return rewriteStmts(st.Else, typeToModule)
	case *ast.While:
		if err := rewriteExpr(st.Cond, typeToModule); err != nil {
			return err
		}
		return rewriteStmts(st.Body, typeToModule)
	default:
		return fmt.Errorf("%w: unhandled statement %T in scope rewrite", ErrParse, s)
	}
}

func rewriteExprs(exprs []ast.Expr, typeToModule map[string]string) error {
	for _, e := range exprs {
		if err := rewriteExpr(e, typeToModule); err != nil {
			return err
		}
	}
	return nil
}

func rewriteExpr(e ast.Expr, typeToModule map[string]string) error {
	switch x := e.(type) {
	case *ast.IntLit, *ast.StringLit, *ast.BoolLit, *ast.VoidLit, *ast.This, *ast.Ident:
		return nil
	case *ast.Not:
		return rewriteExpr(x.Operand, typeToModule)
	case *ast.BinOp:
		if err := rewriteExpr(x.Left, typeToModule); err != nil {
			return err
		}
		return rewriteExpr(x.Right, typeToModule)
	case *ast.Index:
		if err := rewriteExpr(x.Array, typeToModule); err != nil {
			return err
		}
		return rewriteExpr(x.Idx, typeToModule)
	case *ast.FieldAccess:
		return rewriteExpr(x.Receiver, typeToModule)
	case *ast.MethodCall:
		if err := rewriteExpr(x.Receiver, typeToModule); err != nil {
			return err
		}
		return rewriteExprs(x.Args, typeToModule)
	case *ast.New:
		mod, ok := typeToModule[x.Type]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTypeNotImported, x.Type)
		}
		x.Module = mod
		return rewriteExprs(x.Args, typeToModule)
	case *ast.Spawn:
		mod, ok := typeToModule[x.Type]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTypeNotImported, x.Type)
		}
		x.Module = mod
		return rewriteExprs(x.Args, typeToModule)
	default:
		return fmt.Errorf("%w: unhandled expression %T in scope rewrite", ErrParse, e)
	}
}
