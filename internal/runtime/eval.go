package runtime

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
)

// Evaluate computes the value of expr under ctx (spec §4.1's expression
// semantics table). It never mutates ctx.Env except through the evaluation
// of nested Assign-free expressions — assignment only happens in Run.
func Evaluate(expr ast.Expr, ctx *Context) (object.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return object.Int(e.Value), nil

	case *ast.StringLit:
		return object.Str(e.Value), nil

	case *ast.BoolLit:
		return object.Bool(e.Value), nil

	case *ast.VoidLit:
		return object.Void{}, nil

	case *ast.This:
		if ctx.This == nil {
			return nil, fmt.Errorf("%w: this", ErrUnboundName)
		}
		return ctx.This, nil

	case *ast.Ident:
		v, ok := ctx.Env[e.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundName, e.Name)
		}
		return v, nil

	case *ast.Not:
		v, err := Evaluate(e.Operand, ctx)
		if err != nil {
			return nil, err
		}
		b, ok := v.(object.Bool)
		if !ok {
			return nil, fmt.Errorf("%w: not expects bool", ErrTypeError)
		}
		return !b, nil

	case *ast.BinOp:
		return evalBinOp(e, ctx)

	case *ast.Index:
		return evalIndex(e, ctx)

	case *ast.FieldAccess:
		return evalFieldAccess(e, ctx)

	case *ast.MethodCall:
		return evalMethodCall(e, ctx)

	case *ast.New:
		args, err := evalArgs(e.Args, ctx)
		if err != nil {
			return nil, err
		}
		inst, err := CreatePassive(ctx.RT.Types, e.Module, e.Type, args)
		if err != nil {
			return nil, err
		}
		return inst, nil

	case *ast.Spawn:
		args, err := evalArgs(e.Args, ctx)
		if err != nil {
			return nil, err
		}
		if ctx.RT.Spawner == nil {
			return nil, fmt.Errorf("%w: no spawner configured for this actor", ErrTypeError)
		}
		proxy, err := ctx.RT.Spawner.Spawn(ctx.GoCtx, e.Module, e.Type, args)
		if err != nil {
			return nil, err
		}
		return proxy, nil

	default:
		return nil, fmt.Errorf("%w: unhandled expression %T", ErrTypeError, expr)
	}
}

func evalArgs(exprs []ast.Expr, ctx *Context) ([]object.Value, error) {
	args := make([]object.Value, len(exprs))
	for i, a := range exprs {
		v, err := Evaluate(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func evalBinOp(e *ast.BinOp, ctx *Context) (object.Value, error) {
	left, err := Evaluate(e.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(e.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "and", "or":
		lb, lok := left.(object.Bool)
		rb, rok := right.(object.Bool)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: %q expects bool operands", ErrTypeError, e.Op)
		}
		if e.Op == "and" {
			return lb && rb, nil
		}
		return lb || rb, nil

	case "==", "!=":
		eq := valuesEqual(left, right)
		if e.Op == "!=" {
			eq = !eq
		}
		return object.Bool(eq), nil

	case "+":
		if ls, ok := left.(object.Str); ok {
			rs, ok := right.(object.Str)
			if !ok {
				return nil, fmt.Errorf("%w: string + expects a string operand", ErrTypeError)
			}
			return ls + rs, nil
		}
		li, ri, err := intOperands(left, right, e.Op)
		if err != nil {
			return nil, err
		}
		return li + ri, nil

	case "-", "*", "/":
		li, ri, err := intOperands(left, right, e.Op)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		default:
			if ri == 0 {
				return nil, fmt.Errorf("%w: division by zero", ErrTypeError)
			}
			return li / ri, nil
		}

	case "<", ">":
		li, ri, err := intOperands(left, right, e.Op)
		if err != nil {
			return nil, err
		}
		if e.Op == "<" {
			return object.Bool(li < ri), nil
		}
		return object.Bool(li > ri), nil

	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrTypeError, e.Op)
	}
}

func intOperands(left, right object.Value, op string) (object.Int, object.Int, error) {
	li, lok := left.(object.Int)
	ri, rok := right.(object.Int)
	if !lok || !rok {
		return 0, 0, fmt.Errorf("%w: %q expects integer operands", ErrTypeError, op)
	}
	return li, ri, nil
}

// valuesEqual implements == across primitive kinds. Arrays compare
// element-wise; instances and proxies compare by identity, since frisbee
// has no per-field record equality operator.
func valuesEqual(a, b object.Value) bool {
	switch x := a.(type) {
	case object.Int:
		y, ok := b.(object.Int)
		return ok && x == y
	case object.Str:
		y, ok := b.(object.Str)
		return ok && x == y
	case object.Bool:
		y, ok := b.(object.Bool)
		return ok && x == y
	case object.Void:
		_, ok := b.(object.Void)
		return ok
	case *object.Array:
		y, ok := b.(*object.Array)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !valuesEqual(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *object.PassiveInstance:
		y, ok := b.(*object.PassiveInstance)
		return ok && x == y
	case *object.ActiveInstance:
		y, ok := b.(*object.ActiveInstance)
		return ok && x == y
	case *object.ActiveProxy:
		y, ok := b.(*object.ActiveProxy)
		return ok && x.ActorID == y.ActorID && x.HomeEnv == y.HomeEnv
	default:
		return false
	}
}

func evalIndex(e *ast.Index, ctx *Context) (object.Value, error) {
	av, err := Evaluate(e.Array, ctx)
	if err != nil {
		return nil, err
	}
	arr, ok := av.(*object.Array)
	if !ok {
		return nil, fmt.Errorf("%w: index target is not an array", ErrTypeError)
	}

	iv, err := Evaluate(e.Idx, ctx)
	if err != nil {
		return nil, err
	}
	i, ok := iv.(object.Int)
	if !ok {
		return nil, fmt.Errorf("%w: array index must be an integer", ErrTypeError)
	}
	if int(i) < 0 || int(i) >= len(arr.Elems) {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrBoundsError, i, len(arr.Elems))
	}
	return arr.Elems[i], nil
}

func evalFieldAccess(e *ast.FieldAccess, ctx *Context) (object.Value, error) {
	rv, err := Evaluate(e.Receiver, ctx)
	if err != nil {
		return nil, err
	}

	switch r := rv.(type) {
	case *object.PassiveInstance:
		v, ok := r.GetField(e.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrNoField, r.Type, e.Field)
		}
		return v, nil

	case *object.ActiveInstance:
		v, ok := r.GetField(e.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrNoField, r.Type, e.Field)
		}
		return v, nil

	case *object.ActiveProxy:
		return nil, fmt.Errorf("%w: field access on an active object", ErrNotPassive)

	default:
		return nil, fmt.Errorf("%w: %s has no fields", ErrTypeError, rv.String())
	}
}

func evalMethodCall(e *ast.MethodCall, ctx *Context) (object.Value, error) {
	// A bare identifier naming a built-in module singleton (e.g. `io`) is
	// never bound in the frame; it resolves against the runtime's built-in
	// table instead of being evaluated as a normal expression.
	if id, ok := e.Receiver.(*ast.Ident); ok {
		if _, bound := ctx.Env[id.Name]; !bound {
			if singleton, found := ctx.RT.Builtins[id.Name]; found {
				args, err := evalArgs(e.Args, ctx)
				if err != nil {
					return nil, err
				}
				return singleton.Call(ctx, e.Method, args)
			}
		}
	}

	rv, err := Evaluate(e.Receiver, ctx)
	if err != nil {
		return nil, err
	}

	if arr, ok := rv.(*object.Array); ok {
		return evalArrayMethod(arr, e.Method, e.Args, ctx)
	}

	inst, ok := rv.(*object.PassiveInstance)
	if !ok {
		if _, isActive := rv.(*object.ActiveProxy); isActive {
			return nil, fmt.Errorf("%w: use send/wait on an active object", ErrNotPassive)
		}
		return nil, fmt.Errorf("%w: method call target is not a passive instance", ErrTypeError)
	}

	args, err := evalArgs(e.Args, ctx)
	if err != nil {
		return nil, err
	}
	return RunMethod(ctx, inst, e.Method, args)
}

// evalArrayMethod handles the array built-in's sole method, length(), the
// only array operation the language exposes through call syntax rather than
// indexing (spec.md §4.4).
func evalArrayMethod(arr *object.Array, method string, argExprs []ast.Expr, ctx *Context) (object.Value, error) {
	if method != "length" {
		return nil, fmt.Errorf("%w: array.%s", ErrMethodNotFound, method)
	}
	args, err := evalArgs(argExprs, ctx)
	if err != nil {
		return nil, err
	}
	if len(args) != 0 {
		return nil, fmt.Errorf("%w: array.length expects 0 arguments, got %d", ErrTypeError, len(args))
	}
	return object.Int(len(arr.Elems)), nil
}
