package runtime

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
)

// Run executes stmts in order under ctx. As soon as a Return statement
// sets ctx.Return, Run stops executing further statements in this list and
// returns immediately — first-return-wins (spec §9(a)). The same check
// applies inside nested If/While bodies, so a return deep in a loop
// unwinds all the way out of the enclosing method.
func Run(stmts []ast.Stmt, ctx *Context) error {
	for _, s := range stmts {
		if err := runStmt(s, ctx); err != nil {
			return err
		}
		if ctx.Return != nil {
			return nil
		}
	}
	return nil
}

func runStmt(s ast.Stmt, ctx *Context) error {
	switch st := s.(type) {
	case *ast.Assign:
		v, err := Evaluate(st.Value, ctx)
		if err != nil {
			return err
		}
		ctx.Env[st.Name] = v
		return nil

	case *ast.FieldAssign:
		return runFieldAssign(st, ctx)

	case *ast.IndexAssign:
		return runIndexAssign(st, ctx)

	case *ast.Return:
		var v object.Value = object.Void{}
		if st.Value != nil {
			rv, err := Evaluate(st.Value, ctx)
			if err != nil {
				return err
			}
			v = rv
		}
		ctx.Return = &v
		return nil

	case *ast.Send:
		return runSend(st, ctx)

	case *ast.Wait:
		return runWait(st, ctx)

	case *ast.ExprStmt:
		_, err := Evaluate(st.X, ctx)
		return err

	case *ast.If:
		cv, err := Evaluate(st.Cond, ctx)
		if err != nil {
			return err
		}
		cond, ok := cv.(object.Bool)
		if !ok {
			return fmt.Errorf("%w: if condition must be bool", ErrTypeError)
		}
		if cond {
			return Run(st.Then, ctx)
		}
		return Run(st.Else, ctx)

	case *ast.While:
		for {
			cv, err := Evaluate(st.Cond, ctx)
			if err != nil {
				return err
			}
			cond, ok := cv.(object.Bool)
			if !ok {
				return fmt.Errorf("%w: while condition must be bool", ErrTypeError)
			}
			if !cond {
				return nil
			}
			if err := Run(st.Body, ctx); err != nil {
				return err
			}
			if ctx.Return != nil {
				return nil
			}
		}

	default:
		return fmt.Errorf("%w: unhandled statement %T", ErrTypeError, s)
	}
}

func runFieldAssign(st *ast.FieldAssign, ctx *Context) error {
	rv, err := Evaluate(st.Receiver, ctx)
	if err != nil {
		return err
	}
	v, err := Evaluate(st.Value, ctx)
	if err != nil {
		return err
	}

	switch r := rv.(type) {
	case *object.PassiveInstance:
		if !r.SetField(st.Field, v) {
			return fmt.Errorf("%w: %s.%s", ErrNoField, r.Type, st.Field)
		}
		return nil
	case *object.ActiveInstance:
		if !r.SetField(st.Field, v) {
			return fmt.Errorf("%w: %s.%s", ErrNoField, r.Type, st.Field)
		}
		return nil
	case *object.ActiveProxy:
		return fmt.Errorf("%w: field assignment on an active object", ErrNotPassive)
	default:
		return fmt.Errorf("%w: %s has no fields", ErrTypeError, rv.String())
	}
}

func runIndexAssign(st *ast.IndexAssign, ctx *Context) error {
	av, err := Evaluate(st.Array, ctx)
	if err != nil {
		return err
	}
	arr, ok := av.(*object.Array)
	if !ok {
		return fmt.Errorf("%w: index-assign target is not an array", ErrTypeError)
	}

	iv, err := Evaluate(st.Idx, ctx)
	if err != nil {
		return err
	}
	i, ok := iv.(object.Int)
	if !ok {
		return fmt.Errorf("%w: array index must be an integer", ErrTypeError)
	}
	if int(i) < 0 || int(i) >= len(arr.Elems) {
		return fmt.Errorf("%w: index %d, length %d", ErrBoundsError, i, len(arr.Elems))
	}

	v, err := Evaluate(st.Value, ctx)
	if err != nil {
		return err
	}
	arr.Elems[i] = v
	return nil
}

// destOf resolves a Send/Wait receiver to the (actorID, homeEnv) pair of
// the active proxy it names.
func destOf(receiver ast.Expr, ctx *Context) (actorID, homeEnv string, err error) {
	rv, err := Evaluate(receiver, ctx)
	if err != nil {
		return "", "", err
	}
	proxy, ok := rv.(*object.ActiveProxy)
	if !ok {
		return "", "", fmt.Errorf("%w: send/wait target must be an active object", ErrTypeError)
	}
	return proxy.ActorID, proxy.HomeEnv, nil
}

func runSend(st *ast.Send, ctx *Context) error {
	actorID, homeEnv, err := destOf(st.Receiver, ctx)
	if err != nil {
		return err
	}
	args, err := evalArgs(st.Args, ctx)
	if err != nil {
		return err
	}
	if ctx.RT.Conn == nil {
		return fmt.Errorf("%w: no connector configured for this actor", ErrTypeError)
	}
	return ctx.RT.Conn.SendMessage(ctx.GoCtx, actorID, homeEnv, st.Method, args, "")
}

func runWait(st *ast.Wait, ctx *Context) error {
	actorID, homeEnv, err := destOf(st.Receiver, ctx)
	if err != nil {
		return err
	}
	args, err := evalArgs(st.Args, ctx)
	if err != nil {
		return err
	}
	if ctx.RT.Conn == nil {
		return fmt.Errorf("%w: no connector configured for this actor", ErrTypeError)
	}

	// replyTo names this actor's own return topic (return:<actor_id>);
	// an actor only ever has one wait outstanding at a time, since a
	// method body runs to completion on its single goroutine before the
	// next message is dequeued.
	replyTo := ctx.RT.Conn.ActorID()
	if err := ctx.RT.Conn.SendMessage(ctx.GoCtx, actorID, homeEnv, st.Method, args, replyTo); err != nil {
		return err
	}

	result, err := ctx.RT.Conn.ReceiveReturnValue(ctx.GoCtx)
	if err != nil {
		return err
	}
	ctx.Env[st.Name] = result
	return nil
}
