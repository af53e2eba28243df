package runtime

import (
	"context"
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/object"
)

// RunMethod invokes a synchronous method on a passive instance: it resolves
// the instance's declaration, binds params to args in a fresh frame, runs
// the body, and returns the method's result (Void if it never executed a
// return statement).
func RunMethod(ctx *Context, inst *object.PassiveInstance, method string, args []object.Value) (object.Value, error) {
	decl, ok := ctx.RT.Types.Lookup(inst.Module, inst.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTypeNotFound, inst.Module, inst.Type)
	}

	m, ok := LookupMethod(decl, method)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s.%s", ErrMethodNotFound, inst.Module, inst.Type, method)
	}

	if len(m.Params) != len(args) {
		return nil, fmt.Errorf("%w: %s.%s expects %d argument(s), got %d",
			ErrTypeError, inst.Type, method, len(m.Params), len(args))
	}
	frame := make(map[string]object.Value, len(m.Params))
	for i, p := range m.Params {
		frame[p.Name] = args[i]
	}

	child := ctx.Child(inst, frame)
	if err := Run(m.Body, child); err != nil {
		return nil, err
	}
	if child.Return != nil {
		return *child.Return, nil
	}
	return object.Void{}, nil
}

// ProceedMessage handles one inbound message against an active instance's
// state (spec §4.5): it resolves the declaration and method the same way
// as RunMethod, but builds its own top-level Context since there is no
// caller activation to descend from — the actor host calls this once per
// dequeued envelope. The returned value is what gets published back to the
// sender's reply topic when the envelope carried a reply_to.
func ProceedMessage(goCtx context.Context, rt *Runtime, inst *object.ActiveInstance, method string, args []object.Value) (object.Value, error) {
	decl, ok := rt.Types.Lookup(inst.Module, inst.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTypeNotFound, inst.Module, inst.Type)
	}

	m, ok := LookupMethod(decl, method)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s.%s", ErrMethodNotFound, inst.Module, inst.Type, method)
	}

	if len(m.Params) != len(args) {
		return nil, fmt.Errorf("%w: %s.%s expects %d argument(s), got %d",
			ErrTypeError, inst.Type, method, len(m.Params), len(args))
	}
	frame := make(map[string]object.Value, len(m.Params))
	for i, p := range m.Params {
		frame[p.Name] = args[i]
	}

	ctx := NewContext(goCtx, rt, inst)
	ctx.Env = frame
	if err := Run(m.Body, ctx); err != nil {
		return nil, err
	}
	if ctx.Return != nil {
		return *ctx.Return, nil
	}
	return object.Void{}, nil
}
