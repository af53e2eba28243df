package runtime

import (
	"context"

	"github.com/frisbee-lang/frisbee/internal/object"
)

// Connector is the subset of an actor's bus client the evaluator needs to
// execute send/wait statements (spec §4.1, §4.3). internal/connector's
// concrete type satisfies this structurally.
type Connector interface {
	// ActorID is this actor's own id, used as the reply_to for Wait.
	ActorID() string

	// SendMessage publishes an envelope addressed to (destActor, destEnv).
	// replyTo is empty for a fire-and-forget Send.
	SendMessage(ctx context.Context, destActor, destEnv, method string,
		args []object.Value, replyTo string) error

	// ReceiveReturnValue blocks for exactly one envelope on this actor's
	// reply topic and returns its value.
	ReceiveReturnValue(ctx context.Context) (object.Value, error)
}

// Spawner creates a new active instance in a fresh host and returns a
// proxy to it (spec §4.5). internal/actorhost's concrete type satisfies
// this structurally.
type Spawner interface {
	Spawn(ctx context.Context, module, typ string, args []object.Value) (*object.ActiveProxy, error)
}

// BuiltinSingleton is a statically compiled module-level object reachable
// by its bare module name (spec.md §6 built-in types, e.g. `io.print(x)`).
// Unlike a declared passive/active type it has no constructor: the module
// name itself evaluates to the singleton.
type BuiltinSingleton interface {
	Call(ctx *Context, method string, args []object.Value) (object.Value, error)
}

// Runtime bundles the state that is constant for the lifetime of one actor
// process: the resolved declaration table, this actor's connector (nil for
// an actor that has none yet, e.g. during a synchronous passive-only test),
// and the spawner used to start new actors. One Runtime is created per
// actor (spec §9 "store one instance per actor process").
type Runtime struct {
	Types    *TypeTable
	Conn     Connector
	Spawner  Spawner
	HomeEnv  string

	// Builtins maps a module name to its singleton, e.g. "io" -> the print
	// built-in (internal/loader/builtin). Nil entries mean no built-in
	// singletons are registered.
	Builtins map[string]BuiltinSingleton
}

// NewRuntime constructs a Runtime for one actor process.
func NewRuntime(types *TypeTable, conn Connector, spawner Spawner, homeEnv string) *Runtime {
	return &Runtime{Types: types, Conn: conn, Spawner: spawner, HomeEnv: homeEnv}
}

// Context is the per-activation execution context threaded through
// evaluate/run (spec §4.1): the currently executing instance, the
// name->value frame, and the in-flight return value, if any.
type Context struct {
	GoCtx context.Context
	RT    *Runtime

	// This is the instance (passive or active) the current method is
	// executing on. Nil only for a Context built without an instance
	// (NewContext with a nil this).
	This object.Value

	// Env is the name->value frame for the current activation.
	Env map[string]object.Value

	// Return holds the value set by a `return` statement. Once non-nil,
	// enclosing statement lists stop executing further statements
	// (spec §9(a), first-return-wins).
	Return *object.Value
}

// NewContext creates a fresh activation context for invoking a method.
func NewContext(goCtx context.Context, rt *Runtime, this object.Value) *Context {
	return &Context{
		GoCtx: goCtx,
		RT:    rt,
		This:  this,
		Env:   make(map[string]object.Value),
	}
}

// Child creates a nested context sharing GoCtx/RT, with the given This and
// Env and its own Return slot, used for evaluating a fresh method activation from within
// the same actor (e.g. a passive method call from another method body).
func (c *Context) Child(this object.Value, env map[string]object.Value) *Context {
	return &Context{
		GoCtx: c.GoCtx,
		RT:    c.RT,
		This:  this,
		Env:   env,
	}
}
