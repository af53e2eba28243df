// Package actorhost implements the spawn path and receive loop of
// spec.md §4.5: each active instance gets its own goroutine, a fresh
// connector, and runs
//
//	loop:
//	    (method, args, reply_to) <- connector.receive_message()
//	    result <- instance.proceed_message(method, args)
//	    if reply_to: connector.return_result(reply_to, result)
//
// until the process shuts down. The spawner blocks on a "ready" promise,
// then returns a proxy (actor_id, home_env).
package actorhost

import (
	"context"
	"sync"

	actor "github.com/frisbee-lang/frisbee/internal/actorsys"
	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/connector"
	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// NativeActor is an actor whose message handling is implemented directly in
// Go rather than interpreted from an ast.Decl's method bodies — the host for
// a statically compiled built-in active type (spec.md §6, e.g.
// sockets.TCPServer). It receives the Host itself as a Spawner so that
// handling a message (e.g. TCPServer.accept) can spawn further actors
// (e.g. the resulting TCPConnection).
type NativeActor interface {
	Handle(ctx context.Context, spawner runtime.Spawner, method string, args []object.Value) (object.Value, error)
}

// NativeFactory constructs a NativeActor from a spawn call's arguments.
type NativeFactory func(args []object.Value) (NativeActor, error)

// Host spawns and hosts every active instance in one environment process.
// It satisfies internal/runtime.Spawner structurally.
type Host struct {
	bus      *bus.Bus
	types    *runtime.TypeTable
	homeEnv  string
	recorder diagnostics.Recorder
	natives  map[string]map[string]NativeFactory
	builtins map[string]runtime.BuiltinSingleton

	wg sync.WaitGroup
}

// New creates a Host for one environment. types is shared read-only state
// built once by the loader before any actor starts.
func New(b *bus.Bus, types *runtime.TypeTable, homeEnv string, recorder diagnostics.Recorder) *Host {
	if recorder == nil {
		recorder = diagnostics.NoopRecorder{}
	}
	return &Host{bus: b, types: types, homeEnv: homeEnv, recorder: recorder}
}

// RegisterNative wires a statically compiled active type into this host's
// spawn path, ahead of the ast-declaration lookup (the run command registers
// the internal/loader/builtin factories before spawning Main).
func (h *Host) RegisterNative(module, typ string, factory NativeFactory) {
	if h.natives == nil {
		h.natives = make(map[string]map[string]NativeFactory)
	}
	if h.natives[module] == nil {
		h.natives[module] = make(map[string]NativeFactory)
	}
	h.natives[module][typ] = factory
}

// SetBuiltins wires the module-level singletons (e.g. `io`) every actor's
// Runtime resolves bare module-name method calls against (spec.md §6).
func (h *Host) SetBuiltins(builtins map[string]runtime.BuiltinSingleton) {
	h.builtins = builtins
}

// Spawn implements internal/runtime.Spawner: it allocates the active
// instance's field state, starts its goroutine, blocks on the "ready"
// signal the goroutine sends once its connector has a live actor id, and
// returns a proxy (spec.md §4.5's spawn sequence).
func (h *Host) Spawn(ctx context.Context, module, typ string, args []object.Value) (*object.ActiveProxy, error) {
	if factories, ok := h.natives[module]; ok {
		if factory, ok := factories[typ]; ok {
			native, err := factory(args)
			if err != nil {
				return nil, err
			}
			return h.spawnNative(ctx, module, typ, native)
		}
	}

	inst, err := runtime.PrepareActive(h.types, module, typ, args)
	if err != nil {
		return nil, err
	}

	ready := actor.NewPromise[string]()

	h.wg.Add(1)
	go h.run(ctx, inst, ready)

	res := ready.Future().Await(ctx)
	actorID, err := res.Unpack()
	if err != nil {
		return nil, err
	}

	return &object.ActiveProxy{ActorID: actorID, HomeEnv: h.homeEnv}, nil
}

func (h *Host) spawnNative(ctx context.Context, module, typ string, inst NativeActor) (*object.ActiveProxy, error) {
	ready := actor.NewPromise[string]()

	h.wg.Add(1)
	go h.runNative(ctx, module, typ, inst, ready)

	res := ready.Future().Await(ctx)
	actorID, err := res.Unpack()
	if err != nil {
		return nil, err
	}

	return &object.ActiveProxy{ActorID: actorID, HomeEnv: h.homeEnv}, nil
}

// SpawnMain starts the program's root actor and announces it as main on
// the bus, per spec.md §2's control flow ("starts the environment bus,
// spawns the Main active object, and injects an initial run message").
func (h *Host) SpawnMain(ctx context.Context, module, typ string, args []object.Value) (*object.ActiveProxy, error) {
	proxy, err := h.Spawn(ctx, module, typ, args)
	if err != nil {
		return nil, err
	}
	if err := h.bus.Publish(bus.MainTopic(proxy.ActorID), nil); err != nil {
		return nil, err
	}
	return proxy, nil
}

func (h *Host) run(ctx context.Context, inst *object.ActiveInstance, ready actor.Promise[string]) {
	defer h.wg.Done()

	conn := connector.New(h.bus, h.homeEnv)
	defer conn.Close()

	inst.ActorID = conn.ActorID()
	h.recorder.RecordActorSpawn(ctx, h.homeEnv, inst.ActorID, inst.Module+"."+inst.Type)

	rt := runtime.NewRuntime(h.types, runtimeConnAdapter{conn}, h, h.homeEnv)
	rt.Builtins = h.builtins

	if !ready.Complete(fn.Ok(inst.ActorID)) {
		log.WarnS(ctx, "Spawn ready signal delivered twice", nil, "actor_id", inst.ActorID)
	}

	h.receiveLoop(ctx, conn, func(method string, args []object.Value) (object.Value, error) {
		return runtime.ProceedMessage(ctx, rt, inst, method, args)
	})
}

func (h *Host) runNative(ctx context.Context, module, typ string, inst NativeActor, ready actor.Promise[string]) {
	defer h.wg.Done()

	conn := connector.New(h.bus, h.homeEnv)
	defer conn.Close()

	h.recorder.RecordActorSpawn(ctx, h.homeEnv, conn.ActorID(), module+"."+typ)

	if !ready.Complete(fn.Ok(conn.ActorID())) {
		log.WarnS(ctx, "Spawn ready signal delivered twice", nil, "actor_id", conn.ActorID())
	}

	h.receiveLoop(ctx, conn, func(method string, args []object.Value) (object.Value, error) {
		return inst.Handle(ctx, h, method, args)
	})
}

// receiveLoop runs spec.md §4.5's receive loop (doc comment at the top of
// this file) until proceed fails or the connector's receive is cancelled;
// a failing proceed terminates the actor (spec.md §7).
func (h *Host) receiveLoop(ctx context.Context, conn *connector.Connector,
	proceed func(method string, args []object.Value) (object.Value, error)) {

	for {
		method, args, replyTo, err := conn.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WarnS(ctx, "Actor receive failed, terminating", err, "actor_id", conn.ActorID())
			return
		}

		result, err := proceed(method, args)
		if err != nil {
			log.WarnS(ctx, "Method raised an error, actor terminating", err,
				"actor_id", conn.ActorID(), "method", method)
			return
		}

		if replyTo != "" {
			if err := conn.ReturnResult(ctx, replyTo, result); err != nil {
				log.WarnS(ctx, "Failed to publish return value", err,
					"actor_id", conn.ActorID(), "method", method)
			}
		}
	}
}

// Wait blocks until every actor goroutine this host started has returned.
// Used by tests and graceful shutdown paths; actors otherwise run for the
// life of the program (spec.md §5 lifecycle).
func (h *Host) Wait() {
	h.wg.Wait()
}

// runtimeConnAdapter narrows *connector.Connector to the
// internal/runtime.Connector interface, which only needs ActorID,
// SendMessage and ReceiveReturnValue (receive_message/return_result are driven by the
// host's own loop, not the evaluator).
type runtimeConnAdapter struct {
	c *connector.Connector
}

func (a runtimeConnAdapter) ActorID() string { return a.c.ActorID() }

func (a runtimeConnAdapter) SendMessage(ctx context.Context, destActor, destEnv, method string, args []object.Value, replyTo string) error {
	return a.c.SendMessage(ctx, destActor, destEnv, method, args, replyTo)
}

func (a runtimeConnAdapter) ReceiveReturnValue(ctx context.Context) (object.Value, error) {
	return a.c.ReceiveReturnValue(ctx)
}
