package actorhost

import (
	"context"
	"testing"
	"time"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/connector"
	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/stretchr/testify/require"
)

func counterDecl() *ast.Decl {
	return &ast.Decl{
		Kind:   ast.Active,
		Module: "bank",
		Type:   "Counter",
		Fields: []string{"n"},
		Methods: map[string]*ast.MethodDecl{
			"increment": {
				Name: "increment",
				Body: []ast.Stmt{
					&ast.FieldAssign{
						Receiver: &ast.This{},
						Field:    "n",
						Value: &ast.BinOp{
							Op:    "+",
							Left:  &ast.FieldAccess{Receiver: &ast.This{}, Field: "n"},
							Right: &ast.IntLit{Value: 1},
						},
					},
					&ast.Return{Value: &ast.FieldAccess{Receiver: &ast.This{}, Field: "n"}},
				},
			},
		},
	}
}

func TestSpawnAndProceedMessage(t *testing.T) {
	types := runtime.NewTypeTable()
	require.NoError(t, types.Add(counterDecl()))

	b := bus.New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	host := New(b, types, "east", diagnostics.NoopRecorder{})

	proxy, err := host.Spawn(ctx, "bank", "Counter", []object.Value{object.Int(0)})
	require.NoError(t, err)
	require.Equal(t, "east", proxy.HomeEnv)
	require.NotEmpty(t, proxy.ActorID)

	caller := connector.New(b, "east")
	defer caller.Close()

	require.NoError(t, caller.SendMessage(ctx, proxy.ActorID, proxy.HomeEnv, "increment", nil, caller.ActorID()))

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	got, err := caller.ReceiveReturnValue(rctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(1), got)

	require.NoError(t, caller.SendMessage(ctx, proxy.ActorID, proxy.HomeEnv, "increment", nil, caller.ActorID()))
	rctx2, rcancel2 := context.WithTimeout(ctx, time.Second)
	defer rcancel2()
	got2, err := caller.ReceiveReturnValue(rctx2)
	require.NoError(t, err)
	require.Equal(t, object.Int(2), got2)
}

func TestSpawnWrongArityFails(t *testing.T) {
	types := runtime.NewTypeTable()
	require.NoError(t, types.Add(counterDecl()))

	b := bus.New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	host := New(b, types, "east", diagnostics.NoopRecorder{})
	_, err := host.Spawn(ctx, "bank", "Counter", nil)
	require.Error(t, err)
}
