package runtime

import (
	"context"
	"testing"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/stretchr/testify/require"
)

// fakeConnector is a minimal in-memory stand-in for internal/connector,
// used to test Send/Wait statement execution without a real bus.
type fakeConnector struct {
	id   string
	sent []sentMessage
	next object.Value
}

type sentMessage struct {
	dest, env, method string
	args              []object.Value
	replyTo           string
}

func (f *fakeConnector) ActorID() string { return f.id }

func (f *fakeConnector) SendMessage(ctx context.Context, destActor, destEnv, method string, args []object.Value, replyTo string) error {
	f.sent = append(f.sent, sentMessage{dest: destActor, env: destEnv, method: method, args: args, replyTo: replyTo})
	return nil
}

func (f *fakeConnector) ReceiveReturnValue(ctx context.Context) (object.Value, error) {
	return f.next, nil
}

func TestRunFirstReturnWins(t *testing.T) {
	ctx := newTestContext(t, nil)

	body := []ast.Stmt{
		&ast.Return{Value: &ast.IntLit{Value: 1}},
		&ast.Return{Value: &ast.IntLit{Value: 2}},
	}
	require.NoError(t, Run(body, ctx))
	require.NotNil(t, ctx.Return)
	require.Equal(t, object.Int(1), *ctx.Return)
}

func TestRunReturnInsideWhileUnwinds(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["i"] = object.Int(0)

	body := []ast.Stmt{
		&ast.While{
			Cond: &ast.BoolLit{Value: true},
			Body: []ast.Stmt{
				&ast.Return{Value: &ast.IntLit{Value: 9}},
			},
		},
		&ast.Assign{Name: "unreached", Value: &ast.IntLit{Value: 1}},
	}
	require.NoError(t, Run(body, ctx))
	require.Equal(t, object.Int(9), *ctx.Return)
	_, ok := ctx.Env["unreached"]
	require.False(t, ok)
}

func TestRunIfElse(t *testing.T) {
	ctx := newTestContext(t, nil)

	body := []ast.Stmt{
		&ast.If{
			Cond: &ast.BoolLit{Value: false},
			Then: []ast.Stmt{&ast.Assign{Name: "x", Value: &ast.IntLit{Value: 1}}},
			Else: []ast.Stmt{&ast.Assign{Name: "x", Value: &ast.IntLit{Value: 2}}},
		},
	}
	require.NoError(t, Run(body, ctx))
	require.Equal(t, object.Int(2), ctx.Env["x"])
}

func TestRunIndexAssignAndBounds(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["arr"] = &object.Array{Elems: []object.Value{object.Int(1), object.Int(2)}}

	err := runStmt(&ast.IndexAssign{
		Array: &ast.Ident{Name: "arr"},
		Idx:   &ast.IntLit{Value: 0},
		Value: &ast.IntLit{Value: 100},
	}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(100), ctx.Env["arr"].(*object.Array).Elems[0])

	err = runStmt(&ast.IndexAssign{
		Array: &ast.Ident{Name: "arr"},
		Idx:   &ast.IntLit{Value: 9},
		Value: &ast.IntLit{Value: 0},
	}, ctx)
	require.ErrorIs(t, err, ErrBoundsError)
}

func TestRunSendAndWait(t *testing.T) {
	conn := &fakeConnector{id: "caller-1", next: object.Int(77)}
	rt := NewRuntime(NewTypeTable(), conn, nil, "east")
	ctx := NewContext(context.Background(), rt, nil)
	ctx.Env["callee"] = &object.ActiveProxy{ActorID: "callee-1", HomeEnv: "east"}

	err := runStmt(&ast.Send{Receiver: &ast.Ident{Name: "callee"}, Method: "notify", Args: nil}, ctx)
	require.NoError(t, err)
	require.Len(t, conn.sent, 1)
	require.Equal(t, "callee-1", conn.sent[0].dest)
	require.Empty(t, conn.sent[0].replyTo)

	err = runStmt(&ast.Wait{Name: "result", Receiver: &ast.Ident{Name: "callee"}, Method: "balance", Args: nil}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(77), ctx.Env["result"])
	require.Len(t, conn.sent, 2)
	require.Equal(t, "caller-1", conn.sent[1].replyTo)
}

func TestRunWaitWithoutConnectorFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["callee"] = &object.ActiveProxy{ActorID: "callee-1", HomeEnv: "east"}

	err := runStmt(&ast.Wait{Name: "result", Receiver: &ast.Ident{Name: "callee"}, Method: "balance"}, ctx)
	require.Error(t, err)
}
