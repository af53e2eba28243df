package connector

import (
	"context"
	"testing"
	"time"

	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/stretchr/testify/require"
)

func TestSendAndReceiveMessage(t *testing.T) {
	b := bus.New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	alice := New(b, "east")
	bob := New(b, "east")
	defer alice.Close()
	defer bob.Close()

	require.NoError(t, alice.SendMessage(ctx, bob.ActorID(), "east", "ping",
		[]object.Value{object.Int(7)}, ""))

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	method, args, replyTo, err := bob.ReceiveMessage(rctx)
	require.NoError(t, err)
	require.Equal(t, "ping", method)
	require.Equal(t, []object.Value{object.Int(7)}, args)
	require.Empty(t, replyTo)
}

func TestWaitRoundTrip(t *testing.T) {
	b := bus.New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	caller := New(b, "east")
	callee := New(b, "east")
	defer caller.Close()
	defer callee.Close()

	require.NoError(t, caller.SendMessage(ctx, callee.ActorID(), "east", "balance", nil, caller.ActorID()))

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	_, _, replyTo, err := callee.ReceiveMessage(rctx)
	require.NoError(t, err)
	require.NotEmpty(t, replyTo)

	require.NoError(t, callee.ReturnResult(ctx, replyTo, object.Int(500)))

	wctx, wcancel := context.WithTimeout(ctx, time.Second)
	defer wcancel()
	got, err := caller.ReceiveReturnValue(wctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(500), got)
}

func TestSendMessageClonesPassiveArgs(t *testing.T) {
	b := bus.New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	alice := New(b, "east")
	bob := New(b, "east")
	defer alice.Close()
	defer bob.Close()

	original := object.NewPassiveInstance("geometry", "Point", map[string]object.Value{
		"x": object.Int(1),
	})
	require.NoError(t, alice.SendMessage(ctx, bob.ActorID(), "east", "move",
		[]object.Value{original}, ""))

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	_, args, _, err := bob.ReceiveMessage(rctx)
	require.NoError(t, err)

	received := args[0].(*object.PassiveInstance)
	received.SetField("x", object.Int(99))
	require.Equal(t, object.Int(1), original.Fields["x"], "sender's copy must be unaffected")
}
