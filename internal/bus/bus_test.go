package bus

import (
	"context"
	"testing"
	"time"

	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	tp, ok := ParseTopic("message:actor-1:east")
	require.True(t, ok)
	require.Equal(t, KindMessage, tp.Kind)
	require.Equal(t, "actor-1", tp.Actor)
	require.Equal(t, "east", tp.Env)

	tp, ok = ParseTopic("main:actor-9")
	require.True(t, ok)
	require.Equal(t, KindMain, tp.Kind)
	require.Equal(t, "actor-9", tp.Actor)

	_, ok = ParseTopic("garbage")
	require.False(t, ok)
}

func TestBusLocalDelivery(t *testing.T) {
	b := New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	sub, unsub := b.Subscribe(LocalMessagesTopic("actor-1"))
	defer unsub()

	require.NoError(t, b.Publish(MessageTopic("actor-1", "east"), []byte("payload")))

	select {
	case got := <-sub:
		require.Equal(t, []byte("payload"), got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for local delivery")
	}
}

func TestBusDropsEnvelopeWithNoSubscriber(t *testing.T) {
	b := New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	require.NoError(t, b.Publish(MessageTopic("ghost", "east"), []byte("x")))
	// No panic, no delivery; give the loop a moment to process.
	time.Sleep(50 * time.Millisecond)
}

func TestBusForwardUnknownPeerErrors(t *testing.T) {
	b := New("east", diagnostics.NoopRecorder{})
	ctx := context.Background()
	err := b.forward(ctx, "west", MessageTopic("actor-1", "west"), []byte("x"))
	require.ErrorIs(t, err, ErrUnknownPeer)
}

func TestBusRecordsAnnouncements(t *testing.T) {
	b := New("east", diagnostics.NoopRecorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	require.NoError(t, b.Publish(MainTopic("actor-root"), nil))
	require.NoError(t, b.Publish(CreateTopic("actor-1"), nil))

	require.Eventually(t, func() bool {
		id, ok := b.MainActor()
		return ok && id == "actor-root"
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		for _, id := range b.LocalActors() {
			if id == "actor-1" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
