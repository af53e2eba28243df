// Package connector implements the per-actor client of the environment bus
// (spec.md §4.3). Since this port runs one goroutine per actor inside a
// single process rather than one OS process per actor, a Connector talks
// to its *bus.Bus directly through Go calls instead of the TCP control
// port the original's out-of-process actors would need.
package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/wire"
	"github.com/google/uuid"
)

// Connector is bound to exactly one actor for its entire lifetime. It
// satisfies internal/runtime.Connector structurally.
type Connector struct {
	id      string
	homeEnv string
	b       *bus.Bus

	messages  <-chan []byte
	unsubMsgs func()
	returns   <-chan []byte
	unsubRet  func()
}

// New synthesizes a fresh actor id (spec.md §4.3: "bound at actor start to
// a fresh actor id (UUID)") and subscribes it to its two topics.
func New(b *bus.Bus, homeEnv string) *Connector {
	id := uuid.New().String()
	c := &Connector{id: id, homeEnv: homeEnv, b: b}
	c.messages, c.unsubMsgs = b.Subscribe(bus.LocalMessagesTopic(id))
	c.returns, c.unsubRet = b.Subscribe(bus.LocalReturnTopic(id))

	if err := b.Publish(bus.CreateTopic(id), nil); err != nil {
		log.WarnS(context.Background(), "Failed to announce new actor", err, "actor_id", id)
	}
	return c
}

// ActorID returns this actor's id.
func (c *Connector) ActorID() string { return c.id }

// HomeEnv returns the environment this actor is hosted in.
func (c *Connector) HomeEnv() string { return c.homeEnv }

// Close releases this connector's subscriptions. Actors normally run for
// the life of the program, so this exists mainly for tests.
func (c *Connector) Close() {
	c.unsubMsgs()
	c.unsubRet()
}

// ReceiveMessage blocks until one envelope arrives on this actor's
// messages topic (spec.md §4.3 receive_message).
func (c *Connector) ReceiveMessage(ctx context.Context) (method string, args []object.Value, replyTo string, err error) {
	select {
	case payload := <-c.messages:
		env, decErr := wire.DecodeEnvelope(payload)
		if decErr != nil {
			return "", nil, "", fmt.Errorf("connector: decode message: %w", decErr)
		}
		return env.Method, env.Args, env.ReplyTo, nil
	case <-ctx.Done():
		return "", nil, "", ctx.Err()
	}
}

// ReceiveReturnValue blocks until one envelope arrives on this actor's
// return topic, decoding it as a bare value (spec.md §4.3
// receive_return_value). Per spec.md §5's ordering note, nothing
// validates that this reply correlates to the most recent send.
func (c *Connector) ReceiveReturnValue(ctx context.Context) (object.Value, error) {
	select {
	case payload := <-c.returns:
		v, err := wire.DecodeValue(payload)
		if err != nil {
			return nil, fmt.Errorf("connector: decode return value: %w", err)
		}
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendMessage publishes an envelope addressed to (destActor, destEnv)
// (spec.md §4.3 send_message). Passive-instance arguments are deep-copied
// first, enforcing copy-by-value across the actor boundary even when the
// destination happens to be in this same process.
func (c *Connector) SendMessage(ctx context.Context, destActor, destEnv, method string, args []object.Value, replyTo string) error {
	copied := make([]object.Value, len(args))
	for i, a := range args {
		copied[i] = object.Clone(a)
	}

	// replyTo only ever names this actor; it's paired with this actor's
	// own home environment here so that whoever eventually calls
	// ReturnResult knows which environment's return topic to publish on,
	// without needing a side channel back to this Connector.
	wireReplyTo := replyTo
	if replyTo != "" {
		wireReplyTo = encodeReplyTo(replyTo, c.homeEnv)
	}

	payload, err := wire.EncodeEnvelope(wire.Envelope{Method: method, Args: copied, ReplyTo: wireReplyTo})
	if err != nil {
		return fmt.Errorf("connector: encode message: %w", err)
	}
	return c.b.Publish(bus.MessageTopic(destActor, destEnv), payload)
}

// ReturnResult publishes value back to the actor that sent a wait-bearing
// message (spec.md §4.3 return_result). replyTo is the envelope's ReplyTo
// field exactly as received, i.e. encodeReplyTo's output.
func (c *Connector) ReturnResult(ctx context.Context, replyTo string, value object.Value) error {
	toActor, destEnv, err := decodeReplyTo(replyTo)
	if err != nil {
		return fmt.Errorf("connector: %w", err)
	}

	payload, err := wire.EncodeValue(object.Clone(value))
	if err != nil {
		return fmt.Errorf("connector: encode return value: %w", err)
	}
	return c.b.Publish(bus.ReturnTopic(toActor, destEnv), payload)
}

// encodeReplyTo and decodeReplyTo pack an actor id and its home
// environment into the single reply_to string the wire envelope carries.
func encodeReplyTo(actorID, homeEnv string) string {
	return actorID + "@" + homeEnv
}

func decodeReplyTo(replyTo string) (actorID, homeEnv string, err error) {
	i := strings.LastIndexByte(replyTo, '@')
	if i < 0 {
		return "", "", fmt.Errorf("malformed reply_to %q", replyTo)
	}
	return replyTo[:i], replyTo[i+1:], nil
}

// AnnounceMain marks this actor as the program's root actor.
func (c *Connector) AnnounceMain() error {
	return c.b.Publish(bus.MainTopic(c.id), nil)
}
