// Package bus implements the per-environment message fabric (spec.md
// §4.4): a local publish/subscribe switch plus long-lived TCP links to
// peer environments. Every actor's connector publishes into it and
// subscribes out of it; it is the only thing that ever talks to a peer
// socket.
package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/frisbee-lang/frisbee/internal/diagnostics"
)

// rawMessage is one (topic, payload) pair dequeued by the event loop,
// either from a local publish or from a peer socket.
type rawMessage struct {
	topic   string
	payload []byte
	fromPeer string // empty if published locally
}

// Bus is one environment's message switch. Exactly one exists per process
// (spec.md §4.4).
type Bus struct {
	Name string

	fanIn chan rawMessage

	mu          sync.Mutex
	subscribers map[string]chan []byte
	localActors map[string]struct{}
	mainActor   string
	peers       map[string]*peerLink

	recorder diagnostics.Recorder

	closeOnce sync.Once
	closed    chan struct{}
}

// New creates a bus for environment name, using recorder for audit events
// (diagnostics.NoopRecorder{} if diagnostics are disabled).
func New(name string, recorder diagnostics.Recorder) *Bus {
	if recorder == nil {
		recorder = diagnostics.NoopRecorder{}
	}
	return &Bus{
		Name:        name,
		fanIn:       make(chan rawMessage, 256),
		subscribers: make(map[string]chan []byte),
		localActors: make(map[string]struct{}),
		peers:       make(map[string]*peerLink),
		recorder:    recorder,
		closed:      make(chan struct{}),
	}
}

// Publish enqueues a locally-originated (topic, payload) for classification
// by the event loop. It never blocks on delivery to subscribers.
func (b *Bus) Publish(topic string, payload []byte) error {
	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}
	select {
	case b.fanIn <- rawMessage{topic: topic, payload: payload}:
		return nil
	case <-b.closed:
		return ErrBusClosed
	}
}

// Subscribe registers a channel for topic, returning it plus a cancel func.
// Subsequent Subscribe calls for the same topic replace the prior
// subscriber — exactly one connector ever owns a given actor's topics.
func (b *Bus) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	b.subscribers[topic] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if b.subscribers[topic] == ch {
			delete(b.subscribers, topic)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Run is the bus' single event loop (spec.md §4.4): it dequeues from the
// local fan-in and classifies each topic, forwarding to a peer or
// delivering to a local subscriber channel. It returns when ctx is
// cancelled or Shutdown is called.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.closed:
			return
		case raw := <-b.fanIn:
			b.dispatch(ctx, raw)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, raw rawMessage) {
	topic, ok := ParseTopic(raw.topic)
	if !ok {
		log.WarnS(ctx, "Dropping unparseable topic", nil,
			"environment", b.Name, "topic", raw.topic)
		b.recorder.RecordEnvelopeDropped(ctx, b.Name, raw.topic, "", "unparseable topic")
		return
	}

	switch topic.Kind {
	case KindMain:
		b.mu.Lock()
		b.mainActor = topic.Actor
		b.mu.Unlock()

	case KindCreate:
		b.mu.Lock()
		b.localActors[topic.Actor] = struct{}{}
		b.mu.Unlock()

	case KindMessage, KindReturn:
		b.routeEnvelope(ctx, topic, raw)

	default:
		log.WarnS(ctx, "Dropping unknown topic kind", nil,
			"environment", b.Name, "topic", raw.topic)
	}
}

func (b *Bus) routeEnvelope(ctx context.Context, topic Topic, raw rawMessage) {
	if topic.Env == b.Name {
		b.deliverLocal(ctx, topic, raw.payload)
		return
	}

	if raw.fromPeer != "" {
		// Arrived from a peer but doesn't name this environment: only
		// happens if a peer mis-addressed us. Drop rather than loop it
		// back out over the network.
		log.WarnS(ctx, "Dropping misrouted envelope from peer", nil,
			"environment", b.Name, "peer", raw.fromPeer, "topic", raw.topic)
		b.recorder.RecordEnvelopeDropped(ctx, b.Name, raw.topic, "", "misrouted from peer "+raw.fromPeer)
		return
	}

	if err := b.forward(ctx, topic.Env, raw.topic, raw.payload); err != nil {
		log.WarnS(ctx, "Failed to forward envelope to peer", err,
			"environment", b.Name, "peer", topic.Env, "topic", raw.topic)
		b.recorder.RecordEnvelopeDropped(ctx, b.Name, raw.topic, "", err.Error())
		return
	}
	b.recorder.RecordEnvelopeForwarded(ctx, b.Name, raw.topic, "", topic.Env)
}

func (b *Bus) deliverLocal(ctx context.Context, topic Topic, payload []byte) {
	var localTopic string
	if topic.Kind == KindMessage {
		localTopic = LocalMessagesTopic(topic.Actor)
	} else {
		localTopic = LocalReturnTopic(topic.Actor)
	}

	b.mu.Lock()
	sub, ok := b.subscribers[localTopic]
	b.mu.Unlock()

	if !ok {
		log.WarnS(ctx, "Dropping envelope, no local subscriber", nil,
			"environment", b.Name, "topic", localTopic)
		b.recorder.RecordEnvelopeDropped(ctx, b.Name, localTopic, "", "no local subscriber")
		return
	}

	select {
	case sub <- payload:
		b.recorder.RecordEnvelopePublished(ctx, b.Name, localTopic, "")
	case <-ctx.Done():
	}
}

// MainActor returns the announced root actor id, if any.
func (b *Bus) MainActor() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mainActor, b.mainActor != ""
}

// LocalActors returns a snapshot of actor ids hosted in this environment.
func (b *Bus) LocalActors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.localActors))
	for id := range b.localActors {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops the event loop and closes every peer link.
func (b *Bus) Shutdown() {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.mu.Lock()
		peers := make([]*peerLink, 0, len(b.peers))
		for _, p := range b.peers {
			peers = append(peers, p)
		}
		b.mu.Unlock()
		for _, p := range peers {
			p.close()
		}
	})
}

func (b *Bus) peerLinkFor(env string) (*peerLink, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.peers[env]
	return p, ok
}

func (b *Bus) setPeerLink(env string, p *peerLink) {
	b.mu.Lock()
	b.peers[env] = p
	b.mu.Unlock()
}

func (b *Bus) ingestFromPeer(ctx context.Context, peerEnv, topic string, payload []byte) {
	select {
	case b.fanIn <- rawMessage{topic: topic, payload: payload, fromPeer: peerEnv}:
	case <-b.closed:
	case <-ctx.Done():
	}
}

func (b *Bus) forget(env string) {
	b.mu.Lock()
	delete(b.peers, env)
	b.mu.Unlock()
}

func formatRemoteAddrErr(env string) error {
	return fmt.Errorf("%w: %s", ErrUnknownPeer, env)
}
