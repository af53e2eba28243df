package diagnostics

import (
	"context"
	"database/sql"
	"time"
)

// Recorder is the interface the bus and actor host depend on to emit audit
// events. It is satisfied by *Store and by NoopRecorder, so diagnostics can
// be wired in or left disabled without branching at every call site.
type Recorder interface {
	RecordActorSpawn(ctx context.Context, environment, actorID, className string)
	RecordEnvelopePublished(ctx context.Context, environment, topic, method string)
	RecordEnvelopeForwarded(ctx context.Context, environment, topic, method, peer string)
	RecordEnvelopeDropped(ctx context.Context, environment, topic, method, reason string)
	RecordPeerConnected(ctx context.Context, environment, peerEnv, remoteAddr string)
	RecordPeerDisconnected(ctx context.Context, environment, peerEnv, remoteAddr string)
}

// NoopRecorder discards every event. It is the default Recorder when no
// diagnostics store is configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordActorSpawn(context.Context, string, string, string)          {}
func (NoopRecorder) RecordEnvelopePublished(context.Context, string, string, string)    {}
func (NoopRecorder) RecordEnvelopeForwarded(context.Context, string, string, string, string) {}
func (NoopRecorder) RecordEnvelopeDropped(context.Context, string, string, string, string)   {}
func (NoopRecorder) RecordPeerConnected(context.Context, string, string, string)        {}
func (NoopRecorder) RecordPeerDisconnected(context.Context, string, string, string)     {}

// storeRecorder adapts *Store to the Recorder interface, logging and
// swallowing write failures since the diagnostics store must never affect
// the runtime's correctness.
type storeRecorder struct {
	store *Store
}

// NewRecorder wraps store as a Recorder. If store is nil, a NoopRecorder is
// returned instead.
func NewRecorder(store *Store) Recorder {
	if store == nil {
		return NoopRecorder{}
	}
	return &storeRecorder{store: store}
}

func (r *storeRecorder) RecordActorSpawn(ctx context.Context, environment,
	actorID, className string,
) {
	err := r.store.Queries().RecordActorSpawn(ctx, RecordActorSpawnParams{
		Environment: environment,
		ActorID:     actorID,
		ClassName:   className,
		SpawnedAt:   time.Now().Unix(),
	})
	if err != nil {
		log.WarnS(ctx, "Failed to record actor spawn", err,
			"environment", environment, "actor_id", actorID)
	}
}

func (r *storeRecorder) RecordEnvelopePublished(ctx context.Context,
	environment, topic, method string,
) {
	r.recordEnvelope(ctx, environment, topic, method, "published",
		sql.NullString{}, sql.NullString{})
}

func (r *storeRecorder) RecordEnvelopeForwarded(ctx context.Context,
	environment, topic, method, peer string,
) {
	r.recordEnvelope(ctx, environment, topic, method, "forwarded",
		sql.NullString{String: peer, Valid: true}, sql.NullString{})
}

func (r *storeRecorder) RecordEnvelopeDropped(ctx context.Context,
	environment, topic, method, reason string,
) {
	r.recordEnvelope(ctx, environment, topic, method, "dropped",
		sql.NullString{}, sql.NullString{String: reason, Valid: true})
}

func (r *storeRecorder) recordEnvelope(ctx context.Context, environment,
	topic, method, direction string, peer, reason sql.NullString,
) {
	err := r.store.Queries().RecordEnvelopeEvent(ctx, RecordEnvelopeEventParams{
		Environment: environment,
		Topic:       topic,
		Method:      method,
		Direction:   direction,
		Peer:        peer,
		Reason:      reason,
		RecordedAt:  time.Now().Unix(),
	})
	if err != nil {
		log.WarnS(ctx, "Failed to record envelope event", err,
			"environment", environment, "topic", topic)
	}
}

func (r *storeRecorder) RecordPeerConnected(ctx context.Context, environment,
	peerEnv, remoteAddr string,
) {
	r.recordHandshake(ctx, environment, peerEnv, remoteAddr, "connected")
}

func (r *storeRecorder) RecordPeerDisconnected(ctx context.Context, environment,
	peerEnv, remoteAddr string,
) {
	r.recordHandshake(ctx, environment, peerEnv, remoteAddr, "disconnected")
}

func (r *storeRecorder) recordHandshake(ctx context.Context, environment,
	peerEnv, remoteAddr, status string,
) {
	err := r.store.Queries().RecordPeerHandshake(ctx, RecordPeerHandshakeParams{
		Environment: environment,
		PeerEnv:     peerEnv,
		RemoteAddr:  remoteAddr,
		Status:      status,
		RecordedAt:  time.Now().Unix(),
	})
	if err != nil {
		log.WarnS(ctx, "Failed to record peer handshake", err,
			"environment", environment, "peer_env", peerEnv)
	}
}
