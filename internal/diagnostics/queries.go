package diagnostics

import (
	"context"
	"database/sql"
)

// Queries is a hand-written replacement for a sqlc-generated query struct.
// It wraps a *sql.DB or *sql.Tx (anything satisfying dbTx) and exposes one
// method per audit statement the diagnostics store records. Every method
// takes a context and a small params struct, mirroring the generated-code
// shape even though nothing here is generated.
type Queries struct {
	db dbTx
}

// dbTx is the subset of *sql.DB / *sql.Tx that Queries needs. This lets the
// same Queries type run either directly against the pool or bound to a
// transaction.
type dbTx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New returns a Queries bound to db (either the pool or a transaction).
func New(db dbTx) *Queries {
	return &Queries{db: db}
}

// RecordActorSpawnParams bundles the arguments for RecordActorSpawn.
type RecordActorSpawnParams struct {
	Environment string
	ActorID     string
	ClassName   string
	SpawnedAt   int64
}

// RecordActorSpawn inserts an audit row marking that an actor was spawned.
func (q *Queries) RecordActorSpawn(ctx context.Context, arg RecordActorSpawnParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO actor_spawns (environment, actor_id, class_name, spawned_at)
		VALUES (?, ?, ?, ?)
	`, arg.Environment, arg.ActorID, arg.ClassName, arg.SpawnedAt)
	return err
}

// RecordEnvelopeEventParams bundles the arguments for RecordEnvelopeEvent.
type RecordEnvelopeEventParams struct {
	Environment string
	Topic       string
	Method      string
	Direction   string
	Peer        sql.NullString
	Reason      sql.NullString
	RecordedAt  int64
}

// RecordEnvelopeEvent inserts an audit row for a published, forwarded, or
// dropped envelope.
func (q *Queries) RecordEnvelopeEvent(ctx context.Context, arg RecordEnvelopeEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO envelope_events
			(environment, topic, method, direction, peer, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, arg.Environment, arg.Topic, arg.Method, arg.Direction, arg.Peer,
		arg.Reason, arg.RecordedAt)
	return err
}

// RecordPeerHandshakeParams bundles the arguments for RecordPeerHandshake.
type RecordPeerHandshakeParams struct {
	Environment string
	PeerEnv     string
	RemoteAddr  string
	Status      string
	RecordedAt  int64
}

// RecordPeerHandshake inserts an audit row for a peer connection lifecycle
// event (connected, disconnected, or rejected).
func (q *Queries) RecordPeerHandshake(ctx context.Context, arg RecordPeerHandshakeParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO peer_handshakes
			(environment, peer_env, remote_addr, status, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, arg.Environment, arg.PeerEnv, arg.RemoteAddr, arg.Status, arg.RecordedAt)
	return err
}

// ActorSpawnRow is one row returned by ListActorSpawns.
type ActorSpawnRow struct {
	ID          int64
	Environment string
	ActorID     string
	ClassName   string
	SpawnedAt   int64
}

// ListActorSpawns returns the most recent actor spawn events for an
// environment, newest first.
func (q *Queries) ListActorSpawns(ctx context.Context, environment string,
	limit int,
) ([]ActorSpawnRow, error) {

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, environment, actor_id, class_name, spawned_at
		FROM actor_spawns
		WHERE environment = ?
		ORDER BY spawned_at DESC
		LIMIT ?
	`, environment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActorSpawnRow
	for rows.Next() {
		var r ActorSpawnRow
		if err := rows.Scan(&r.ID, &r.Environment, &r.ActorID,
			&r.ClassName, &r.SpawnedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EnvelopeEventRow is one row returned by ListEnvelopeEvents.
type EnvelopeEventRow struct {
	ID          int64
	Environment string
	Topic       string
	Method      string
	Direction   string
	Peer        sql.NullString
	Reason      sql.NullString
	RecordedAt  int64
}

// ListEnvelopeEvents returns the most recent envelope events for an
// environment, newest first. Useful for diagnosing dropped forwards after a
// peer disconnect.
func (q *Queries) ListEnvelopeEvents(ctx context.Context, environment string,
	limit int,
) ([]EnvelopeEventRow, error) {

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, environment, topic, method, direction, peer, reason, recorded_at
		FROM envelope_events
		WHERE environment = ?
		ORDER BY recorded_at DESC
		LIMIT ?
	`, environment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EnvelopeEventRow
	for rows.Next() {
		var r EnvelopeEventRow
		if err := rows.Scan(&r.ID, &r.Environment, &r.Topic, &r.Method,
			&r.Direction, &r.Peer, &r.Reason, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountDroppedEnvelopes returns the number of dropped-envelope events
// recorded for an environment since a given unix timestamp.
func (q *Queries) CountDroppedEnvelopes(ctx context.Context, environment string,
	sinceUnix int64,
) (int64, error) {

	row := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM envelope_events
		WHERE environment = ? AND direction = 'dropped' AND recorded_at >= ?
	`, environment, sinceUnix)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
