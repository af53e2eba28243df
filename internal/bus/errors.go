package bus

import "errors"

// ErrPeerDisconnected names a dropped peer socket. Nothing in the bus
// returns or records it: a dropped peer is recorded in internal/diagnostics
// as a "disconnected" handshake row, and a wait() blocked on a reply from
// that peer is left blocked forever at the language level (spec.md §9(c)).
var ErrPeerDisconnected = errors.New("bus: peer disconnected")

// ErrUnknownPeer is returned when forwarding names an environment with no
// configured connection.
var ErrUnknownPeer = errors.New("bus: unknown peer environment")

// ErrBusClosed is returned by Publish once Shutdown has run.
var ErrBusClosed = errors.New("bus: closed")
