package actorhost

import "github.com/btcsuite/btclog"

const Subsystem = "HOST"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the actor host.
func UseLogger(logger btclog.Logger) {
	log = logger
}
