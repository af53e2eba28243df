package actor

import "github.com/btcsuite/btclog"

// Subsystem is the tag this package's logger registers under in the daemon's
// combined handler set.
const Subsystem = "ACTR"

// log is the package-wide logger, disabled by default until UseLogger wires
// in a real sink. Nothing in this package currently logs through it; it keeps the
// lnd/btcsuite convention of one package-level logger configured once by the
// daemon's main package.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the actor runtime.
func UseLogger(logger btclog.Logger) {
	log = logger
}
