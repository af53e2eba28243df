package diagnostics

import "github.com/btcsuite/btclog"

// Subsystem is the tag this package's logger registers under in the
// daemon's combined handler set.
const Subsystem = "DIAG"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the diagnostics store.
func UseLogger(logger btclog.Logger) {
	log = logger
}
