package builtin

import "github.com/btcsuite/btclog"

// Subsystem is this package's logger tag.
const Subsystem = "BLTN"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the built-in modules.
func UseLogger(logger btclog.Logger) {
	log = logger
}
