package loader

import "github.com/btcsuite/btclog"

// Subsystem is this package's logger tag.
const Subsystem = "LDR"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the loader.
func UseLogger(logger btclog.Logger) {
	log = logger
}
