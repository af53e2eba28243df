package bus

import "github.com/btcsuite/btclog"

const Subsystem = "BUS"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the environment bus.
func UseLogger(logger btclog.Logger) {
	log = logger
}
