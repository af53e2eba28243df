package connector

import "github.com/btcsuite/btclog"

const Subsystem = "CONN"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the connector.
func UseLogger(logger btclog.Logger) {
	log = logger
}
