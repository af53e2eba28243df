package runtime

import "github.com/btcsuite/btclog"

const Subsystem = "EVAL"

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the evaluator.
func UseLogger(logger btclog.Logger) {
	log = logger
}
