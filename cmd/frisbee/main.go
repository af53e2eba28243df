package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/frisbee-lang/frisbee/cmd/frisbee/commands"
	"github.com/frisbee-lang/frisbee/internal/actorhost"
	"github.com/frisbee-lang/frisbee/internal/build"
	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/connector"
	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/frisbee-lang/frisbee/internal/loader"
	"github.com/frisbee-lang/frisbee/internal/loader/builtin"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/mattn/go-isatty"
)

func main() {
	// Combine handlers into a single btclog.Handler via HandlerSet, the
	// same dual-stream pattern the daemon uses (just console-only here;
	// run's --diagnostics-db flag covers persistent state instead of a
	// rotating log file).
	consoleHandler := btclog.NewDefaultHandler(os.Stderr)
	combinedHandler := build.NewHandlerSet(consoleHandler)

	// An interactive terminal gets debug-level actor/bus chatter; a piped
	// or redirected stderr (the common case once this runs under a
	// supervisor) only gets info and above.
	if isatty.IsTerminal(os.Stderr.Fd()) {
		combinedHandler.SetLevel(btclog.LevelDebug)
	} else {
		combinedHandler.SetLevel(btclog.LevelInfo)
	}

	rootLogger := btclog.NewSLogger(combinedHandler)

	runtime.UseLogger(rootLogger.WithPrefix(runtime.Subsystem))
	bus.UseLogger(rootLogger.WithPrefix(bus.Subsystem))
	connector.UseLogger(rootLogger.WithPrefix(connector.Subsystem))
	actorhost.UseLogger(rootLogger.WithPrefix(actorhost.Subsystem))
	loader.UseLogger(rootLogger.WithPrefix(loader.Subsystem))
	builtin.UseLogger(rootLogger.WithPrefix(builtin.Subsystem))
	diagnostics.UseLogger(rootLogger.WithPrefix(diagnostics.Subsystem))

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
