package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/frisbee-lang/frisbee/internal/actorhost"
	"github.com/frisbee-lang/frisbee/internal/bus"
	"github.com/frisbee-lang/frisbee/internal/config"
	"github.com/frisbee-lang/frisbee/internal/connector"
	"github.com/frisbee-lang/frisbee/internal/diagnostics"
	"github.com/frisbee-lang/frisbee/internal/loader"
	"github.com/frisbee-lang/frisbee/internal/loader/builtin"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <env-name> <module-dir> <main-module>",
	Short: "Start one environment and run its Main active object",
	Long: `run loads the module graph rooted at main-module from module-dir, starts
env-name's actor bus, connects to every peer the topology configures, and
spawns Main. The process runs until it is signaled.`,
	Args: cobra.ExactArgs(3),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	envName, moduleDir, mainModule := args[0], args[1], args[2]

	topo, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}
	env, ok := topo[envName]
	if !ok {
		return fmt.Errorf("no environment named %q in %s", envName, configPath)
	}

	recorder, closeRecorder, err := openRecorder()
	if err != nil {
		return fmt.Errorf("opening diagnostics store: %w", err)
	}
	defer closeRecorder()

	ld := loader.New(moduleDir)
	types, _, err := ld.Load(mainModule)
	if err != nil {
		return fmt.Errorf("loading module %s: %w", mainModule, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.New(envName, recorder)
	go b.Run(ctx)
	defer b.Shutdown()

	ln, err := net.Listen("tcp", env.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", env.Addr(), err)
	}
	defer ln.Close()
	go b.AcceptPeers(ctx, ln)

	peerAddrs, err := topo.PeerAddrs(envName)
	if err != nil {
		return err
	}
	b.ConnectPeers(ctx, peerAddrs)

	host := actorhost.New(b, types, envName, recorder)
	host.RegisterNative("sockets", "TCPServer", builtin.NewTCPServer)
	host.RegisterNative("sockets", "TCPConnection", builtin.NewTCPConnection)
	host.SetBuiltins(map[string]runtime.BuiltinSingleton{
		"io": builtin.NewIO(os.Stdout),
	})

	proxy, err := host.SpawnMain(ctx, mainModule, "Main", nil)
	if err != nil {
		return fmt.Errorf("spawning Main: %w", err)
	}

	bootstrap := connector.New(b, envName)
	defer bootstrap.Close()
	if err := bootstrap.SendMessage(ctx, proxy.ActorID, envName, "run", nil, ""); err != nil {
		return fmt.Errorf("sending initial run message: %w", err)
	}

	<-ctx.Done()
	return nil
}

// openRecorder opens the diagnostics store named by the --diagnostics-db
// flag, or returns diagnostics.NoopRecorder{} when the flag is unset.
func openRecorder() (diagnostics.Recorder, func(), error) {
	if diagnosticsDB == "" {
		return diagnostics.NoopRecorder{}, func() {}, nil
	}

	store, err := diagnostics.NewSqliteStore(&diagnostics.SqliteConfig{
		DatabaseFileName: diagnosticsDB,
	}, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return diagnostics.NewRecorder(store.Store), func() { store.Close() }, nil
}
