package commands

import (
	"fmt"
	"sort"

	"github.com/frisbee-lang/frisbee/internal/config"
	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers <env-name>",
	Short: "Validate a topology file and print one environment's configured peers",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeers,
}

func runPeers(cmd *cobra.Command, args []string) error {
	envName := args[0]

	topo, err := config.Load(configPath)
	if err != nil {
		return err
	}

	env, ok := topo[envName]
	if !ok {
		return fmt.Errorf("no environment named %q in %s", envName, configPath)
	}

	peerAddrs, err := topo.PeerAddrs(envName)
	if err != nil {
		return err
	}

	fmt.Printf("%s listens on %s\n", envName, env.Addr())
	if len(peerAddrs) == 0 {
		fmt.Println("no configured peers")
		return nil
	}

	names := make([]string, 0, len(peerAddrs))
	for name := range peerAddrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s -> %s\n", name, peerAddrs[name])
	}
	return nil
}
