// Package config decodes the YAML environment topology file spec.md §6
// describes: one entry per environment, each naming its bind address and
// the peers it should hold a live link to.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment is one named environment's listen address and peer list.
type Environment struct {
	IP          string   `yaml:"ip"`
	Port        int      `yaml:"port"`
	Connections []string `yaml:"connections"`
}

// Addr returns the environment's bind address in host:port form.
func (e Environment) Addr() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

// Topology maps an environment name to its configuration.
type Topology map[string]Environment

// Load decodes a topology from path and validates it (every connection
// must name a known environment; an environment cannot connect to itself).
func Load(path string) (Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return topo, nil
}

// Validate checks that every environment's connections name another
// environment declared in the same topology.
func (t Topology) Validate() error {
	for name, env := range t {
		for _, peer := range env.Connections {
			if peer == name {
				return fmt.Errorf("config: environment %q connects to itself", name)
			}
			if _, ok := t[peer]; !ok {
				return fmt.Errorf("config: environment %q connects to unknown environment %q", name, peer)
			}
		}
	}
	return nil
}

// PeerAddrs returns peer-name -> address for the named environment's
// configured connections, the shape internal/bus.ConnectPeers expects.
func (t Topology) PeerAddrs(envName string) (map[string]string, error) {
	env, ok := t[envName]
	if !ok {
		return nil, fmt.Errorf("config: unknown environment %q", envName)
	}
	addrs := make(map[string]string, len(env.Connections))
	for _, peer := range env.Connections {
		addrs[peer] = t[peer].Addr()
	}
	return addrs, nil
}
