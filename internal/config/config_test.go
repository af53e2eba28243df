package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadValidTopology(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
east:
  ip: 127.0.0.1
  port: 9001
  connections: [west]
west:
  ip: 127.0.0.1
  port: 9002
  connections: [east]
`)

	topo, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9001", topo["east"].Addr())

	addrs, err := topo.PeerAddrs("east")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"west": "127.0.0.1:9002"}, addrs)
}

func TestLoadRejectsSelfConnection(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
east:
  ip: 127.0.0.1
  port: 9001
  connections: [east]
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownPeer(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
east:
  ip: 127.0.0.1
  port: 9001
  connections: [ghost]
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestPeerAddrsUnknownEnvironment(t *testing.T) {
	topo := Topology{"east": Environment{IP: "127.0.0.1", Port: 1}}
	_, err := topo.PeerAddrs("nope")
	require.Error(t, err)
}
