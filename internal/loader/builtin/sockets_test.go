package builtin

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/frisbee-lang/frisbee/internal/actorhost"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/stretchr/testify/require"
)

// capturingSpawner records the args a TCPServer.accept handed to Spawn so
// the test can build the resulting TCPConnection directly, without a real
// actorhost.Host.
type capturingSpawner struct {
	lastArgs []object.Value
}

func (s *capturingSpawner) Spawn(_ context.Context, module, typ string, args []object.Value) (*object.ActiveProxy, error) {
	s.lastArgs = args
	return &object.ActiveProxy{ActorID: "conn-1", HomeEnv: "east"}, nil
}

func TestTCPServerAcceptSpawnsConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &TCPServer{ln: ln}
	spawner := &capturingSpawner{}

	accepted := make(chan struct{})
	go func() {
		defer close(accepted)
		proxy, err := srv.Handle(context.Background(), spawner, "accept", nil)
		require.NoError(t, err)
		require.Equal(t, "conn-1", proxy.(*object.ActiveProxy).ActorID)
	}()

	clientConn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer clientConn.Close()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not complete")
	}

	require.Len(t, spawner.lastArgs, 1)
	_, ok := spawner.lastArgs[0].(tcpConnArg)
	require.True(t, ok)

	native, err := NewTCPConnection(spawner.lastArgs)
	require.NoError(t, err)
	conn := native.(*TCPConnection)

	require.NoError(t, clientConn.(*net.TCPConn).SetNoDelay(true))
	_, err = clientConn.Write([]byte("hello\n"))
	require.NoError(t, err)

	v, err := conn.Handle(context.Background(), nil, "get", nil)
	require.NoError(t, err)
	require.Equal(t, object.Str("hello"), v)

	_, err = conn.Handle(context.Background(), nil, "send", []object.Value{object.Str("world")})
	require.NoError(t, err)

	reply, err := bufio.NewReader(clientConn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "world\n", reply)
}

func TestTCPConnectionGetReturnsVoidOnEOF(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	native, err := NewTCPConnection([]object.Value{tcpConnArg{conn: server}})
	require.NoError(t, err)
	conn := native.(*TCPConnection)

	go client.Close()

	v, err := conn.Handle(context.Background(), nil, "get", nil)
	require.NoError(t, err)
	require.Equal(t, object.Void{}, v)
}

func TestNewTCPServerRejectsWrongArity(t *testing.T) {
	_, err := NewTCPServer(nil)
	require.ErrorIs(t, err, runtime.ErrTypeError)
}

func TestNewTCPConnectionRejectsFrisbeeConstruction(t *testing.T) {
	_, err := NewTCPConnection([]object.Value{object.Int(1)})
	require.ErrorIs(t, err, runtime.ErrTypeError)
}

var _ actorhost.NativeFactory = NewTCPServer
var _ actorhost.NativeFactory = NewTCPConnection
