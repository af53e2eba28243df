// Package builtin implements frisbee's statically compiled built-in
// modules (spec.md §4.6 step 2: "Built-in module names ... are satisfied
// from a statically compiled table rather than from disk"), grounded on
// original_source/evaluation/builtin_types.py.
package builtin

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/frisbee-lang/frisbee/internal/actorhost"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
)

// TCPServer is the native implementation of sockets.TCPServer
// (evaluation/builtin_types.py's TCPServerActiveObject): on_start binds and
// listens on the given port; its only message is accept(), which blocks on
// the listener and spawns a TCPConnection for the resulting socket.
type TCPServer struct {
	ln net.Listener
}

// NewTCPServer constructs the spawn-time factory for sockets.TCPServer,
// registered against internal/actorhost.Host.RegisterNative. It expects
// exactly one integer port argument, matching
// TCPServerDeclaration.spawn's "args has to have length 1" assertion.
func NewTCPServer(args []object.Value) (actorhost.NativeActor, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: sockets.TCPServer expects 1 argument (port), got %d",
			runtime.ErrTypeError, len(args))
	}
	port, ok := args[0].(object.Int)
	if !ok {
		return nil, fmt.Errorf("%w: sockets.TCPServer port must be an integer", runtime.ErrTypeError)
	}

	ln, err := net.Listen("tcp", "localhost:"+strconv.FormatInt(int64(port), 10))
	if err != nil {
		return nil, fmt.Errorf("sockets.TCPServer: %w", err)
	}
	return &TCPServer{ln: ln}, nil
}

// Handle implements actorhost.NativeActor.
func (s *TCPServer) Handle(ctx context.Context, spawner runtime.Spawner, method string, args []object.Value) (object.Value, error) {
	if method != "accept" {
		return nil, fmt.Errorf("%w: sockets.TCPServer.%s", runtime.ErrMethodNotFound, method)
	}

	conn, err := s.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("sockets.TCPServer.accept: %w", err)
	}

	proxy, err := spawner.Spawn(ctx, "sockets", "TCPConnection", []object.Value{tcpConnArg{conn: conn}})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return proxy, nil
}

// tcpConnArg smuggles a live net.Conn through Spawn's object.Value-typed
// argument list: TCPConnection is never constructed from frisbee source
// (only accept() spawns one), so it never crosses the wire and never needs
// to satisfy object.Value's copy-by-value contract the way user-visible
// values do — it only has to type-check as a Value.
type tcpConnArg struct {
	conn net.Conn
}

func (tcpConnArg) valueNode()     {}
func (tcpConnArg) String() string { return "<tcp connection>" }

// TCPConnection is the native implementation of sockets.TCPConnection
// (evaluation/builtin_types.py's TCPConnectionActiveObject): get() reads one
// line and returns it as a string, or void on EOF; send(s) writes s.
type TCPConnection struct {
	conn net.Conn
	r    *bufio.Reader
}

// NewTCPConnection is the spawn-time factory for sockets.TCPConnection. It
// is only ever invoked internally by TCPServer.accept via tcpConnArg, never
// from a frisbee `spawn` expression directly.
func NewTCPConnection(args []object.Value) (actorhost.NativeActor, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: sockets.TCPConnection expects 1 internal argument, got %d",
			runtime.ErrTypeError, len(args))
	}
	arg, ok := args[0].(tcpConnArg)
	if !ok {
		return nil, fmt.Errorf("%w: sockets.TCPConnection is not constructible from frisbee source",
			runtime.ErrTypeError)
	}
	return &TCPConnection{conn: arg.conn, r: bufio.NewReader(arg.conn)}, nil
}

// Handle implements actorhost.NativeActor.
func (c *TCPConnection) Handle(_ context.Context, _ runtime.Spawner, method string, args []object.Value) (object.Value, error) {
	switch method {
	case "get":
		line, err := c.r.ReadString('\n')
		if line == "" && err != nil {
			return object.Void{}, nil
		}
		return object.Str(strings.TrimRight(line, "\r\n")), nil

	case "send":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: sockets.TCPConnection.send expects 1 argument", runtime.ErrTypeError)
		}
		s, ok := args[0].(object.Str)
		if !ok {
			return nil, fmt.Errorf("%w: sockets.TCPConnection.send expects a string", runtime.ErrTypeError)
		}
		if _, err := c.conn.Write([]byte(string(s) + "\n")); err != nil {
			return nil, fmt.Errorf("sockets.TCPConnection.send: %w", err)
		}
		return object.Void{}, nil

	default:
		return nil, fmt.Errorf("%w: sockets.TCPConnection.%s", runtime.ErrMethodNotFound, method)
	}
}
