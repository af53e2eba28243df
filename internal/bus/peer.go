package bus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/frisbee-lang/frisbee/internal/wire"
)

// peerLink is a long-lived duplex TCP stream to one peer environment
// (spec.md §4.4). Writes only ever happen from the bus' dispatch loop, so
// no write-side locking is needed; reads run on a dedicated goroutine that
// feeds decoded frames back into the bus' fan-in queue.
type peerLink struct {
	env    string
	conn   net.Conn
	framer *wire.Framer

	closeOnce sync.Once
}

func (p *peerLink) forward(topic string, payload []byte) error {
	return p.framer.Send(topic, payload)
}

func (p *peerLink) close() {
	p.closeOnce.Do(func() {
		p.conn.Close()
	})
}

// forward sends (topic, payload) to the peer environment named env,
// opening no connection on demand: peers must already be linked via
// ConnectPeers or an inbound handshake (spec.md's "opening on demand"
// is simplified here to "pre-negotiated at startup", since this port's
// peer set is fixed by the topology config for a process' lifetime).
func (b *Bus) forward(ctx context.Context, env, topic string, payload []byte) error {
	link, ok := b.peerLinkFor(env)
	if !ok {
		return formatRemoteAddrErr(env)
	}
	return link.forward(topic, payload)
}

// ConnectPeers dials every configured peer, performs the remote handshake,
// and starts a reader goroutine for each resulting link. It returns once
// every peer has either linked or failed to link (errors are logged, not
// fatal — a peer may come up later via AcceptPeers).
func (b *Bus) ConnectPeers(ctx context.Context, peers map[string]string) {
	var wg sync.WaitGroup
	for env, addr := range peers {
		wg.Add(1)
		go func(env, addr string) {
			defer wg.Done()
			if err := b.dialPeer(ctx, env, addr); err != nil {
				log.WarnS(ctx, "Failed to connect to peer environment", err,
					"environment", b.Name, "peer", env, "addr", addr)
			}
		}(env, addr)
	}
	wg.Wait()
}

func (b *Bus) dialPeer(ctx context.Context, env, addr string) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	if _, err := conn.Write([]byte("remote:" + b.Name)); err != nil {
		conn.Close()
		return fmt.Errorf("send handshake: %w", err)
	}

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		conn.Close()
		return fmt.Errorf("read handshake reply: %w", err)
	}
	peerMainID := strings.TrimSpace(string(buf[:n]))

	b.linkPeer(ctx, env, conn, peerMainID)
	return nil
}

// AcceptPeers serves inbound peer connections on ln until ctx is cancelled.
// Each connection is expected to open with the literal "remote:<env>"
// handshake (spec.md §6); this bus replies with its own main actor id and
// then treats the connection as a duplex envelope stream.
func (b *Bus) AcceptPeers(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.WarnS(ctx, "Peer listener accept failed", err, "environment", b.Name)
				return
			}
		}
		go b.handleInboundPeer(ctx, conn)
	}
}

func (b *Bus) handleInboundPeer(ctx context.Context, conn net.Conn) {
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		log.WarnS(ctx, "Failed to read peer handshake", err, "environment", b.Name)
		conn.Close()
		return
	}

	cmd := string(buf[:n])
	const prefix = "remote:"
	if !strings.HasPrefix(cmd, prefix) {
		log.WarnS(ctx, "Rejecting connection with unknown handshake", nil,
			"environment", b.Name, "command", cmd)
		conn.Close()
		return
	}
	peerEnv := strings.TrimSpace(strings.TrimPrefix(cmd, prefix))

	mainID, _ := b.MainActor()
	if _, err := conn.Write([]byte(mainID)); err != nil {
		log.WarnS(ctx, "Failed to reply to peer handshake", err, "environment", b.Name)
		conn.Close()
		return
	}

	b.linkPeer(ctx, peerEnv, conn, "")
}

func (b *Bus) linkPeer(ctx context.Context, env string, conn net.Conn, peerMainID string) {
	link := &peerLink{env: env, conn: conn, framer: wire.NewFramer(conn)}
	b.setPeerLink(env, link)
	b.recorder.RecordPeerConnected(ctx, b.Name, env, conn.RemoteAddr().String())

	log.InfoS(ctx, "Peer environment linked", "environment", b.Name,
		"peer", env, "peer_main_id", peerMainID)

	go b.readPeer(ctx, link)
}

func (b *Bus) readPeer(ctx context.Context, link *peerLink) {
	defer func() {
		link.close()
		b.forget(link.env)
		b.recorder.RecordPeerDisconnected(ctx, b.Name, link.env, link.conn.RemoteAddr().String())
		log.InfoS(ctx, "Peer environment disconnected", "environment", b.Name, "peer", link.env)
	}()

	r := bufio.NewReader(link.conn)
	for {
		topic, payload, err := wire.ReadFrame(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnS(ctx, "Peer read failed", err, "environment", b.Name, "peer", link.env)
			}
			return
		}
		b.ingestFromPeer(ctx, link.env, topic, payload)
	}
}
