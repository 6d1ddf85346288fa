package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/Pro7ech/secmpc/diag"
)

// ringDepth is the fixed depth of every per-peer send ring. Must stay a
// power of two (see newRing).
const ringDepth = 256

// bindRetryDelay and listenWithRetry implement the "one retry after a long
// backoff" policy spec.md's Open Questions settled on for socket setup
// racing another party's bind on the same port.
const bindRetryDelay = 60 * time.Second

// Socket is the direct-socket Communicator of spec.md §4.6: one TCP
// connection per peer, a fixed-depth no-copy ring per outbound
// connection, and a background send thread per connection that drains
// the ring onto the wire. Receives block on the socket until the
// requested byte count has arrived.
type Socket struct {
	self, numParties int
	conns            []net.Conn // conns[peerRank], nil for self
	rings            []*ring    // rings[peerRank]
	bytesSent        atomic.Uint64
}

// DialSocketNetwork establishes a full mesh of TCP connections among
// numParties processes given each party's listen address, retrying its
// own bind exactly once after bindRetryDelay if the port is already in
// use by a peer racing the same setup window.
func DialSocketNetwork(self int, addrs []string) (*Socket, error) {
	return DialSocketNetworkWithRetryDelay(self, addrs, bindRetryDelay)
}

// DialSocketNetworkWithRetryDelay is DialSocketNetwork with the bind-retry
// backoff overridable, so tests don't have to wait the real 60s.
func DialSocketNetworkWithRetryDelay(self int, addrs []string, retryDelay time.Duration) (*Socket, error) {
	numParties := len(addrs)
	s := &Socket{self: self, numParties: numParties, conns: make([]net.Conn, numParties), rings: make([]*ring, numParties)}

	ln, err := listenWithRetry(self, addrs[self], retryDelay)
	if err != nil {
		return nil, fmt.Errorf("transport: listening on %s: %w", addrs[self], err)
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, numParties)
	go func() {
		for i := 0; i < self; i++ {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			acceptCh <- c
		}
	}()

	for p := 0; p < numParties; p++ {
		if p == self {
			continue
		}
		if p < self {
			s.conns[p] = <-acceptCh
		} else {
			var c net.Conn
			var dialErr error
			for attempt := 0; attempt < 2; attempt++ {
				c, dialErr = net.Dial("tcp", addrs[p])
				if dialErr == nil {
					break
				}
				time.Sleep(100 * time.Millisecond)
			}
			if dialErr != nil {
				return nil, fmt.Errorf("transport: dialing peer %d at %s: %w", p, addrs[p], dialErr)
			}
			s.conns[p] = c
		}
		s.rings[p] = newRing(ringDepth)
		go s.sendLoop(p)
	}
	return s, nil
}

func listenWithRetry(self int, addr string, retryDelay time.Duration) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	diag.Warn(self, "socket_bind", "bind failed, retrying after backoff", "addr", addr, "delay", retryDelay, "err", err)
	time.Sleep(retryDelay)
	return net.Listen("tcp", addr)
}

// sendLoop is the background send thread: for as long as the ring is
// non-empty it writes the popped buffer (length-prefixed) to the socket,
// otherwise it waits for the next push.
func (s *Socket) sendLoop(peer int) {
	r := s.rings[peer]
	conn := s.conns[peer]
	idx := int64(0)
	for {
		buf := r.pop(idx)
		idx++
		var lenPrefix [8]byte
		binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(buf)))
		if _, err := conn.Write(lenPrefix[:]); err != nil {
			return
		}
		if _, err := conn.Write(buf); err != nil {
			return
		}
	}
}

func (s *Socket) Rank() (self, numParties int) { return s.self, s.numParties }

func (s *Socket) peerRank(relPeer int) int { return mod(s.self+relPeer, s.numParties) }

func (s *Socket) enqueue(peer int, buf []byte) {
	s.bytesSent.Add(uint64(len(buf)))
	s.rings[peer].push(buf)
}

func (s *Socket) recvExact(peer int, n int) ([]byte, error) {
	var lenPrefix [8]byte
	if _, err := io.ReadFull(s.conns[peer], lenPrefix[:]); err != nil {
		return nil, fmt.Errorf("transport: reading length prefix from peer %d: %w", peer, err)
	}
	want := binary.LittleEndian.Uint64(lenPrefix[:])
	buf := make([]byte, want)
	if _, err := io.ReadFull(s.conns[peer], buf); err != nil {
		return nil, fmt.Errorf("transport: reading %d bytes from peer %d: %w", want, peer, err)
	}
	if n >= 0 && int(want) != n {
		return nil, fmt.Errorf("transport: peer %d sent %d bytes, expected %d", peer, want, n)
	}
	return buf, nil
}

func (s *Socket) SendShare(v any, relPeer int) error {
	s.enqueue(s.peerRank(relPeer), encodeOneAny(v))
	return nil
}

func (s *Socket) SendShares(v any, relPeer int, n int) error {
	s.enqueue(s.peerRank(relPeer), encodeAny(v, n))
	return nil
}

func (s *Socket) RecvShare(relPeer int, dst any) error {
	buf, err := s.recvExact(s.peerRank(relPeer), -1)
	if err != nil {
		return err
	}
	decodeOneAnyInto(dst, buf)
	return nil
}

func (s *Socket) RecvShares(relPeer int, dst any, n int) error {
	w := wireWidthOfAny(dst)
	buf, err := s.recvExact(s.peerRank(relPeer), n*w)
	if err != nil {
		return err
	}
	decodeAny(dst, buf, n)
	return nil
}

func (s *Socket) ExchangeShares(send any, recv any, relPeer int, n int) error {
	return s.ExchangeSharesAsymmetric(send, recv, relPeer, relPeer, n)
}

func (s *Socket) ExchangeSharesAsymmetric(send any, recv any, toPeer, fromPeer int, n int) error {
	s.enqueue(s.peerRank(toPeer), encodeAny(send, n))
	return s.RecvShares(fromPeer, recv, n)
}

func (s *Socket) SendSharesMulti(vecs []any, relPeers []int) error {
	for i, v := range vecs {
		s.enqueue(s.peerRank(relPeers[i]), encodeAny(v, vecSize(v)))
	}
	return nil
}

func (s *Socket) ReceiveBroadcast(relPeers []int, dsts []any) error {
	for i, dst := range dsts {
		if err := s.RecvShares(relPeers[i], dst, vecSize(dst)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Socket) ExchangeSharesMulti(sendVecs []any, recvDsts []any, toPeers, fromPeers []int) error {
	if err := s.SendSharesMulti(sendVecs, toPeers); err != nil {
		return err
	}
	return s.ReceiveBroadcast(fromPeers, recvDsts)
}

func (s *Socket) BytesSent() uint64 { return s.bytesSent.Load() }

func (s *Socket) Close() error {
	var firstErr error
	for _, c := range s.conns {
		if c != nil {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
