package transport

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Pro7ech/secmpc/vector"
)

// MessagePassing is the multi-process transport of spec.md §4.6: every
// send becomes an asynchronous message tagged by a monotonically
// increasing sequence number, an exchange issues both directions in
// parallel and waits on both, and a large message is split across
// Parallelism sub-messages with distinct tags so that several goroutines
// (standing in for the "thread-multiple" process runtime) can drive the
// underlying channel concurrently.
type MessagePassing struct {
	self, numParties int
	parallelism      int
	boxes            [][]chan taggedMessage // boxes[from][to]
	nextTag          atomic.Uint64
	bytesSent        atomic.Uint64
}

type taggedMessage struct {
	tag     uint64
	payload []byte
}

// NewMessagePassingNetwork builds numParties MessagePassing communicators
// wired to each other, each splitting messages into up to parallelism
// sub-messages.
func NewMessagePassingNetwork(numParties, parallelism int) []*MessagePassing {
	if parallelism < 1 {
		parallelism = 1
	}
	boxes := make([][]chan taggedMessage, numParties)
	for i := range boxes {
		boxes[i] = make([]chan taggedMessage, numParties)
		for j := range boxes[i] {
			if i != j {
				boxes[i][j] = make(chan taggedMessage, 256)
			}
		}
	}
	out := make([]*MessagePassing, numParties)
	for i := range out {
		out[i] = &MessagePassing{self: i, numParties: numParties, parallelism: parallelism, boxes: boxes}
	}
	return out
}

func (m *MessagePassing) Rank() (self, numParties int) { return m.self, m.numParties }

func (m *MessagePassing) peerRank(relPeer int) int { return mod(m.self+relPeer, m.numParties) }

// splitChunks divides buf into up to m.parallelism roughly equal
// sub-slices, each sent as its own tagged sub-message.
func (m *MessagePassing) splitChunks(buf []byte) [][]byte {
	n := m.parallelism
	if n > len(buf) {
		n = len(buf)
	}
	if n < 1 {
		return [][]byte{buf}
	}
	chunkSize := (len(buf) + n - 1) / n
	var chunks [][]byte
	for start := 0; start < len(buf); start += chunkSize {
		end := start + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		chunks = append(chunks, buf[start:end])
	}
	return chunks
}

// rawSend splits buf into up to m.parallelism tagged sub-messages and
// enqueues them in order, so the receiver can reassemble the original
// byte stream by simple concatenation regardless of how many
// sub-messages it was split into.
func (m *MessagePassing) rawSend(toRank int, buf []byte) error {
	m.bytesSent.Add(uint64(len(buf)))
	baseTag := m.nextTag.Add(1)
	for i, c := range m.splitChunks(buf) {
		m.boxes[m.self][toRank] <- taggedMessage{tag: baseTag*1000 + uint64(i), payload: c}
	}
	return nil
}

func (m *MessagePassing) rawRecv(fromRank int, total int) []byte {
	out := make([]byte, 0, total)
	for len(out) < total {
		msg := <-m.boxes[fromRank][m.self]
		out = append(out, msg.payload...)
	}
	return out
}

func (m *MessagePassing) SendShare(v any, relPeer int) error {
	return m.rawSend(m.peerRank(relPeer), encodeOneAny(v))
}

func (m *MessagePassing) SendShares(v any, relPeer int, n int) error {
	return m.rawSend(m.peerRank(relPeer), encodeAny(v, n))
}

func (m *MessagePassing) RecvShare(relPeer int, dst any) error {
	w := len(encodeOneAny(zeroOf(dst)))
	decodeOneAnyInto(dst, m.rawRecv(m.peerRank(relPeer), w))
	return nil
}

func zeroOf(dst any) any {
	switch dst.(type) {
	case *int8:
		return int8(0)
	case *int16:
		return int16(0)
	case *int32:
		return int32(0)
	case *int64:
		return int64(0)
	case *vector.Int128:
		return vector.Int128{}
	default:
		return nil
	}
}

func (m *MessagePassing) RecvShares(relPeer int, dst any, n int) error {
	w := wireWidthOfAny(dst)
	buf := m.rawRecv(m.peerRank(relPeer), n*w)
	decodeAny(dst, buf, n)
	return nil
}

func (m *MessagePassing) ExchangeShares(send any, recv any, relPeer int, n int) error {
	return m.ExchangeSharesAsymmetric(send, recv, relPeer, relPeer, n)
}

func (m *MessagePassing) ExchangeSharesAsymmetric(send any, recv any, toPeer, fromPeer int, n int) error {
	var wg sync.WaitGroup
	var sendErr, recvErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = m.SendShares(send, toPeer, n)
	}()
	go func() {
		defer wg.Done()
		recvErr = m.RecvShares(fromPeer, recv, n)
	}()
	wg.Wait()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}

func (m *MessagePassing) SendSharesMulti(vecs []any, relPeers []int) error {
	if len(vecs) != len(relPeers) {
		return fmt.Errorf("transport: vecs/relPeers length mismatch")
	}
	var wg sync.WaitGroup
	errs := make([]error, len(vecs))
	for i := range vecs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.rawSend(m.peerRank(relPeers[i]), encodeAny(vecs[i], vecSize(vecs[i])))
		}(i)
	}
	wg.Wait()
	return firstErr(errs)
}

func (m *MessagePassing) ReceiveBroadcast(relPeers []int, dsts []any) error {
	if len(dsts) != len(relPeers) {
		return fmt.Errorf("transport: dsts/relPeers length mismatch")
	}
	var wg sync.WaitGroup
	for i := range dsts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := vecSize(dsts[i])
			w := wireWidthOfAny(dsts[i])
			buf := m.rawRecv(m.peerRank(relPeers[i]), n*w)
			decodeAny(dsts[i], buf, n)
		}(i)
	}
	wg.Wait()
	return nil
}

func (m *MessagePassing) ExchangeSharesMulti(sendVecs []any, recvDsts []any, toPeers, fromPeers []int) error {
	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	go func() {
		defer wg.Done()
		sendErr = m.SendSharesMulti(sendVecs, toPeers)
	}()
	go func() {
		defer wg.Done()
		recvErr = m.ReceiveBroadcast(fromPeers, recvDsts)
	}()
	wg.Wait()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}

func (m *MessagePassing) BytesSent() uint64 { return m.bytesSent.Load() }

// wireWidthOfAny returns the per-element wire byte width of a
// vector.Vector[T] wrapped in an any, across all five element widths.
func wireWidthOfAny(dst any) int {
	switch dst.(type) {
	case vector.Vector[int8]:
		return 1
	case vector.Vector[int16]:
		return 2
	case vector.Vector[int32]:
		return 4
	case vector.Vector[int64]:
		return 8
	case vector.Vector[vector.Int128]:
		return 16
	default:
		panic(fmt.Errorf("transport: unsupported vector type %T", dst))
	}
}
