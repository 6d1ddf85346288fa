package transport

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Local is an in-process Communicator connecting a fixed set of parties
// via buffered Go channels, one per ordered (sender,receiver) pair. It
// exists for tests and single-process simulation of the protocol and
// runtime layers, the way a test harness stands in for the real
// multi-process message-passing and socket transports of spec.md §4.6.
type Local struct {
	self, numParties int
	boxes            [][]chan []byte // boxes[from][to]
	bytesSent        atomic.Uint64
}

// NewLocalNetwork builds numParties Local communicators, one per rank,
// all wired to each other.
func NewLocalNetwork(numParties int) []*Local {
	boxes := make([][]chan []byte, numParties)
	for i := range boxes {
		boxes[i] = make([]chan []byte, numParties)
		for j := range boxes[i] {
			if i != j {
				boxes[i][j] = make(chan []byte, 64)
			}
		}
	}
	out := make([]*Local, numParties)
	for i := range out {
		out[i] = &Local{self: i, numParties: numParties, boxes: boxes}
	}
	return out
}

func (l *Local) Rank() (self, numParties int) { return l.self, l.numParties }

func (l *Local) peerRank(relPeer int) int {
	return mod(l.self+relPeer, l.numParties)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func (l *Local) rawSend(toRank int, buf []byte) error {
	l.bytesSent.Add(uint64(len(buf)))
	l.boxes[l.self][toRank] <- buf
	return nil
}

func (l *Local) rawRecv(fromRank int) []byte {
	return <-l.boxes[fromRank][l.self]
}

func (l *Local) SendShare(v any, relPeer int) error {
	return l.rawSend(l.peerRank(relPeer), encodeOneAny(v))
}

func (l *Local) SendShares(v any, relPeer int, n int) error {
	return l.rawSend(l.peerRank(relPeer), encodeAny(v, n))
}

func (l *Local) RecvShare(relPeer int, dst any) error {
	buf := l.rawRecv(l.peerRank(relPeer))
	decodeOneAnyInto(dst, buf)
	return nil
}

func (l *Local) RecvShares(relPeer int, dst any, n int) error {
	buf := l.rawRecv(l.peerRank(relPeer))
	decodeAny(dst, buf, n)
	return nil
}

func (l *Local) ExchangeShares(send any, recv any, relPeer int, n int) error {
	return l.ExchangeSharesAsymmetric(send, recv, relPeer, relPeer, n)
}

func (l *Local) ExchangeSharesAsymmetric(send any, recv any, toPeer, fromPeer int, n int) error {
	var wg sync.WaitGroup
	var sendErr, recvErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = l.SendShares(send, toPeer, n)
	}()
	go func() {
		defer wg.Done()
		recvErr = l.RecvShares(fromPeer, recv, n)
	}()
	wg.Wait()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}

func (l *Local) SendSharesMulti(vecs []any, relPeers []int) error {
	if len(vecs) != len(relPeers) {
		return fmt.Errorf("transport: vecs/relPeers length mismatch")
	}
	var wg sync.WaitGroup
	errs := make([]error, len(vecs))
	for i := range vecs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.rawSend(l.peerRank(relPeers[i]), encodeAny(vecs[i], vecSize(vecs[i])))
		}(i)
	}
	wg.Wait()
	return firstErr(errs)
}

func (l *Local) ReceiveBroadcast(relPeers []int, dsts []any) error {
	if len(dsts) != len(relPeers) {
		return fmt.Errorf("transport: dsts/relPeers length mismatch")
	}
	var wg sync.WaitGroup
	errs := make([]error, len(dsts))
	for i := range dsts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf := l.rawRecv(l.peerRank(relPeers[i]))
			decodeAny(dsts[i], buf, vecSize(dsts[i]))
		}(i)
	}
	wg.Wait()
	return firstErr(errs)
}

func (l *Local) ExchangeSharesMulti(sendVecs []any, recvDsts []any, toPeers, fromPeers []int) error {
	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	go func() {
		defer wg.Done()
		sendErr = l.SendSharesMulti(sendVecs, toPeers)
	}()
	go func() {
		defer wg.Done()
		recvErr = l.ReceiveBroadcast(fromPeers, recvDsts)
	}()
	wg.Wait()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}

func (l *Local) BytesSent() uint64 { return l.bytesSent.Load() }

func firstErr(errs []error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
