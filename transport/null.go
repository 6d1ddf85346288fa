package transport

import "fmt"

// Null is the P=1 specialization: every send loops back to a receive
// copying locally, as spec.md §4.6 requires, and every other operation is
// a no-op since there are no peers to talk to.
type Null struct {
	lastSend any
	lastN    int
}

func (n *Null) Rank() (self, numParties int) { return 0, 1 }

func (n *Null) SendShare(v any, relPeer int) error {
	if relPeer != 0 {
		return fmt.Errorf("transport: null communicator has no peers")
	}
	n.lastSend = v
	return nil
}

func (n *Null) SendShares(v any, relPeer int, nElems int) error {
	if relPeer != 0 {
		return fmt.Errorf("transport: null communicator has no peers")
	}
	n.lastSend = v
	n.lastN = nElems
	return nil
}

func (n *Null) RecvShare(relPeer int, dst any) error {
	decodeOneAnyInto(dst, encodeOneAny(n.lastSend))
	return nil
}

func (n *Null) RecvShares(relPeer int, dst any, nElems int) error {
	decodeAny(dst, encodeAny(n.lastSend, nElems), nElems)
	return nil
}

func (n *Null) ExchangeShares(send any, recv any, relPeer int, nElems int) error {
	decodeAny(recv, encodeAny(send, nElems), nElems)
	return nil
}

func (n *Null) ExchangeSharesAsymmetric(send any, recv any, toPeer, fromPeer int, nElems int) error {
	decodeAny(recv, encodeAny(send, nElems), nElems)
	return nil
}

func (n *Null) SendSharesMulti(vecs []any, relPeers []int) error { return nil }

func (n *Null) ReceiveBroadcast(relPeers []int, dsts []any) error { return nil }

func (n *Null) ExchangeSharesMulti(sendVecs []any, recvDsts []any, toPeers, fromPeers []int) error {
	for i := range sendVecs {
		if i < len(recvDsts) {
			decodeAny(recvDsts[i], encodeAny(sendVecs[i], vecSize(sendVecs[i])), vecSize(sendVecs[i]))
		}
	}
	return nil
}

func (n *Null) BytesSent() uint64 { return 0 }
