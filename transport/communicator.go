// Package transport implements the Communicator abstraction described in
// spec.md §4.6: the typed, per-peer send/receive/exchange/broadcast
// primitives every protocol and correlation generator moves share data
// through, plus the concrete transports that realize it (an in-process
// transport for tests, a multi-process message-passing transport, and a
// direct-socket transport with a no-copy ring buffer).
package transport

import (
	"fmt"

	"github.com/Pro7ech/secmpc/vector"
)

// Communicator is the abstract per-party networking interface. All
// vector operations assert plain views; callers must materialize a
// mapped view before handing it to a Communicator. The 128-bit element
// width is not natively supported by any transport below and is always
// split into two 64-bit elements per logical element before going over
// the wire.
type Communicator interface {
	// SendShare sends a single element to the peer at the given relative
	// rank (signed offset from the local rank, e.g. -1 for "previous",
	// +1 for "next").
	SendShare(v any, relPeer int) error
	// SendShares sends the first n elements of a plain vector to the peer
	// at the given relative rank.
	SendShares(v any, relPeer int, n int) error
	// RecvShare receives a single element from the given relative peer.
	RecvShare(relPeer int, dst any) error
	// RecvShares receives n elements from the given relative peer into a
	// plain vector.
	RecvShares(relPeer int, dst any, n int) error
	// ExchangeShares sends and receives the same size to/from the same
	// relative peer simultaneously.
	ExchangeShares(send any, recv any, relPeer int, n int) error
	// ExchangeSharesAsymmetric sends to one relative peer while receiving
	// from a (possibly different) relative peer, simultaneously.
	ExchangeSharesAsymmetric(send any, recv any, toPeer, fromPeer int, n int) error
	// SendSharesMulti is a batched multi-peer send of possibly distinct
	// vectors to possibly distinct relative peers.
	SendSharesMulti(vecs []any, relPeers []int) error
	// ReceiveBroadcast is a batched multi-peer receive.
	ReceiveBroadcast(relPeers []int, dsts []any) error
	// ExchangeSharesMulti is a batched bidirectional exchange.
	ExchangeSharesMulti(sendVecs []any, recvDsts []any, toPeers, fromPeers []int) error

	// BytesSent returns the cumulative egress byte count this
	// communicator has sent, for reporting.
	BytesSent() uint64

	// Rank returns this party's rank and the total party count.
	Rank() (self, numParties int)
}

// assertPlain panics with a transport error value if v is a non-plain
// vector.Vector, mirroring the precondition every
// transport in this package enforces on its inputs.
func assertPlain[T vector.Element](v vector.Vector[T]) {
	if v.HasMapping() {
		panic(fmt.Errorf("transport: communicator operations require a plain view"))
	}
}
