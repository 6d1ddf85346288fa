package correlation

import (
	"bytes"
	"fmt"

	"github.com/Pro7ech/secmpc/transport"
	"github.com/Pro7ech/secmpc/vector"
)

// Triple is a 2-party Beaver multiplication/AND triple: this party's
// additive (or XOR, for boolean) share of a, b, and c = a (op) b.
type Triple[T vector.Element] struct {
	A, B, C vector.Vector[T]
}

// BeaverGenerator turns an OLE generator into a stream of Beaver
// triples per spec.md §4.5: request 2n from the OLE, split into
// left/right halves, and fold the OLE's masking share into the
// product of this party's own half-shares.
type BeaverGenerator[T vector.Element] struct {
	ole OLE[T]
}

func NewBeaverGenerator[T vector.Element](ole OLE[T]) *BeaverGenerator[T] {
	return &BeaverGenerator[T]{ole: ole}
}

func (g *BeaverGenerator[T]) Generate(n int) Triple[T] {
	share, local := g.ole.Generate(2 * n)
	shareLeft := share.SimpleSubsetReference(0, 1, n)
	shareRight := share.SimpleSubsetReference(n, 1, 2*n)
	localLeft := local.SimpleSubsetReference(0, 1, n)
	localRight := local.SimpleSubsetReference(n, 1, 2*n)

	var a, b vector.Vector[T]
	if g.ole.Rank() == 0 {
		a, b = localLeft, localRight
	} else {
		a, b = localRight, localLeft
	}

	var ab vector.Vector[T]
	if g.ole.Kind() == Boolean {
		ab = a.And(b)
	} else {
		ab = a.Mul(b)
	}

	var c vector.Vector[T]
	if g.ole.Kind() == Boolean {
		c = ab.Xor(shareLeft).Xor(shareRight)
	} else {
		c = ab.Add(shareLeft).Add(shareRight)
	}

	return Triple[T]{A: a, B: b, C: c}
}

// AssertCorrelated is the optional debug hook of spec.md §4.5: opens
// the triple with the peer over comm and checks c = a (op) b.
func AssertCorrelated[T vector.Element](comm transport.Communicator, relPeer int, kind Kind, t Triple[T]) error {
	n := t.A.Size()
	peerA := vector.New[T](n)
	peerB := vector.New[T](n)
	peerC := vector.New[T](n)
	if err := comm.ExchangeShares(t.A, peerA, relPeer, n); err != nil {
		return fmt.Errorf("correlation: opening a: %w", err)
	}
	if err := comm.ExchangeShares(t.B, peerB, relPeer, n); err != nil {
		return fmt.Errorf("correlation: opening b: %w", err)
	}
	if err := comm.ExchangeShares(t.C, peerC, relPeer, n); err != nil {
		return fmt.Errorf("correlation: opening c: %w", err)
	}

	var a, b, c vector.Vector[T]
	if kind == Boolean {
		a, b, c = t.A.Xor(peerA), t.B.Xor(peerB), t.C.Xor(peerC)
	} else {
		a, b, c = t.A.Add(peerA), t.B.Add(peerB), t.C.Add(peerC)
	}

	var expect vector.Vector[T]
	if kind == Boolean {
		expect = a.And(b)
	} else {
		expect = a.Mul(b)
	}
	for i := 0; i < n; i++ {
		if !bytes.Equal(encodeElement(expect.At(i)), encodeElement(c.At(i))) {
			return fmt.Errorf("correlation: beaver triple correlation broken at index %d", i)
		}
	}
	return nil
}
