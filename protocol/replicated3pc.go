package protocol

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// Replicated3PC is the 3-party honest-majority variant: R=2, every
// party holds shares for its own rank and rank+1. Multiplication needs
// no Beaver triples — each party locally folds the cross terms between
// its two held shares into a single ring share, rerandomizes it with a
// zero-sharing, and reshares so the replicated layout is restored.
type Replicated3[T vector.Element] struct {
	Base[T]
	everyone party.Group
}

// NewReplicated3PC builds the 3-party protocol object for one party.
func NewReplicated3PC[T vector.Element](b Base[T]) *Replicated3[T] {
	if b.ID.NumParties != 3 {
		panic(fmt.Errorf("protocol: replicated3pc requires 3 parties, got %d", b.ID.NumParties))
	}
	return &Replicated3[T]{Base: b, everyone: party.Group{0, 1, 2}}
}

// multiplyLocal computes the three cross terms a single party can form
// from its own two held shares of x and y: x_i*y_i + x_i*y_{i+1} +
// x_{i+1}*y_i. Summed across all three parties this equals x*y exactly
// once, since the missing term x_{i+1}*y_{i+1} at party i is covered by
// party i+1's own x_i*y_i term.
func multiplyLocal[T vector.Element](x, y share.EVector[T]) vector.Vector[T] {
	xi, xi1 := x.At(0), x.At(1)
	yi, yi1 := y.At(0), y.At(1)
	return xi.Mul(yi).Add(xi.Mul(yi1)).Add(xi1.Mul(yi))
}

func andLocal[T vector.Element](x, y share.EVector[T]) vector.Vector[T] {
	xi, xi1 := x.At(0), x.At(1)
	yi, yi1 := y.At(0), y.At(1)
	return xi.And(yi).Xor(xi.And(yi1)).Xor(xi1.And(yi))
}

func (p *Replicated3[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	ring := share.FromVectors(multiplyLocal(x, y))
	out, err := p.Base.Reshare(ring, p.everyone, false)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: replicated3pc multiply_a reshare: %w", err)
	}
	return out, nil
}

func (p *Replicated3[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	ring := share.FromVectors(andLocal(x, y))
	out, err := p.Base.Reshare(ring, p.everyone, true)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: replicated3pc and_b reshare: %w", err)
	}
	return out, nil
}

func (p *Replicated3[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) {
	return B2ABit[T](p, x)
}

func (p *Replicated3[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	q, truncErr := DivConstA[T](x, c)
	return q, truncErr, nil
}

// RedistributeSharesB rerandomizes a boolean share via the full-group
// zero-sharing and reshares, the same rerandomize-and-forward pattern
// multiplication uses, without folding in any new cross term.
func (p *Replicated3[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) {
	own := share.FromVectors(x.At(0))
	out, err := p.Base.Reshare(own, p.everyone, true)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: replicated3pc redistribute_shares_b: %w", err)
	}
	return out, nil
}

// GeneratePerm draws a Fisher-Yates permutation from the common PRG
// shared by every party in the computation, so all three parties agree
// on the identical pi with no extra round trip.
func (p *Replicated3[T]) GeneratePerm(n int) correlation.Permutation {
	return correlation.FisherYates(p.PRGs.Group([]int(p.everyone)), n)
}

func (p *Replicated3[T]) MaliciousCheck() (bool, error) { return true, nil }
