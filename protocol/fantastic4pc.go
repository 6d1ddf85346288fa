package protocol

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// FantasticCustom is the 4-party variant (R=3, every party missing
// exactly one of the four share indices): multiplication generalizes
// Replicated3PC's cross-term folding to four replicated shares. Every
// ordered pair of global indices (k,l) is jointly known by at least one
// party's own replication set — that party computes x_k*y_l locally and
// contributes it to the sum — so the whole product is split into local
// terms, each counted exactly once, without any extra OT-style "inp"
// round trip: the joint-knowledge structure the Fantastic Four paper's
// inp(i,j,g,h) exploits is already available directly from the
// replication layout.
type FantasticCustom[T vector.Element] struct {
	Base[T]
	everyone party.Group
}

// NewFantasticCustom builds the 4-party custom-variant protocol object.
func NewFantasticCustom[T vector.Element](b Base[T]) *FantasticCustom[T] {
	if b.ID.NumParties != 4 {
		panic(fmt.Errorf("protocol: fantastic4pc requires 4 parties, got %d", b.ID.NumParties))
	}
	return &FantasticCustom[T]{Base: b, everyone: party.Group{0, 1, 2, 3}}
}

// termOwner returns the lowest-ranked party whose replication set holds
// both global indices k and l, for a 4-party R=3 layout. Party p's set
// excludes only index (p+3) mod 4, so p holds both k and l unless p is
// the one party missing from {k,l}; since at most two of the four ranks
// can be excluded this way, a holder always exists.
func termOwner(k, l int) int {
	for p := 0; p < 4; p++ {
		missing := mod4(p + 3)
		if missing != k && missing != l {
			return p
		}
	}
	panic(fmt.Errorf("protocol: no joint holder for indices %d,%d", k, l))
}

func mod4(a int) int {
	r := a % 4
	if r < 0 {
		r += 4
	}
	return r
}

// knownValue returns global share index idx's value as held by a party
// whose own replication set includes idx, or the zero vector if idx is
// not in this identity's Shares().
func knownValue[T vector.Element](id party.Identity, x share.EVector[T], idx, n int) vector.Vector[T] {
	for i, held := range id.Shares() {
		if held == idx {
			return x.At(i)
		}
	}
	return vector.New[T](n)
}

func fantasticLocal4[T vector.Element](id party.Identity, x, y share.EVector[T], n int, op func(a, b vector.Vector[T]) vector.Vector[T]) vector.Vector[T] {
	acc := vector.New[T](n)
	for k := 0; k < 4; k++ {
		for l := 0; l < 4; l++ {
			if termOwner(k, l) != id.Rank {
				continue
			}
			xk := knownValue(id, x, k, n)
			yl := knownValue(id, y, l, n)
			acc = op(acc, xk.Mul(yl))
		}
	}
	return acc
}

func (p *FantasticCustom[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	local := fantasticLocal4[T](p.ID, x, y, n, vector.Vector[T].Add)
	ring := share.FromVectors(local)
	out, err := p.Base.Reshare(ring, p.everyone, false)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: fantastic4pc multiply_a reshare: %w", err)
	}
	return out, nil
}

func andLocal4[T vector.Element](id party.Identity, x, y share.EVector[T], n int) vector.Vector[T] {
	acc := vector.New[T](n)
	for k := 0; k < 4; k++ {
		for l := 0; l < 4; l++ {
			if termOwner(k, l) != id.Rank {
				continue
			}
			xk := knownValue(id, x, k, n)
			yl := knownValue(id, y, l, n)
			acc = acc.Xor(xk.And(yl))
		}
	}
	return acc
}

func (p *FantasticCustom[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	local := andLocal4[T](p.ID, x, y, n)
	ring := share.FromVectors(local)
	out, err := p.Base.Reshare(ring, p.everyone, true)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: fantastic4pc and_b reshare: %w", err)
	}
	return out, nil
}

func (p *FantasticCustom[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) {
	return B2ABit[T](p, x)
}

func (p *FantasticCustom[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	q, truncErr := DivConstA[T](x, c)
	return q, truncErr, nil
}

func (p *FantasticCustom[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) {
	own := share.FromVectors(x.At(0))
	out, err := p.Base.Reshare(own, p.everyone, true)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: fantastic4pc redistribute_shares_b: %w", err)
	}
	return out, nil
}

// GeneratePerm draws a Fisher-Yates permutation from the common PRG
// shared by all four parties.
func (p *FantasticCustom[T]) GeneratePerm(n int) correlation.Permutation {
	return correlation.FisherYates(p.PRGs.Group([]int(p.everyone)), n)
}

// MaliciousCheck is a no-op for the custom variant: it carries no
// deferred consistency bookkeeping of its own, unlike FantasticDalskov.
func (p *FantasticCustom[T]) MaliciousCheck() (bool, error) { return true, nil }
