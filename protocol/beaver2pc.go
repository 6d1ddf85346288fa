package protocol

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// Beaver is the 2-party dishonest-majority variant: every multiply_a/
// and_b call consumes one pooled Beaver triple, opens one masked value
// to the peer, and combines locally. Reshare and RedistributeSharesB
// return their input unchanged.
type Beaver[T vector.Element] struct {
	Base[T]
	arith *correlation.PooledTriples[T]
	bool_ *correlation.PooledTriples[T]
	perms *correlation.Manager[T]
}

// NewBeaver builds the 2-party Beaver protocol object over the given
// arithmetic and boolean OLE sources plus a dishonest-majority
// permutation generator (Dummy or Real form).
func NewBeaver[T vector.Element](b Base[T], arithOLE, boolOLE correlation.OLE[T], permGen correlation.PermutationGenerator[T]) *Beaver[T] {
	return &Beaver[T]{
		Base:  b,
		arith: correlation.NewPooledTriples[T](correlation.NewBeaverGenerator[T](arithOLE)),
		bool_: correlation.NewPooledTriples[T](correlation.NewBeaverGenerator[T](boolOLE)),
		perms: correlation.NewManager[T](permGen, 0),
	}
}

// ReservePool tops up both triple pools by n triples each, meant to be
// called ahead of a batch of multiply_a/and_b calls.
func (p *Beaver[T]) ReservePool(n int) {
	p.arith.Reserve(n)
	p.bool_.Reserve(n)
}

// GeneratePerm dequeues a pooled dishonest-majority permutation tuple
// and returns its pi: both parties agree on the same permutation during
// Generate, so no further communication is needed here. The tuple's A/B/
// C masking correlation is not used: ApplyPerm's plain local reindex
// (inherited from Base) needs nothing more than pi.
func (p *Beaver[T]) GeneratePerm(n int) correlation.Permutation {
	return p.perms.GetNext(n).Pi
}

func (p *Beaver[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	t := p.arith.GetNext(n)

	maskedX := x.At(0).Add(t.A)
	maskedY := y.At(0).Add(t.B)
	openX, err := p.Base.OpenSharesA(share.FromVectors(maskedX))
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: multiply_a opening x+a: %w", err)
	}
	openY, err := p.Base.OpenSharesA(share.FromVectors(maskedY))
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: multiply_a opening y+b: %w", err)
	}

	// z_i = y_i*A - a_i*B + c_i ; summed across both parties, the cross
	// terms cancel leaving x*y + (a*b - a*b) = x*y.
	z := y.At(0).Mul(openX).Sub(t.A.Mul(openY)).Add(t.C)
	return share.FromVectors(z), nil
}

func (p *Beaver[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	t := p.bool_.GetNext(n)

	maskedX := x.At(0).Xor(t.A)
	maskedY := y.At(0).Xor(t.B)
	openX, err := p.Base.OpenSharesB(share.FromVectors(maskedX))
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: and_b opening x xor a: %w", err)
	}
	openY, err := p.Base.OpenSharesB(share.FromVectors(maskedY))
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: and_b opening y xor b: %w", err)
	}

	// z_i = c_i xor (A and b_i) xor (B and a_i), with rank 0 additionally
	// xoring in the public-public term A and B — unlike arithmetic
	// multiplication, boolean AND's cross terms don't cancel under XOR
	// (there is no sign to flip), so exactly one party must contribute
	// that term once.
	z := t.C.Xor(openX.And(t.B)).Xor(openY.And(t.A))
	if p.Rank() == 0 {
		z = z.Xor(openX.And(openY))
	}
	return share.FromVectors(z), nil
}

func (p *Beaver[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) {
	return B2ABit[T](p, x)
}

func (p *Beaver[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	q, truncErr := DivConstA[T](x, c)
	return q, truncErr, nil
}

func (p *Beaver[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) {
	return x, nil
}

func (p *Beaver[T]) Reshare(v share.EVector[T], group party.Group, binary bool) (share.EVector[T], error) {
	return v, nil
}

func (p *Beaver[T]) MaliciousCheck() (bool, error) { return true, nil }
