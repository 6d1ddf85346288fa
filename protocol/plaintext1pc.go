package protocol

import (
	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// Plaintext is the trivial P=1 variant: the sole party holds every
// value directly, so every primitive is a plain local op and nothing
// ever touches a Communicator.
type Plaintext[T vector.Element] struct {
	Base[T]
}

// NewPlaintext builds the single-party plaintext protocol object. Only
// rank 0 of a 1-party computation is valid.
func NewPlaintext[T vector.Element](b Base[T]) *Plaintext[T] {
	return &Plaintext[T]{Base: b}
}

func (p *Plaintext[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	return share.FromVectors(x.At(0).Mul(y.At(0))), nil
}

func (p *Plaintext[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	return share.FromVectors(x.At(0).And(y.At(0))), nil
}

func (p *Plaintext[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) {
	return x, nil
}

func (p *Plaintext[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	divisor := vector.Fill[T](x.Size(), c)
	q := share.FromVectors(x.At(0).Div(divisor))
	return q, share.New[T](1, x.Size()), nil
}

func (p *Plaintext[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) {
	return x, nil
}

func (p *Plaintext[T]) Reshare(v share.EVector[T], group party.Group, binary bool) (share.EVector[T], error) {
	return v, nil
}

// GeneratePerm draws a fresh permutation locally: with a single party
// there is no one else to agree it with.
func (p *Plaintext[T]) GeneratePerm(n int) correlation.Permutation {
	return correlation.FisherYates(prng.DevURandom{}, n)
}

func (p *Plaintext[T]) MaliciousCheck() (bool, error) { return true, nil }
