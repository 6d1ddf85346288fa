package protocol

import (
	"encoding/binary"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// dummyPermSeed is a fixed, public AES-256-CTR seed every Dummy variant
// party derives its shared permutation PRG from. It exists only so that
// every party can reach an identical permutation with no real
// coordination channel, matching the variant's documented insecure
// testing role.
var dummyPermSeed = [32]byte{
	'd', 'u', 'm', 'm', 'y', '-', 'p', 'e', 'r', 'm', '-', 's', 'e', 'e', 'd', '!',
	'd', 'u', 'm', 'm', 'y', '-', 'p', 'e', 'r', 'm', '-', 's', 'e', 'e', 'd', '!',
}

// Dummy is the insecure testing variant of spec.md §9's variant list: it
// runs over any party count but carries the plaintext value directly,
// redundantly, at every party rather than splitting it into real
// shares. It exists to exercise the runtime's dispatch, batching and
// worker-fan-out logic in isolation from the correlated-randomness and
// networking layers, the same role DummyOLE and DummyPermutationGenerator
// play one layer down in package correlation.
type Dummy[T vector.Element] struct {
	rank       int
	numParties int
	permRound  uint64
}

// NewDummy builds a P-party insecure testing protocol object. No
// Communicator is needed: every primitive is purely local.
func NewDummy[T vector.Element](rank, numParties int) *Dummy[T] {
	return &Dummy[T]{rank: rank, numParties: numParties}
}

func (d *Dummy[T]) Rank() int       { return d.rank }
func (d *Dummy[T]) NumParties() int { return d.numParties }
func (d *Dummy[T]) R() int          { return 1 }

func (d *Dummy[T]) SecretShareA(owner int, v vector.Vector[T]) (share.EVector[T], error) {
	return share.FromVectors(v), nil
}
func (d *Dummy[T]) SecretShareB(owner int, v vector.Vector[T]) (share.EVector[T], error) {
	return share.FromVectors(v), nil
}
func (d *Dummy[T]) PublicShare(v vector.Vector[T]) share.EVector[T] {
	return share.FromVectors(v)
}

func (d *Dummy[T]) OpenSharesA(s share.EVector[T]) (vector.Vector[T], error) { return s.At(0), nil }
func (d *Dummy[T]) OpenSharesB(s share.EVector[T]) (vector.Vector[T], error) { return s.At(0), nil }

func (d *Dummy[T]) AddA(x, y share.EVector[T]) share.EVector[T] { return x.Add(y) }
func (d *Dummy[T]) SubA(x, y share.EVector[T]) share.EVector[T] { return x.Sub(y) }
func (d *Dummy[T]) XorB(x, y share.EVector[T]) share.EVector[T] { return x.Xor(y) }
func (d *Dummy[T]) NegA(x share.EVector[T]) share.EVector[T]    { return x.Neg() }
func (d *Dummy[T]) NotB(x share.EVector[T]) share.EVector[T]    { return x.Not() }
func (d *Dummy[T]) NotB1(x share.EVector[T]) share.EVector[T] {
	one := vector.Fill[T](x.Size(), oneOf[T]())
	return share.FromVectors(x.At(0).Xor(one))
}

func (d *Dummy[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	return share.FromVectors(x.At(0).Mul(y.At(0))), nil
}
func (d *Dummy[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	return share.FromVectors(x.At(0).And(y.At(0))), nil
}

func (d *Dummy[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) { return x, nil }

func (d *Dummy[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	divisor := vector.Fill[T](x.Size(), c)
	return share.FromVectors(x.At(0).Div(divisor)), share.New[T](1, x.Size()), nil
}

func (d *Dummy[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) { return x, nil }

func (d *Dummy[T]) Reshare(v share.EVector[T], group party.Group, binary bool) (share.EVector[T], error) {
	return v, nil
}

// GeneratePerm derives a permutation from a fixed public seed plus a
// per-call round counter, so every party in the computation (no
// Communicator, no PRGs here to agree one over) reaches the same
// sequence of permutations without any real coordination.
func (d *Dummy[T]) GeneratePerm(n int) correlation.Permutation {
	seed := dummyPermSeed
	var round [8]byte
	binary.LittleEndian.PutUint64(round[:], d.permRound)
	d.permRound++
	for i, b := range round {
		seed[i] ^= b
	}
	g, err := prng.NewAES256CTR(seed[:])
	if err != nil {
		panic(err)
	}
	return correlation.FisherYates(g, n)
}

func (d *Dummy[T]) ApplyPerm(x share.EVector[T], pi correlation.Permutation) share.EVector[T] {
	return share.FromVectors(correlation.Apply(x.At(0), pi))
}

func (d *Dummy[T]) ApplyInversePerm(x share.EVector[T], pi correlation.Permutation) share.EVector[T] {
	return d.ApplyPerm(x, pi.Inverse())
}

func (d *Dummy[T]) MaliciousCheck() (bool, error) { return true, nil }
