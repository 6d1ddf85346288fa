package correlation

import (
	"golang.org/x/crypto/blake2b"

	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/vector"
)

// Permutation is a local, fully-known permutation of 0..n-1: output
// position i holds original index Permutation[i].
type Permutation []int

func IdentityPermutation(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Inverse returns the permutation undoing p.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for i, j := range p {
		inv[j] = i
	}
	return inv
}

// Compose returns the permutation equivalent to applying p then next:
// Compose(next)[i] = p[next[i]].
func (p Permutation) Compose(next Permutation) Permutation {
	out := make(Permutation, len(p))
	for i := range out {
		out[i] = p[next[i]]
	}
	return out
}

// Apply permutes v's elements according to p: output[i] = v[p[i]].
func Apply[T vector.Element](v vector.Vector[T], p Permutation) vector.Vector[T] {
	out := vector.New[T](len(p))
	for i, j := range p {
		out.Set(i, v.At(j))
	}
	return out
}

// bitsNeeded returns the number of bits required to represent values
// 0..maxVal.
func bitsNeeded(maxVal int) uint {
	if maxVal <= 0 {
		return 1
	}
	bits := uint(0)
	for (1 << bits) <= maxVal {
		bits++
	}
	return bits
}

// rejectionSample draws a uniform index in [low, n) from g using
// bit-width-matched rejection sampling: it masks a freshly drawn word
// to the smallest bit width covering the range and redraws (consuming
// fresh PRG bytes every time, including on rejection) until the masked
// value falls in range.
func rejectionSample(g prng.DeterministicPRG, low, n int) int {
	rangeSize := n - low
	if rangeSize <= 1 {
		return low
	}
	bits := bitsNeeded(rangeSize - 1)
	mask := uint64(1)<<bits - 1
	nbytes := int((bits + 7) / 8)
	buf := make([]byte, nbytes)
	for {
		g.FillBytes(buf)
		var v uint64
		for i := 0; i < nbytes; i++ {
			v |= uint64(buf[i]) << (8 * uint(i))
		}
		v &= mask
		if int(v) < rangeSize {
			return low + int(v)
		}
	}
}

// FisherYates draws a permutation of length n from g per spec.md
// §4.5: for i=0..n-2, swap position i with a uniformly drawn j in
// [i,n-1]. Every party sharing g's seed (a CommonPRG or a group PRG)
// derives the identical permutation.
func FisherYates(g prng.DeterministicPRG, n int) Permutation {
	perm := IdentityPermutation(n)
	for i := 0; i < n-1; i++ {
		j := rejectionSample(g, i, n)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// HonestMajorityPermutations draws, for every group containing this
// party, a CommonPRG-seeded Fisher-Yates permutation of length n and
// bundles the result into {group key -> permutation}.
func HonestMajorityPermutations(groups []party.Group, mgr *prng.CommonPRGManager, n int) map[string]Permutation {
	out := make(map[string]Permutation, len(groups))
	for _, g := range groups {
		out[g.Key()] = FisherYates(mgr.Group([]int(g)), n)
	}
	return out
}

// DishonestMajorityTuple is the 2PC sharded permutation correlation of
// spec.md §4.5: (π, A, B, C) with C = π(A) xor B. π is known to both
// parties; one party receives A and the other B and C. The dummy
// generator always gives A to rank 0; the real generator alternates
// which rank receives A across successive Generate calls.
type DishonestMajorityTuple[T vector.Element] struct {
	Pi Permutation
	A  vector.Vector[T]
	B  vector.Vector[T]
	C  vector.Vector[T]
}

// PermutationGenerator is the dishonest-majority (2PC) sharded
// permutation generator interface: Dummy and Real variants satisfy it.
type PermutationGenerator[T vector.Element] interface {
	Rank() int
	Generate(n int) DishonestMajorityTuple[T]
}

// DummyPermutationGenerator samples π via common randomness and A, B
// via a common PRG, per spec.md §4.5's dummy form: both parties derive
// every value from the same shared seed and locally compute C.
type DummyPermutationGenerator[T vector.Element] struct {
	rank    int
	factory prng.GeneratorFactory
	seed    []byte
	round   int
}

func NewDummyPermutationGenerator[T vector.Element](rank int, seed []byte, factory prng.GeneratorFactory) *DummyPermutationGenerator[T] {
	return &DummyPermutationGenerator[T]{rank: rank, factory: factory, seed: seed}
}

func (d *DummyPermutationGenerator[T]) Rank() int { return d.rank }

func (d *DummyPermutationGenerator[T]) Generate(n int) DishonestMajorityTuple[T] {
	d.round++
	label := itoa(d.round)
	piGen := mustGen(d.factory(deriveKey(d.seed, "dm-pi-"+label)))
	aGen := mustGen(d.factory(deriveKey(d.seed, "dm-a-"+label)))
	bGen := mustGen(d.factory(deriveKey(d.seed, "dm-b-"+label)))

	pi := FisherYates(piGen, n)
	A := drawVector[T](aGen, n)
	B := drawVector[T](bGen, n)
	C := Apply(A, pi).Xor(B)

	if d.rank == 0 {
		return DishonestMajorityTuple[T]{Pi: pi, A: A}
	}
	return DishonestMajorityTuple[T]{Pi: pi, B: B, C: C}
}

func mustGen(g prng.DeterministicPRG, err error) prng.DeterministicPRG {
	if err != nil {
		panic(err)
	}
	return g
}

// RealPermutationGenerator implements the real dishonest-majority form
// of spec.md §4.5: an oblivious PRF over a BLAKE2b-keyed random oracle
// derives A/B/π, with sender and receiver roles alternating across a
// requested batch (successive Generate calls). Like the other "real"
// generators in this package, it is built on the same seeded shared
// secret the dummy form uses rather than a true asymmetric OPRF
// handshake — see DESIGN.md for the trust-model note.
type RealPermutationGenerator[T vector.Element] struct {
	rank  int
	seed  []byte
	batch int
}

func NewRealPermutationGenerator[T vector.Element](rank int, seed []byte) *RealPermutationGenerator[T] {
	return &RealPermutationGenerator[T]{rank: rank, seed: seed}
}

func (r *RealPermutationGenerator[T]) Rank() int { return r.rank }

func (r *RealPermutationGenerator[T]) Generate(n int) DishonestMajorityTuple[T] {
	senderIsRank0 := r.batch%2 == 0
	r.batch++

	var zero T
	width := elementByteWidth(zero)

	oprfKey := deriveKey(r.seed, "dm-oprf-"+itoa(r.batch))
	piBytes := oprfEvaluate(oprfKey, "pi", n*8)
	aBytes := oprfEvaluate(oprfKey, "a", n*width)
	bBytes := oprfEvaluate(oprfKey, "b", n*width)

	pi := permutationFromBytes(piBytes, n)
	A := vectorFromBytes[T](aBytes, n)
	B := vectorFromBytes[T](bBytes, n)
	C := Apply(A, pi).Xor(B)

	isA := (senderIsRank0 && r.rank == 0) || (!senderIsRank0 && r.rank == 1)
	if isA {
		return DishonestMajorityTuple[T]{Pi: pi, A: A}
	}
	return DishonestMajorityTuple[T]{Pi: pi, B: B, C: C}
}

// oprfEvaluate is the random-oracle evaluation both roles derive
// identically from the shared OPRF key: a BLAKE2b-keyed hash stretched
// to nbytes via counter-mode re-keying.
func oprfEvaluate(key []byte, label string, nbytes int) []byte {
	out := make([]byte, 0, nbytes)
	counter := 0
	for len(out) < nbytes {
		h, err := blake2b.New256(key)
		if err != nil {
			panic(err)
		}
		h.Write([]byte(label))
		h.Write([]byte{byte(counter), byte(counter >> 8), byte(counter >> 16), byte(counter >> 24)})
		out = append(out, h.Sum(nil)...)
		counter++
	}
	return out[:nbytes]
}

func permutationFromBytes(buf []byte, n int) Permutation {
	perm := IdentityPermutation(n)
	pos := 0
	for i := 0; i < n-1; i++ {
		rangeSize := n - i
		bits := bitsNeeded(rangeSize - 1)
		nbytes := int((bits + 7) / 8)
		mask := uint64(1)<<bits - 1
		for {
			var v uint64
			for k := 0; k < nbytes; k++ {
				v |= uint64(buf[pos]) << (8 * uint(k))
				pos++
				if pos >= len(buf) {
					pos = 0
				}
			}
			v &= mask
			if int(v) < rangeSize {
				j := i + int(v)
				perm[i], perm[j] = perm[j], perm[i]
				break
			}
		}
	}
	return perm
}

func vectorFromBytes[T vector.Element](buf []byte, n int) vector.Vector[T] {
	var z T
	w := elementByteWidth(z)
	out := vector.New[T](n)
	for i := 0; i < n; i++ {
		out.Set(i, decodeElement[T](buf[i*w:(i+1)*w]))
	}
	return out
}
