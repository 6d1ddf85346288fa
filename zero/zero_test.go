package zero

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/vector"
)

type fakeRankPRGs struct {
	rank           int
	previous, next *prng.CommonPRG
}

func (f fakeRankPRGs) Rank() int                  { return f.rank }
func (f fakeRankPRGs) Previous() *prng.CommonPRG { return f.previous }
func (f fakeRankPRGs) Next() *prng.CommonPRG     { return f.next }

func newCommonPRG(t *testing.T, seed byte) *prng.CommonPRG {
	s := make([]byte, 32)
	for i := range s {
		s[i] = seed
	}
	gen, err := prng.NewAES256CTR(s)
	require.NoError(t, err)
	return prng.NewCommonPRG(0, gen)
}

// In a P-party ring, party i's "next" common PRG (shared with i+1) must be
// the same stream as party i+1's "previous" common PRG (shared with i).
// This test builds that ring with P=3 and checks the shares telescope to
// zero, as spec.md §4.4 requires.
func TestArithmeticSharesTelescopeToZero(t *testing.T) {
	const p = 3
	// pairSeed[i] keys the pairwise common PRG shared between party i and
	// party (i+1)%p. Each side of the pair holds its own CommonPRG
	// instance, independently constructed from the identical seed, the
	// way two different processes would.
	pairSeed := make([]byte, p)
	for i := range pairSeed {
		pairSeed[i] = byte(i + 1)
	}

	gens := make([]*Generator, p)
	for i := 0; i < p; i++ {
		prevPRG := newCommonPRG(t, pairSeed[mod(i-1, p)])
		nextPRG := newCommonPRG(t, pairSeed[i])
		gens[i] = New(p, fakeRankPRGs{rank: i, previous: prevPRG, next: nextPRG})
	}

	const n = 8
	sum := vector.New[int64](n)
	for i := 0; i < p; i++ {
		sum = sum.Add(Arithmetic[int64](gens[i], n))
	}
	require.Equal(t, vector.New[int64](n).BatchSpan(), sum.BatchSpan())
}

func TestBinarySharesXorToZero(t *testing.T) {
	const p = 3
	pairSeed := make([]byte, p)
	for i := range pairSeed {
		pairSeed[i] = byte(10 + i)
	}

	gens := make([]*Generator, p)
	for i := 0; i < p; i++ {
		prevPRG := newCommonPRG(t, pairSeed[mod(i-1, p)])
		nextPRG := newCommonPRG(t, pairSeed[i])
		gens[i] = New(p, fakeRankPRGs{rank: i, previous: prevPRG, next: nextPRG})
	}

	const n = 8
	sum := vector.New[int64](n)
	for i := 0; i < p; i++ {
		sum = sum.Xor(Binary[int64](gens[i], n))
	}
	require.Equal(t, vector.New[int64](n).BatchSpan(), sum.BatchSpan())
}

func TestGroupArithmeticSumsToZero(t *testing.T) {
	members := []int{0, 1, 2}
	const n = 6
	sum := vector.New[int64](n)
	for _, r := range members {
		// Each member holds its own independently-seeded but
		// byte-identical copy of the group PRG.
		sum = sum.Add(GroupArithmetic[int64](newCommonPRG(t, 99), members, r, n))
	}
	require.Equal(t, vector.New[int64](n).BatchSpan(), sum.BatchSpan())
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
