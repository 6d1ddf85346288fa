package protocol

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// secretShareOpen3 is the round-trip shared by the invariant tests
// below: the dealer secret-shares x, every party applies op to its
// shares, and the result is opened back to a plaintext vector.
func secretShareOpen3(t *testing.T, parties []*Replicated3[int64], owner int, x vector.Vector[int64], op func(p *Replicated3[int64], xs share.EVector[int64]) share.EVector[int64]) vector.Vector[int64] {
	t.Helper()
	got := runOnAll(t, 3, func(rank int) (vector.Vector[int64], error) {
		p := parties[rank]
		xv := x
		if rank != owner {
			xv = vector.New[int64](x.Size())
		}
		xs, err := p.SecretShareA(owner, xv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		out := op(p, xs)
		return p.OpenSharesA(out)
	})
	for i := 1; i < len(got); i++ {
		require.Equal(t, got[0].BatchSpan(), got[i].BatchSpan())
	}
	return got[0]
}

// TestReplicated3GeneratePermAgrees covers spec.md §8's S6 scenario: a
// 3-party computation generates a shared permutation of size 256, every
// party reaches the identical pi with no extra communication.
func TestReplicated3GeneratePermAgrees(t *testing.T) {
	parties, _ := newReplicated3Parties(t)
	const n = 256
	perms := runOnAll(t, 3, func(rank int) (correlation.Permutation, error) {
		return parties[rank].GeneratePerm(n), nil
	})
	require.Equal(t, perms[0], perms[1])
	require.Equal(t, perms[0], perms[2])
	require.Len(t, perms[0], n)

	seen := make(map[int]bool, n)
	for _, v := range perms[0] {
		require.False(t, seen[v], "duplicate index %d in generated permutation", v)
		seen[v] = true
	}
}

// TestReplicated3ApplyPermShufflePreservation covers invariant 4 (shuffle
// preservation): opening apply_perm(share(x), pi) yields exactly pi
// applied to x's plaintext.
func TestReplicated3ApplyPermShufflePreservation(t *testing.T) {
	parties, _ := newReplicated3Parties(t)
	const owner = 0
	x := vec64(3, 1, 4, 1, 5, 9, 2, 6)
	pi := correlation.Permutation{5, 2, 0, 7, 1, 6, 3, 4}
	want := correlation.Apply(x, pi)

	got := secretShareOpen3(t, parties, owner, x, func(p *Replicated3[int64], xs share.EVector[int64]) share.EVector[int64] {
		return p.ApplyPerm(xs, pi)
	})
	require.Equal(t, want.BatchSpan(), got.BatchSpan())
}

// TestReplicated3ApplyInversePermRoundTrips covers invariant 5
// (permutation inversion): applying pi then pi's inverse recovers x.
func TestReplicated3ApplyInversePermRoundTrips(t *testing.T) {
	parties, _ := newReplicated3Parties(t)
	const owner = 1
	x := vec64(10, 20, 30, 40, 50, 60)
	pi := correlation.Permutation{3, 0, 4, 1, 5, 2}

	got := secretShareOpen3(t, parties, owner, x, func(p *Replicated3[int64], xs share.EVector[int64]) share.EVector[int64] {
		shuffled := p.ApplyPerm(xs, pi)
		return p.ApplyInversePerm(shuffled, pi)
	})
	require.Equal(t, x.BatchSpan(), got.BatchSpan())
}

// TestReplicated3ApplyPermComposition covers invariant 6 (composition):
// applying sigma then rho matches applying their composed permutation in
// one step.
func TestReplicated3ApplyPermComposition(t *testing.T) {
	parties, _ := newReplicated3Parties(t)
	const owner = 2
	x := vec64(7, 14, 21, 28, 35, 42, 49)
	sigma := correlation.Permutation{2, 0, 4, 1, 6, 3, 5}
	rho := correlation.Permutation{1, 3, 5, 0, 2, 6, 4}
	composed := sigma.Compose(rho)
	want := correlation.Apply(x, composed)

	chained := secretShareOpen3(t, parties, owner, x, func(p *Replicated3[int64], xs share.EVector[int64]) share.EVector[int64] {
		return p.ApplyPerm(p.ApplyPerm(xs, sigma), rho)
	})
	require.Equal(t, want.BatchSpan(), chained.BatchSpan())

	direct := secretShareOpen3(t, parties, owner, x, func(p *Replicated3[int64], xs share.EVector[int64]) share.EVector[int64] {
		return p.ApplyPerm(xs, composed)
	})
	require.Equal(t, want.BatchSpan(), direct.BatchSpan())
}

// TestReplicated3GenerateAndApplyPermEndToEnd covers spec.md §8's S6
// scenario in full: a 3-party computation generates pi, applies it then
// its inverse to a secret-shared vector, and opens the result, recovering
// the original input.
func TestReplicated3GenerateAndApplyPermEndToEnd(t *testing.T) {
	parties, _ := newReplicated3Parties(t)
	const owner = 0
	const n = 256
	x := vector.New[int64](n)
	for i := 0; i < n; i++ {
		x.Set(i, int64(i*i))
	}

	got := runOnAll(t, 3, func(rank int) (vector.Vector[int64], error) {
		p := parties[rank]
		xv := x
		if rank != owner {
			xv = vector.New[int64](n)
		}
		xs, err := p.SecretShareA(owner, xv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		pi := p.GeneratePerm(n)
		shuffled := p.ApplyPerm(xs, pi)
		restored := p.ApplyInversePerm(shuffled, pi)
		return p.OpenSharesA(restored)
	})

	for i, out := range got {
		require.Equal(t, x.BatchSpan(), out.BatchSpan(), "party %d", i)
	}
}

// TestFantasticCustomApplyPermShuffleAndSort covers spec.md §8's S3
// scenario: a 4-party computation shuffles a length-100 secret-shared
// vector with a generated permutation, opens it, and recovers the
// original multiset once sorted back.
func TestFantasticCustomApplyPermShuffleAndSort(t *testing.T) {
	parties := newFourParties(t, func(b Base[int64]) *FantasticCustom[int64] { return NewFantasticCustom[int64](b) })
	const owner = 3
	const n = 100
	x := vector.New[int64](n)
	for i := 0; i < n; i++ {
		x.Set(i, int64(n-i))
	}

	got := runOnAll(t, 4, func(rank int) (vector.Vector[int64], error) {
		p := parties[rank]
		xv := x
		if rank != owner {
			xv = vector.New[int64](n)
		}
		xs, err := p.SecretShareA(owner, xv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		pi := p.GeneratePerm(n)
		shuffled := p.ApplyPerm(xs, pi)
		return p.OpenSharesA(shuffled)
	})

	wantSorted := append([]int64{}, x.BatchSpan()...)
	sort.Slice(wantSorted, func(i, j int) bool { return wantSorted[i] < wantSorted[j] })

	for i, out := range got {
		gotSorted := append([]int64{}, out.BatchSpan()...)
		sort.Slice(gotSorted, func(i, j int) bool { return gotSorted[i] < gotSorted[j] })
		require.Equal(t, wantSorted, gotSorted, "party %d", i)
	}
}
