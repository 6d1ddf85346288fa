package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/transport"
	"github.com/Pro7ech/secmpc/vector"
	"github.com/Pro7ech/secmpc/zero"
)

// newFourParties builds one Base[int64] per rank in a 4-party computation,
// with every relative-rank and whole-group common PRG agreed, then hands
// each Base to build.
func newFourParties[P Protocol[int64]](t *testing.T, build func(Base[int64]) P) []P {
	const p = 4
	comms := transport.NewLocalNetwork(p)
	mgrs := setupManagers(t, p)

	out := make([]P, p)
	for i := 0; i < p; i++ {
		id := party.NewIdentity(i, p)
		gen := zero.New(p, rankPRGsAdapter{rank: i, mgr: mgrs[i]})
		base := NewBase[int64](id, comms[i], gen, mgrs[i])
		out[i] = build(base)
	}
	return out
}

// TestFantasticCustomMultiplyA exercises spec.md §8's S1 scenario on the
// 4-party replicated variant.
func TestFantasticCustomMultiplyA(t *testing.T) {
	parties := newFourParties(t, func(b Base[int64]) *FantasticCustom[int64] { return NewFantasticCustom[int64](b) })
	const owner = 0
	x := vec64(3, 1, 4, 1, 5, 9, 2, 6)
	y := vec64(2, 7, 1, 8, 2, 8, 1, 8)
	want := vec64(6, 7, 4, 8, 10, 72, 2, 48)

	got := runOnAll(t, 4, func(rank int) (vector.Vector[int64], error) {
		p := parties[rank]
		var xv, yv vector.Vector[int64]
		if rank == owner {
			xv, yv = x, y
		} else {
			xv, yv = vector.New[int64](x.Size()), vector.New[int64](y.Size())
		}
		xs, err := p.SecretShareA(owner, xv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		ys, err := p.SecretShareA(owner, yv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		prodShares, err := p.MultiplyA(xs, ys)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		return p.OpenSharesA(prodShares)
	})

	for i, prod := range got {
		require.Equal(t, want.BatchSpan(), prod.BatchSpan(), "party %d", i)
	}
}

// TestFantasticDalskovAndBAndMaliciousCheck exercises S2 on the
// malicious-secure 4-party variant, then confirms malicious_check reports
// true after a clean run with no injected fault, covering S5's malicious
// branch.
func TestFantasticDalskovAndBAndMaliciousCheck(t *testing.T) {
	parties := newFourParties(t, func(b Base[int64]) *FantasticDalskov[int64] { return NewFantasticDalskov[int64](b) })
	const owner = 2
	x := vec64(0b1100, 0b1010)
	y := vec64(0b1010, 0b1100)
	want := vec64(0b1000, 0b1000)

	got := runOnAll(t, 4, func(rank int) (vector.Vector[int64], error) {
		p := parties[rank]
		var xv, yv vector.Vector[int64]
		if rank == owner {
			xv, yv = x, y
		} else {
			xv, yv = vector.New[int64](x.Size()), vector.New[int64](y.Size())
		}
		xs, err := p.SecretShareB(owner, xv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		ys, err := p.SecretShareB(owner, yv)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		andShares, err := p.AndB(xs, ys)
		if err != nil {
			return vector.Vector[int64]{}, err
		}
		return p.OpenSharesB(andShares)
	})

	for i, and := range got {
		require.Equal(t, want.BatchSpan(), and.BatchSpan(), "party %d", i)
	}

	checks := runOnAll(t, 4, func(rank int) (bool, error) {
		return parties[rank].MaliciousCheck()
	})
	for i, ok := range checks {
		require.True(t, ok, "party %d", i)
	}
}
