package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
)

// TestRuntimeDispatchApplyPermRoundTrip drives GeneratePermParallel and
// ApplyPermParallel/ApplyInversePermParallel through the runtime's
// dispatch layer, covering spec.md §8's S6 scenario: a 3-party
// computation generates a shared permutation, applies it then its
// inverse to a secret-shared vector, and opens the result back to the
// original input.
func TestRuntimeDispatchApplyPermRoundTrip(t *testing.T) {
	runtimes := newReplicated3Runtimes(t)
	const owner = 0
	const n = 256

	x := vector.New[int64](n)
	for i := 0; i < n; i++ {
		x.Set(i, int64(i*i))
	}

	got := runOnAll(t, 3, func(rank int) (vector.Vector[int64], error) {
		rt := runtimes[rank]
		r := rt.Workers[0].ID.R

		xv := x
		if rank != owner {
			xv = vector.New[int64](n)
		}

		xs := share.New[int64](r, n)
		if err := SecretShareAParallel(rt, pickI64, owner, xv, xs); err != nil {
			return vector.Vector[int64]{}, err
		}

		pi, err := GeneratePermParallel(rt, pickI64, n)
		if err != nil {
			return vector.Vector[int64]{}, err
		}

		shuffled := share.New[int64](r, n)
		if err := ApplyPermParallel(rt, pickI64, xs, pi, shuffled); err != nil {
			return vector.Vector[int64]{}, err
		}

		restored := share.New[int64](r, n)
		if err := ApplyInversePermParallel(rt, pickI64, shuffled, pi, restored); err != nil {
			return vector.Vector[int64]{}, err
		}

		out := vector.New[int64](n)
		if err := OpenSharesAParallel(rt, pickI64, restored, out); err != nil {
			return vector.Vector[int64]{}, err
		}
		return out, nil
	})

	for i, out := range got {
		require.Equal(t, x.BatchSpan(), out.BatchSpan(), "party %d", i)
	}

	for _, rt := range runtimes {
		ok, err := rt.MaliciousCheck()
		require.NoError(t, err)
		require.True(t, ok)
		rt.Teardown()
	}
}

// TestRuntimeDispatchApplyPermSizeMismatch covers the error paths
// ApplyPermParallel/ApplyInversePermParallel guard against: a
// mismatched pi/res size must fail fast rather than silently
// truncating.
func TestRuntimeDispatchApplyPermSizeMismatch(t *testing.T) {
	runtimes := newReplicated3Runtimes(t)
	rt := runtimes[0]
	r := rt.Workers[0].ID.R

	x := share.New[int64](r, 4)
	pi := correlation.Permutation{1, 0, 3, 2}
	res := share.New[int64](r, 3)

	err := ApplyPermParallel(rt, pickI64, x, pi, res)
	require.Error(t, err)

	err = ApplyInversePermParallel(rt, pickI64, x, pi, res)
	require.Error(t, err)

	for _, rt := range runtimes {
		rt.Teardown()
	}
}
