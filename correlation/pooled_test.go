package correlation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPooledTriplesReserveAndDequeue(t *testing.T) {
	seed := make([]byte, 32)
	ole0 := NewDummyOLE[int32](Arithmetic, 0, seed, aesFactory)
	pool := NewPooledTriples[int32](NewBeaverGenerator[int32](ole0))

	pool.Reserve(100)
	require.Equal(t, 100, pool.Len())

	t1 := pool.GetNext(40)
	require.Equal(t, 60, pool.Len())
	require.Equal(t, 40, t1.A.Size())
	require.Equal(t, 40, t1.B.Size())
	require.Equal(t, 40, t1.C.Size())

	t2 := pool.GetNext(60)
	require.Equal(t, 0, pool.Len())
	require.Equal(t, 60, t2.A.Size())
}

func TestPooledTriplesUnderflowRegenerates(t *testing.T) {
	seed := make([]byte, 32)
	ole0 := NewDummyOLE[int32](Arithmetic, 0, seed, aesFactory)
	pool := NewPooledTriples[int32](NewBeaverGenerator[int32](ole0))

	var underflowed int
	pool.OnUnderflow(func(n int) { underflowed = n })

	pool.Reserve(10)
	got := pool.GetNext(20)
	require.Equal(t, 20, underflowed)
	require.Equal(t, 20, got.A.Size())
}
