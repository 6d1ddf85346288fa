package correlation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/transport"
)

func TestBeaverTriplesFromDummyOLE(t *testing.T) {
	seed := make([]byte, 32)
	ole0 := NewDummyOLE[int64](Arithmetic, 0, seed, aesFactory)
	ole1 := NewDummyOLE[int64](Arithmetic, 1, seed, aesFactory)
	gen0 := NewBeaverGenerator[int64](ole0)
	gen1 := NewBeaverGenerator[int64](ole1)

	t0 := gen0.Generate(1000)
	t1 := gen1.Generate(1000)

	for i := 0; i < 1000; i++ {
		a := t0.A.At(i) + t1.A.At(i)
		b := t0.B.At(i) + t1.B.At(i)
		c := t0.C.At(i) + t1.C.At(i)
		require.Equal(t, a*b, c, "index %d", i)
	}
}

func TestBeaverTriplesFromDummyOLEBoolean(t *testing.T) {
	seed := make([]byte, 32)
	ole0 := NewDummyOLE[int32](Boolean, 0, seed, aesFactory)
	ole1 := NewDummyOLE[int32](Boolean, 1, seed, aesFactory)
	gen0 := NewBeaverGenerator[int32](ole0)
	gen1 := NewBeaverGenerator[int32](ole1)

	t0 := gen0.Generate(200)
	t1 := gen1.Generate(200)

	for i := 0; i < 200; i++ {
		a := t0.A.At(i) ^ t1.A.At(i)
		b := t0.B.At(i) ^ t1.B.At(i)
		c := t0.C.At(i) ^ t1.C.At(i)
		require.Equal(t, a&b, c, "index %d", i)
	}
}

func TestAssertCorrelatedAcceptsValidTriple(t *testing.T) {
	seed := make([]byte, 32)
	ole0 := NewDummyOLE[int32](Arithmetic, 0, seed, aesFactory)
	ole1 := NewDummyOLE[int32](Arithmetic, 1, seed, aesFactory)
	gen0 := NewBeaverGenerator[int32](ole0)
	gen1 := NewBeaverGenerator[int32](ole1)

	t0 := gen0.Generate(64)
	t1 := gen1.Generate(64)

	net := transport.NewLocalNetwork(2)
	done := make(chan error, 1)
	go func() { done <- AssertCorrelated[int32](net[0], 1, Arithmetic, t0) }()
	require.NoError(t, AssertCorrelated[int32](net[1], -1, Arithmetic, t1))
	require.NoError(t, <-done)
}
