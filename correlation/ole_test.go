package correlation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/prng"
)

func aesFactory(seed []byte) (prng.DeterministicPRG, error) {
	return prng.NewAES256CTR(seed)
}

func TestZeroOLESatisfiesBooleanRelation(t *testing.T) {
	z0 := NewZeroOLE[int32](Boolean, 0)
	z1 := NewZeroOLE[int32](Boolean, 1)
	A, _ := z0.Generate(8)
	B, _ := z1.Generate(8)
	for i := 0; i < 8; i++ {
		require.Equal(t, int32(0), A.At(i)^B.At(i))
	}
}

func TestDummyOLEBooleanRelation(t *testing.T) {
	seed := make([]byte, 32)
	d0 := NewDummyOLE[int32](Boolean, 0, seed, aesFactory)
	d1 := NewDummyOLE[int32](Boolean, 1, seed, aesFactory)

	A, C := d0.Generate(16)
	B, D := d1.Generate(16)

	for i := 0; i < 16; i++ {
		require.Equal(t, C.At(i)&D.At(i), A.At(i)^B.At(i), "index %d", i)
	}
}

func TestDummyOLEArithmeticRelation(t *testing.T) {
	seed := make([]byte, 32)
	d0 := NewDummyOLE[int32](Arithmetic, 0, seed, aesFactory)
	d1 := NewDummyOLE[int32](Arithmetic, 1, seed, aesFactory)

	A, C := d0.Generate(16)
	B, D := d1.Generate(16)

	for i := 0; i < 16; i++ {
		require.Equal(t, C.At(i)*D.At(i), A.At(i)+B.At(i), "index %d", i)
	}
}

func TestSilentOTBooleanRelation(t *testing.T) {
	seed := make([]byte, 32)
	src0 := NewSeededOTSource[int32](seed, aesFactory)
	src1 := NewSeededOTSource[int32](seed, aesFactory)
	ot0 := NewSilentOT[int32](0, src0)
	ot1 := NewSilentOT[int32](1, src1)

	A, C := ot0.Generate(9000) // fits in a single 1MB-equivalent block at int32 width
	B, D := ot1.Generate(9000)

	for i := 0; i < 9000; i += 500 {
		require.Equal(t, C.At(i)&D.At(i), A.At(i)^B.At(i), "index %d", i)
	}
}

func TestGilboaArithmeticRelation(t *testing.T) {
	seed := make([]byte, 32)
	src0 := NewSeededOTSource[int16](seed, aesFactory)
	src1 := NewSeededOTSource[int16](seed, aesFactory)
	g0 := NewGilboaOLE[int16](0, src0)
	g1 := NewGilboaOLE[int16](1, src1)

	A, C := g0.Generate(32)
	B, D := g1.Generate(32)

	for i := 0; i < 32; i++ {
		require.Equal(t, C.At(i)*D.At(i), A.At(i)+B.At(i), "index %d", i)
	}
}
