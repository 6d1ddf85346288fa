package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt128Arithmetic(t *testing.T) {
	a := Int128FromInt64(100)
	b := Int128FromInt64(37)

	require.Equal(t, Int128FromInt64(137), a.Add(b))
	require.Equal(t, Int128FromInt64(63), a.Sub(b))
	require.Equal(t, Int128FromInt64(-100), a.Neg())
	require.Equal(t, Int128FromInt64(3700), a.Mul(b))
	require.Equal(t, Int128FromInt64(2), a.Div(b))

	neg := Int128FromInt64(-100)
	require.Equal(t, Int128FromInt64(-2), neg.Div(b))
}

func TestInt128Bitwise(t *testing.T) {
	a := Int128FromInt64(0b1010)
	b := Int128FromInt64(0b0110)

	require.Equal(t, Int128FromInt64(0b0010), a.And(b))
	require.Equal(t, Int128FromInt64(0b1110), a.Or(b))
	require.Equal(t, Int128FromInt64(0b1100), a.Xor(b))
	require.Equal(t, Int128FromInt64(-1), Int128{}.Not())
}

func TestInt128Shifts(t *testing.T) {
	a := Int128FromInt64(1)
	require.Equal(t, Int128{Lo: 1 << 63, Hi: 0}, a.Shl(63))
	require.Equal(t, Int128{Lo: 0, Hi: 1}, a.Shl(64))

	neg := Int128FromInt64(-8)
	require.Equal(t, Int128FromInt64(-1), neg.Shr(3))
	require.Equal(t, Int128FromInt64(-4), neg.Shr(1))
}

func TestInt128Cmp(t *testing.T) {
	require.Equal(t, -1, Int128FromInt64(-5).Cmp(Int128FromInt64(5)))
	require.Equal(t, 1, Int128FromInt64(5).Cmp(Int128FromInt64(-5)))
	require.Equal(t, 0, Int128FromInt64(5).Cmp(Int128FromInt64(5)))
}

func TestInt128Bit(t *testing.T) {
	a := Int128FromInt64(0b101)
	require.Equal(t, uint64(1), a.Bit(0))
	require.Equal(t, uint64(0), a.Bit(1))
	require.Equal(t, uint64(1), a.Bit(2))
}

func TestInt128Wire(t *testing.T) {
	a := Int128{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	buf := make([]byte, 16)
	a.MarshalWire(buf)
	b := UnmarshalWireInt128(buf)
	require.True(t, a.Equal(&b))
}

func TestInt128DivByZeroPanics(t *testing.T) {
	require.Panics(t, func() {
		Int128FromInt64(1).Div(Int128{})
	})
}
