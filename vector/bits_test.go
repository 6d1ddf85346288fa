package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtendLSB(t *testing.T) {
	a := FromSlice([]int32{0b01, 0b00, 0b11})
	out := a.ExtendLSB().BatchSpan()
	require.Equal(t, int32(-1), out[0])
	require.Equal(t, int32(0), out[1])
	require.Equal(t, int32(-1), out[2])
}

func TestExtractValid(t *testing.T) {
	a := FromSlice([]int32{10, 20, 30, 40})
	mask := FromSlice([]int32{1, 0, 1, 0})
	out := a.ExtractValid(mask).BatchSpan()
	require.Equal(t, []int32{10, 30}, out)
}

func TestChunkedSum(t *testing.T) {
	a := FromSlice([]int32{1, 2, 3, 4, 5, 6})
	out := a.ChunkedSum(2).BatchSpan()
	require.Equal(t, []int32{3, 7, 11}, out)
}

func TestChunkedSumIndivisiblePanics(t *testing.T) {
	a := FromSlice([]int32{1, 2, 3})
	require.Panics(t, func() { a.ChunkedSum(2) })
}

func TestSimpleBitCompressDecompressRoundTrip(t *testing.T) {
	a := FromSlice([]int32{0b1, 0b0, 0b1, 0b1, 0b0, 0b0})
	compressed := a.SimpleBitCompress(0, 1, 3)
	require.Equal(t, 2, compressed.Size())

	decompressed := compressed.SimpleBitDecompress(0, 1, 3)
	for i := 0; i < a.Size(); i++ {
		require.Equal(t, bitAt(a.At(i), 0), bitAt(decompressed.At(i), 0))
	}
}

func TestSimpleBitCompressSingleRoundTrip(t *testing.T) {
	a := FromSlice(make([]int32, 40))
	for i := range a.BatchSpan() {
		if i%3 == 0 {
			a.Set(i, 1)
		}
	}
	compressed := a.SimpleBitCompressSingle(0)
	decompressed := compressed.SimpleBitDecompressSingle(0, a.Size())
	for i := 0; i < a.Size(); i++ {
		require.Equal(t, bitAt(a.At(i), 0), bitAt(decompressed.At(i), 0))
	}
}

func TestBitLevelShift(t *testing.T) {
	a := FromSlice([]int32{0b10}) // bit 1 set within a 2-bit chunk (level=1)
	out := a.BitLevelShift(1).BatchSpan()
	// within the low 2-bit chunk, low half (bit 0) takes the value of bit 1 (=1)
	require.Equal(t, uint64(1), bitAt(out[0], 0))
}
