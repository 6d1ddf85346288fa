package prng

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAES256CTRDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	g1, err := NewAES256CTR(seed)
	require.NoError(t, err)
	g2, err := NewAES256CTR(seed)
	require.NoError(t, err)

	buf1 := make([]byte, 100)
	buf2 := make([]byte, 100)
	g1.FillBytes(buf1)
	g2.FillBytes(buf2)
	require.Equal(t, buf1, buf2)
}

func TestAES256CTRIncrementNonceChangesStream(t *testing.T) {
	seed := make([]byte, 32)
	g, err := NewAES256CTR(seed)
	require.NoError(t, err)

	buf1 := make([]byte, 32)
	g.FillBytes(buf1)

	g.IncrementNonce()
	buf2 := make([]byte, 32)
	g.FillBytes(buf2)

	require.False(t, bytes.Equal(buf1, buf2))
}

func TestAES256CTRRejectsBadSeedLength(t *testing.T) {
	_, err := NewAES256CTR(make([]byte, 16))
	require.Error(t, err)
}

func TestAES256CTRChunksLargeRequests(t *testing.T) {
	seed := make([]byte, 32)
	g, err := NewAES256CTR(seed)
	require.NoError(t, err)

	big := make([]byte, maxQueryBytes+1000)
	g.FillBytes(big)
	require.False(t, allZero(big))
}

func TestXChaCha20Deterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(2 * i)
	}
	g1, err := NewXChaCha20(seed)
	require.NoError(t, err)
	g2, err := NewXChaCha20(seed)
	require.NoError(t, err)

	buf1 := make([]byte, 64)
	buf2 := make([]byte, 64)
	g1.FillBytes(buf1)
	g2.FillBytes(buf2)
	require.Equal(t, buf1, buf2)
}

func TestDevURandomProducesNonRepeating(t *testing.T) {
	var d DevURandom
	a := make([]byte, 32)
	b := make([]byte, 32)
	d.FillBytes(a)
	d.FillBytes(b)
	require.False(t, bytes.Equal(a, b))
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
