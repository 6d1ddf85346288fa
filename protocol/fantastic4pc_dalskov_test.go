package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaliciousCheckEnvelopeRoundTrip(t *testing.T) {
	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i * 7)
	}

	v, err := encodeMaliciousCheckEnvelope(digest)
	require.NoError(t, err)

	got, err := decodeMaliciousCheckEnvelope(v)
	require.NoError(t, err)
	require.Equal(t, digest, got)
}

func TestMaliciousCheckEnvelopeDifferentDigestsDisagree(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)
	b[0] = 1

	va, err := encodeMaliciousCheckEnvelope(a)
	require.NoError(t, err)
	vb, err := encodeMaliciousCheckEnvelope(b)
	require.NoError(t, err)

	// Both sides encode the same fixed-shape envelope, so the wire size
	// agreed on by MaliciousCheck (mine.Size()) is identical regardless
	// of digest content.
	require.Equal(t, va.Size(), vb.Size())

	gotA, err := decodeMaliciousCheckEnvelope(va)
	require.NoError(t, err)
	gotB, err := decodeMaliciousCheckEnvelope(vb)
	require.NoError(t, err)
	require.NotEqual(t, gotA, gotB)
}
