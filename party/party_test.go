package party

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplicationFactor(t *testing.T) {
	require.Equal(t, 1, ReplicationFactor(1))
	require.Equal(t, 1, ReplicationFactor(2))
	require.Equal(t, 2, ReplicationFactor(3))
	require.Equal(t, 3, ReplicationFactor(4))
	require.Panics(t, func() { ReplicationFactor(5) })
}

func TestIdentityShares(t *testing.T) {
	id := NewIdentity(2, 4)
	require.Equal(t, []int{2, 3, 0}, id.Shares())
}

func TestNewIdentityValidation(t *testing.T) {
	require.Panics(t, func() { NewIdentity(0, 0) })
	require.Panics(t, func() { NewIdentity(4, 4) })
}

func TestShareToPartyMap(t *testing.T) {
	m := BuildShareToPartyMap(4, 3)
	holders := m.PartiesHolding(0)
	require.ElementsMatch(t, []int{0, 2, 3}, holders)
}

func TestCanonicalHolder(t *testing.T) {
	m := BuildShareToPartyMap(3, 2)
	for s := 0; s < 3; s++ {
		h := m.CanonicalHolder(s)
		require.Contains(t, m.PartiesHolding(s), h)
	}
}
