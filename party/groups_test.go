package party

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalGroupsThreeParty(t *testing.T) {
	groups := CanonicalGroups(3)
	require.Len(t, groups, 4) // everyone + 3 subsets excluding one party each
	require.Equal(t, Group{0, 1, 2}, groups[0])
}

func TestCanonicalGroupsFourPartyHalves(t *testing.T) {
	groups := CanonicalGroups(4)
	require.Len(t, groups, 3) // everyone + 2 halves
	require.Equal(t, Group{0, 1, 2}, groups[1])
	require.Equal(t, Group{3}, groups[2])
}

func TestGroupsContaining(t *testing.T) {
	groups := CanonicalGroups(3)
	forRank1 := GroupsContaining(groups, 1)
	for _, g := range forRank1 {
		require.True(t, g.Contains(1))
	}
}

func TestGroupKeyOrderIndependent(t *testing.T) {
	a := Group{2, 0, 1}
	b := Group{0, 1, 2}
	require.Equal(t, a.Key(), b.Key())
}
