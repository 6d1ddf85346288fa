// Package party implements the runtime's party identity, replication
// layout and group topology: how many parties P are in the computation,
// which rank this process holds, how many replicated share-copies R each
// party carries, which P shares each party holds, and which subsets of
// parties ("groups") a correlation generator or common PRG is keyed
// against.
package party

import "fmt"

// ReplicationFactor returns R for the given party count P, per spec.md
// §4: P=1 and P=2 both carry a single share copy (no replication),
// honest-majority 3PC replicates every share twice, and 4PC (both the
// custom and Dalskov malicious-secure variants) replicates three ways.
func ReplicationFactor(numParties int) int {
	switch numParties {
	case 1, 2:
		return 1
	case 3:
		return 2
	case 4:
		return 3
	default:
		panic(fmt.Errorf("party: unsupported party count %d", numParties))
	}
}

// Identity describes one party's position in the computation: its rank,
// the total party count, and the derived replication factor.
type Identity struct {
	Rank       int
	NumParties int
	R          int
}

// NewIdentity validates rank/numParties and derives R.
func NewIdentity(rank, numParties int) Identity {
	if numParties < 1 || numParties > 4 {
		panic(fmt.Errorf("party: party count must be in [1,4], got %d", numParties))
	}
	if rank < 0 || rank >= numParties {
		panic(fmt.Errorf("party: rank %d out of range [0,%d)", rank, numParties))
	}
	return Identity{Rank: rank, NumParties: numParties, R: ReplicationFactor(numParties)}
}

// Shares returns the P-indexed share identifiers this party holds:
// (rank, rank+1, ..., rank+R-1) mod P.
func (id Identity) Shares() []int {
	shares := make([]int, id.R)
	for i := range shares {
		shares[i] = mod(id.Rank+i, id.NumParties)
	}
	return shares
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// ShareToPartyMap caches, for every share identifier s in [0,P), the
// sorted list of party ranks holding it.
type ShareToPartyMap struct {
	byShare [][]int
}

// BuildShareToPartyMap derives the share→party table for a P-party,
// R-replicated layout: share s is held by every party p whose Shares()
// set includes s.
func BuildShareToPartyMap(numParties, r int) *ShareToPartyMap {
	byShare := make([][]int, numParties)
	for p := 0; p < numParties; p++ {
		id := Identity{Rank: p, NumParties: numParties, R: r}
		for _, s := range id.Shares() {
			byShare[s] = append(byShare[s], p)
		}
	}
	return &ShareToPartyMap{byShare: byShare}
}

// PartiesHolding returns the sorted ranks of every party holding share s.
func (m *ShareToPartyMap) PartiesHolding(s int) []int {
	return append([]int{}, m.byShare[s]...)
}

// CanonicalHolder returns the lowest-ranked party holding share s — the
// party that protocol primitives treat as authoritative for that share
// (e.g. the sender in a reshare round).
func (m *ShareToPartyMap) CanonicalHolder(s int) int {
	holders := m.byShare[s]
	lowest := holders[0]
	for _, p := range holders[1:] {
		if p < lowest {
			lowest = p
		}
	}
	return lowest
}
