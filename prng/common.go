package prng

import "fmt"

// SeedExchanger is the minimal subset of transport.Communicator the
// seed-agreement setup needs: sending a seed to a peer, or receiving one
// from a peer. The full Communicator contract lives in package transport;
// this narrow interface keeps prng free of a dependency on it.
type SeedExchanger interface {
	SendSeed(peerRank int, seed []byte) error
	RecvSeed(peerRank int) ([]byte, error)
}

// GeneratorFactory builds a fresh DeterministicPRG instance from a seed,
// letting CommonPRGManager stay agnostic to which concrete algorithm
// (AES-256-CTR, XChaCha20, ...) backs every common stream.
type GeneratorFactory func(seed []byte) (DeterministicPRG, error)

// CommonPRG wraps a DeterministicPRG shared identically by two or more
// parties, tagged with the rank of the party that owns this local copy.
type CommonPRG struct {
	rank int
	gen  DeterministicPRG
}

// NewCommonPRG wraps an already-seeded generator for the given party
// rank.
func NewCommonPRG(rank int, gen DeterministicPRG) *CommonPRG {
	return &CommonPRG{rank: rank, gen: gen}
}

// Rank returns the owning party's rank.
func (c *CommonPRG) Rank() int { return c.rank }

// FillBytes draws the next bytes of the shared stream.
func (c *CommonPRG) FillBytes(dest []byte) { c.gen.FillBytes(dest) }

// SetSeed re-keys the underlying shared generator. Satisfies
// DeterministicPRG so a CommonPRG can be passed anywhere a plain seeded
// generator is expected (Fisher-Yates shuffling, for one).
func (c *CommonPRG) SetSeed(seed []byte) error { return c.gen.SetSeed(seed) }

// IncrementNonce forks a fresh independent sub-stream of the shared
// generator.
func (c *CommonPRG) IncrementNonce() { c.gen.IncrementNonce() }

// groupKey canonicalizes a set of party ranks into a stable map key: a
// sorted, comma-joined string of ranks.
type groupKey string

func makeGroupKey(group []int) groupKey {
	sorted := append([]int{}, group...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	s := ""
	for i, r := range sorted {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", r)
	}
	return groupKey(s)
}

// CommonPRGManager holds every common PRG a worker needs: one per
// relative rank (-P+1..P-1 mod P, i.e. one per other party, indexed by
// signed offset from the local rank) and one per named group of party
// ranks. Both collections are populated once at setup by a seed-agreement
// protocol: in each relative-rank pair or group, the lowest-ranked member
// samples a fresh key and ships it to every other member over the
// SeedExchanger, and every member installs byte-identical generator
// state so that independently-invoked draws produce identical streams.
type CommonPRGManager struct {
	selfRank   int
	numParties int
	seedLen    int
	factory    GeneratorFactory

	byRelativeRank map[int]*CommonPRG
	byGroup        map[groupKey]*CommonPRG
}

// NewCommonPRGManager constructs an empty manager for a party of the
// given rank in a P-party computation. seedLen is the key length the
// chosen factory's algorithm expects (32 for both AES-256-CTR and
// XChaCha20).
func NewCommonPRGManager(selfRank, numParties, seedLen int, factory GeneratorFactory) *CommonPRGManager {
	return &CommonPRGManager{
		selfRank:       selfRank,
		numParties:     numParties,
		seedLen:        seedLen,
		factory:        factory,
		byRelativeRank: make(map[int]*CommonPRG),
		byGroup:        make(map[groupKey]*CommonPRG),
	}
}

// relativeRankToPeer maps a relative offset (-P+1..P-1 mod P, excluding 0)
// back to the absolute rank of the peer it designates.
func (m *CommonPRGManager) relativeRankToPeer(relative int) int {
	return mod(m.selfRank+relative, m.numParties)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// SetupRelativeRank agrees a common PRG with the peer at the given
// relative rank offset, via the supplied SeedExchanger. The lower-ranked
// party of the pair samples the seed.
func (m *CommonPRGManager) SetupRelativeRank(relative int, x SeedExchanger) error {
	peer := m.relativeRankToPeer(relative)
	seed, err := agreeSeed(m.selfRank, peer, m.seedLen, x)
	if err != nil {
		return fmt.Errorf("prng: setting up relative-rank %d common PRG: %w", relative, err)
	}
	gen, err := m.factory(seed)
	if err != nil {
		return fmt.Errorf("prng: %w", err)
	}
	m.byRelativeRank[relative] = NewCommonPRG(m.selfRank, gen)
	return nil
}

// SetupGroup agrees a common PRG shared by every rank in group (which
// must include the local party), keyed by the group's canonical member
// set. The lowest-ranked member of the group samples the seed and ships
// it to every other member in ascending rank order.
func (m *CommonPRGManager) SetupGroup(group []int, x SeedExchanger) error {
	lowest := group[0]
	for _, r := range group {
		if r < lowest {
			lowest = r
		}
	}

	var seed []byte
	if m.selfRank == lowest {
		seed = make([]byte, m.seedLen)
		DevURandom{}.FillBytes(seed)
		for _, r := range group {
			if r == m.selfRank {
				continue
			}
			if err := x.SendSeed(r, seed); err != nil {
				return fmt.Errorf("prng: group seed-agreement send to %d: %w", r, err)
			}
		}
	} else {
		var err error
		seed, err = x.RecvSeed(lowest)
		if err != nil {
			return fmt.Errorf("prng: group seed-agreement recv from %d: %w", lowest, err)
		}
	}

	gen, err := m.factory(seed)
	if err != nil {
		return fmt.Errorf("prng: %w", err)
	}
	m.byGroup[makeGroupKey(group)] = NewCommonPRG(m.selfRank, gen)
	return nil
}

// RelativeRank returns the common PRG shared with the peer at the given
// relative offset. Panics if SetupRelativeRank was never called for it.
func (m *CommonPRGManager) RelativeRank(relative int) *CommonPRG {
	g, ok := m.byRelativeRank[relative]
	if !ok {
		panic(fmt.Errorf("prng: no common PRG set up for relative rank %d", relative))
	}
	return g
}

// Group returns the common PRG shared by the given group of party ranks.
// Panics if SetupGroup was never called for this exact member set.
func (m *CommonPRGManager) Group(group []int) *CommonPRG {
	g, ok := m.byGroup[makeGroupKey(group)]
	if !ok {
		panic(fmt.Errorf("prng: no common PRG set up for group %v", group))
	}
	return g
}

// agreeSeed runs the two-party seed-agreement sub-protocol: the
// lower-ranked party of (self,peer) samples a fresh seed and ships it to
// the other, who waits to receive it.
func agreeSeed(self, peer, seedLen int, x SeedExchanger) ([]byte, error) {
	if self < peer {
		seed := make([]byte, seedLen)
		DevURandom{}.FillBytes(seed)
		if err := x.SendSeed(peer, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	return x.RecvSeed(peer)
}
