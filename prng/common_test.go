package prng

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// pipeExchanger is a test-only SeedExchanger connecting a fixed set of
// parties via per-ordered-pair channels, modelling what
// transport.Communicator provides the real seed-agreement setup.
type pipeExchanger struct {
	self  int
	mu    *sync.Mutex
	boxes map[[2]int]chan []byte
}

func newPipeNetwork(n int) []*pipeExchanger {
	mu := &sync.Mutex{}
	boxes := make(map[[2]int]chan []byte)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				boxes[[2]int{i, j}] = make(chan []byte, 1)
			}
		}
	}
	out := make([]*pipeExchanger, n)
	for i := 0; i < n; i++ {
		out[i] = &pipeExchanger{self: i, mu: mu, boxes: boxes}
	}
	return out
}

func (p *pipeExchanger) SendSeed(peerRank int, seed []byte) error {
	p.boxes[[2]int{p.self, peerRank}] <- append([]byte{}, seed...)
	return nil
}

func (p *pipeExchanger) RecvSeed(peerRank int) ([]byte, error) {
	return <-p.boxes[[2]int{peerRank, p.self}], nil
}

func TestCommonPRGManagerRelativeRankAgreement(t *testing.T) {
	const numParties = 3
	net := newPipeNetwork(numParties)
	managers := make([]*CommonPRGManager, numParties)
	for i := range managers {
		managers[i] = NewCommonPRGManager(i, numParties, 32, func(seed []byte) (DeterministicPRG, error) {
			return NewAES256CTR(seed)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < numParties; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, managers[i].SetupRelativeRank(1, net[i]))
			require.NoError(t, managers[i].SetupRelativeRank(-1, net[i]))
		}(i)
	}
	wg.Wait()

	buf0 := make([]byte, 16)
	buf1 := make([]byte, 16)
	managers[0].RelativeRank(1).FillBytes(buf0)
	managers[1].RelativeRank(-1).FillBytes(buf1)
	require.Equal(t, buf0, buf1)
}

func TestCommonPRGManagerGroupAgreement(t *testing.T) {
	const numParties = 4
	net := newPipeNetwork(numParties)
	managers := make([]*CommonPRGManager, numParties)
	for i := range managers {
		managers[i] = NewCommonPRGManager(i, numParties, 32, func(seed []byte) (DeterministicPRG, error) {
			return NewAES256CTR(seed)
		})
	}

	group := []int{0, 2, 3}
	var wg sync.WaitGroup
	for _, r := range group {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			require.NoError(t, managers[r].SetupGroup(group, net[r]))
		}(r)
	}
	wg.Wait()

	bufs := make([][]byte, len(group))
	for i, r := range group {
		bufs[i] = make([]byte, 16)
		managers[r].Group(group).FillBytes(bufs[i])
	}
	for i := 1; i < len(bufs); i++ {
		require.Equal(t, bufs[0], bufs[i])
	}
}

func TestCommonPRGManagerMissingSetupPanics(t *testing.T) {
	m := NewCommonPRGManager(0, 3, 32, func(seed []byte) (DeterministicPRG, error) {
		return NewAES256CTR(seed)
	})
	require.Panics(t, func() { m.RelativeRank(1) })
}
