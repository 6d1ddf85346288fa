package runtime

import (
	"fmt"

	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/utils/concurrency"
	"github.com/Pro7ech/secmpc/worker"
)

// Runtime drives a fixed pool of workers through parallel dispatch of
// protocol operations, per spec.md §4.9/§5. It is a single-
// initialization object for the lifetime of one party's process.
type Runtime struct {
	Config  Config
	Workers []*worker.Worker

	groups              []party.Group
	partyShareMappings  *party.ShareToPartyMap
	terminated          bool
}

// New builds a Runtime over an already-constructed worker pool, one
// worker per configured thread. groups/shareMap are fixed for the
// runtime's lifetime, returned verbatim by GetGroups/
// GetPartyShareMappings.
func New(cfg Config, workers []*worker.Worker, groups []party.Group, shareMap *party.ShareToPartyMap) *Runtime {
	return &Runtime{
		Config:             cfg,
		Workers:            workers,
		groups:             groups,
		partyShareMappings: shareMap,
	}
}

// GetGroups returns the active protocol's reshare/randomness groups.
func (rt *Runtime) GetGroups() []party.Group { return rt.groups }

// GetPartyShareMappings returns the party→shares table.
func (rt *Runtime) GetPartyShareMappings() *party.ShareToPartyMap { return rt.partyShareMappings }

// pool builds a fresh resource manager over the worker set for one
// dispatch; a new one per call keeps Run/Wait's internal error channel
// scoped to a single operation instead of accumulating across calls.
func (rt *Runtime) pool() *concurrency.ResourceManager[*worker.Worker] {
	return concurrency.NewResourceManager(rt.Workers)
}

// dispatch partitions total elements into per-thread ranges per the
// runtime's configured batch size and runs task once per range,
// checking out one worker per range from the pool and blocking until
// every range has completed — the Go realization of §4.8's "workers
// arrive at the barrier" contract.
func (rt *Runtime) dispatch(total int, task func(w *worker.Worker, rng ThreadRange) error) error {
	if rt.terminated {
		return fmt.Errorf("runtime: dispatch after teardown")
	}
	threads := len(rt.Workers)
	if threads == 0 {
		return fmt.Errorf("runtime: no workers configured")
	}
	bs := NormalizeBatchSize(rt.Config.BatchSize, total, threads)
	ranges := GetThreadBatchBoundaries(total, bs, threads)

	p := rt.pool()
	for _, rng := range ranges {
		r := rng
		p.Run(func(w *worker.Worker) error { return task(w, r) })
	}
	return p.Wait()
}

// dispatchSingleBatch runs task once per worker with no sub-chunking,
// for operations like reserve_triples whose fixed per-call overhead
// makes further splitting counterproductive.
func (rt *Runtime) dispatchSingleBatch(task func(w *worker.Worker) error) error {
	if rt.terminated {
		return fmt.Errorf("runtime: dispatch after teardown")
	}
	p := rt.pool()
	for range rt.Workers {
		p.Run(task)
	}
	return p.Wait()
}

// MaliciousCheck runs malicious_check on every worker's protocol object
// (4PC variants only meaningfully check anything; other variants return
// true trivially) and reports the conjunction.
func (rt *Runtime) MaliciousCheck() (bool, error) {
	ok := true
	for _, w := range rt.Workers {
		pass, err := w.MaliciousCheck()
		if err != nil {
			return false, err
		}
		if !pass {
			ok = false
		}
	}
	return ok, nil
}

// AggregateBytesSent sums every worker's communicator's cumulative
// egress byte count. Callers sequence this after a barrier so every
// worker's counter reflects the operations dispatched so far.
func (rt *Runtime) AggregateBytesSent() uint64 {
	var total uint64
	for _, w := range rt.Workers {
		total += w.BytesSent()
	}
	return total
}

// Teardown marks the runtime terminated; further dispatch calls fail
// fast rather than silently hanging on a drained worker pool.
func (rt *Runtime) Teardown() {
	rt.terminated = true
}
