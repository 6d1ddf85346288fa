// Package worker implements the runtime's per-thread unit of §4.8: one
// communicator, one set of five protocol objects (one per integer
// width), executing tasks the runtime's parallel dispatch hands it.
//
// The original design's single thread plus task queue plus mutex plus
// condition variable plus arrival barrier is realized here the Go way:
// a Worker is a plain, non-thread-safe bundle of state checked out of a
// utils/concurrency.ResourceManager[*Worker] pool by the runtime for
// the duration of exactly one task, and returned when the task
// completes. The ResourceManager's WaitGroup plays the role of the
// arrival barrier — the runtime blocks on Wait() until every
// dispatched task (one per worker, per operation) has returned, the
// same "main thread resumes once every worker arrives" contract §4.8
// describes, without hand-rolling a condition variable.
package worker

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/protocol"
	"github.com/Pro7ech/secmpc/transport"
	"github.com/Pro7ech/secmpc/vector"
	"github.com/Pro7ech/secmpc/zero"
)

// OLESources bundles the arithmetic and boolean OLE sources, plus the
// dishonest-majority permutation generator, one width needs for
// Beaver2PC; every other variant ignores them.
type OLESources[T vector.Element] struct {
	Arith correlation.OLE[T]
	Bool  correlation.OLE[T]
	Perm  correlation.PermutationGenerator[T]
}

// Widths bundles the per-width OLE sources a Worker is constructed
// with, one pair per integer width the runtime supports.
type Widths struct {
	I8   OLESources[int8]
	I16  OLESources[int16]
	I32  OLESources[int32]
	I64  OLESources[int64]
	I128 OLESources[vector.Int128]
}

// Worker holds one thread's share of the computation: its own
// communicator and five protocol objects, one per integer width. It is
// not safe for concurrent use — the runtime's resource pool hands out
// at most one task at a time per Worker.
type Worker struct {
	ID   party.Identity
	Comm transport.Communicator

	I8   protocol.Protocol[int8]
	I16  protocol.Protocol[int16]
	I32  protocol.Protocol[int32]
	I64  protocol.Protocol[int64]
	I128 protocol.Protocol[vector.Int128]
}

// New builds one Worker for the given identity, communicator, variant
// and per-width correlated-randomness sources. zeroGen/prgs are shared
// generator state threaded into every width's Base; per §4.8/§5, the
// group-keyed common PRGs are expected to already be independently set
// up (duplicated) for this worker by the caller, since PRG state is
// worker-local and not shared across workers.
func New(id party.Identity, comm transport.Communicator, variant protocol.Variant, zeroGen *zero.Generator, prgs *prng.CommonPRGManager, w Widths) (*Worker, error) {
	p8, err := protocol.New[int8](variant, protocol.NewBase[int8](id, comm, zeroGen, prgs), w.I8.Arith, w.I8.Bool, w.I8.Perm)
	if err != nil {
		return nil, fmt.Errorf("worker: building int8 protocol: %w", err)
	}
	p16, err := protocol.New[int16](variant, protocol.NewBase[int16](id, comm, zeroGen, prgs), w.I16.Arith, w.I16.Bool, w.I16.Perm)
	if err != nil {
		return nil, fmt.Errorf("worker: building int16 protocol: %w", err)
	}
	p32, err := protocol.New[int32](variant, protocol.NewBase[int32](id, comm, zeroGen, prgs), w.I32.Arith, w.I32.Bool, w.I32.Perm)
	if err != nil {
		return nil, fmt.Errorf("worker: building int32 protocol: %w", err)
	}
	p64, err := protocol.New[int64](variant, protocol.NewBase[int64](id, comm, zeroGen, prgs), w.I64.Arith, w.I64.Bool, w.I64.Perm)
	if err != nil {
		return nil, fmt.Errorf("worker: building int64 protocol: %w", err)
	}
	p128, err := protocol.New[vector.Int128](variant, protocol.NewBase[vector.Int128](id, comm, zeroGen, prgs), w.I128.Arith, w.I128.Bool, w.I128.Perm)
	if err != nil {
		return nil, fmt.Errorf("worker: building int128 protocol: %w", err)
	}

	return &Worker{
		ID:   id,
		Comm: comm,
		I8:   p8,
		I16:  p16,
		I32:  p32,
		I64:  p64,
		I128: p128,
	}, nil
}

// MaliciousCheck runs every width's protocol-level consistency check
// and reports the conjunction; a mismatch in any single width aborts
// the whole operation, since all five share the same underlying
// session transcript.
func (w *Worker) MaliciousCheck() (bool, error) {
	checks := []func() (bool, error){
		w.I8.MaliciousCheck,
		w.I16.MaliciousCheck,
		w.I32.MaliciousCheck,
		w.I64.MaliciousCheck,
		w.I128.MaliciousCheck,
	}
	for _, check := range checks {
		ok, err := check()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// BytesSent reports this worker's communicator's cumulative egress byte
// count.
func (w *Worker) BytesSent() uint64 {
	return w.Comm.BytesSent()
}
