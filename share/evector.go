// Package share implements EVector[T], the per-party container for a
// replicated secret share: R parallel vector.Vector[T] copies, one per
// replication slot the party holds, the way spec.md §4.2 describes it and
// the way utils/structs.Vector composes generic slices in
// Pro7ech-lattigo. R is a runtime replication factor, not a type
// parameter: Go's generics have no const-generic integers, so it is
// simply len(copies).
package share

import (
	"fmt"

	"github.com/Pro7ech/secmpc/vector"
)

// EVector holds R vector.Vector[T]s of identical length and precision,
// one per replicated share copy a party holds for a given logical value.
// Every elementwise operator applies pairwise across the R copies; opening
// a share into a plaintext value is a protocol-layer concern, not defined
// here.
type EVector[T vector.Element] struct {
	copies []vector.Vector[T]
}

// New allocates an EVector holding r fresh plain vectors of length n.
func New[T vector.Element](r, n int) EVector[T] {
	copies := make([]vector.Vector[T], r)
	for i := range copies {
		copies[i] = vector.New[T](n)
	}
	return EVector[T]{copies: copies}
}

// FromVectors wraps the given vectors as an EVector's replication slots.
// All must share the same size and precision.
func FromVectors[T vector.Element](vs ...vector.Vector[T]) EVector[T] {
	if len(vs) == 0 {
		panic(fmt.Errorf("share: EVector requires at least one replication slot"))
	}
	n, p := vs[0].Size(), vs[0].Precision()
	for _, v := range vs[1:] {
		if v.Size() != n {
			panic(fmt.Errorf("share: replication slot size mismatch %d != %d", v.Size(), n))
		}
		if v.Precision() != p {
			panic(fmt.Errorf("share: replication slot precision mismatch %d != %d", v.Precision(), p))
		}
	}
	return EVector[T]{copies: append([]vector.Vector[T]{}, vs...)}
}

// R returns the replication factor (number of share copies held).
func (e EVector[T]) R() int { return len(e.copies) }

// Size returns the shared length of every replication slot.
func (e EVector[T]) Size() int {
	if len(e.copies) == 0 {
		return 0
	}
	return e.copies[0].Size()
}

// Precision returns the shared fixed-point precision of every replication
// slot.
func (e EVector[T]) Precision() int {
	if len(e.copies) == 0 {
		return 0
	}
	return e.copies[0].Precision()
}

// At returns the r-th replication slot's vector.
func (e EVector[T]) At(r int) vector.Vector[T] { return e.copies[r] }

// Set replaces the r-th replication slot's vector.
func (e EVector[T]) Set(r int, v vector.Vector[T]) { e.copies[r] = v }

// HasMapping is the logical OR of has_mapping() across all replication
// slots.
func (e EVector[T]) HasMapping() bool {
	for _, v := range e.copies {
		if v.HasMapping() {
			return true
		}
	}
	return false
}

// MaterializeInplace forces every replication slot to a plain vector,
// replacing each with its materialized copy.
func (e EVector[T]) MaterializeInplace() {
	for i, v := range e.copies {
		if v.HasMapping() {
			e.copies[i] = v.Materialize()
		}
	}
}

func (e EVector[T]) assertCompatible(other EVector[T]) {
	if e.R() != other.R() {
		panic(fmt.Errorf("share: replication factor mismatch %d != %d", e.R(), other.R()))
	}
}

func (e EVector[T]) elementwise(other EVector[T], f func(a, b vector.Vector[T]) vector.Vector[T]) EVector[T] {
	e.assertCompatible(other)
	out := make([]vector.Vector[T], e.R())
	for i := range out {
		out[i] = f(e.copies[i], other.copies[i])
	}
	return EVector[T]{copies: out}
}

// Add returns the pairwise sum across replication slots.
func (e EVector[T]) Add(other EVector[T]) EVector[T] {
	return e.elementwise(other, vector.Vector[T].Add)
}

// Sub returns the pairwise difference across replication slots.
func (e EVector[T]) Sub(other EVector[T]) EVector[T] {
	return e.elementwise(other, vector.Vector[T].Sub)
}

// Xor returns the pairwise XOR across replication slots.
func (e EVector[T]) Xor(other EVector[T]) EVector[T] {
	return e.elementwise(other, vector.Vector[T].Xor)
}

// And returns the pairwise AND across replication slots.
func (e EVector[T]) And(other EVector[T]) EVector[T] {
	return e.elementwise(other, vector.Vector[T].And)
}

// Or returns the pairwise OR across replication slots.
func (e EVector[T]) Or(other EVector[T]) EVector[T] {
	return e.elementwise(other, vector.Vector[T].Or)
}

// Neg returns the elementwise negation of every replication slot.
func (e EVector[T]) Neg() EVector[T] {
	out := make([]vector.Vector[T], e.R())
	for i := range out {
		out[i] = e.copies[i].Neg()
	}
	return EVector[T]{copies: out}
}

// Not returns the elementwise bitwise complement of every replication
// slot.
func (e EVector[T]) Not() EVector[T] {
	out := make([]vector.Vector[T], e.R())
	for i := range out {
		out[i] = e.copies[i].Not()
	}
	return EVector[T]{copies: out}
}

// SetBatchWindow narrows every replication slot's batch window to
// [start,end), returning a new EVector sharing storage with the receiver.
func (e EVector[T]) SetBatchWindow(start, end int) EVector[T] {
	out := make([]vector.Vector[T], e.R())
	for i := range out {
		out[i] = e.copies[i].SetBatchWindow(start, end)
	}
	return EVector[T]{copies: out}
}
