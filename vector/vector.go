// Package vector implements the runtime's typed share container: a
// shared backing store plus a composable view descriptor, the
// way utils/structs.Vector backs the rest of this module's generic
// containers. Vector[T] never copies storage when re-indexed; only the
// arithmetic/boolean/comparison operators and the bit-compression helpers
// materialize a new plain vector.
package vector

import "fmt"

// Element is the set of integer widths the runtime moves share data in.
type Element interface {
	int8 | int16 | int32 | int64 | Int128
}

// storage is the backing array shared by every view
// derived from a given Vector. Multiple Vectors may point at the same
// storage; none of them owns it exclusively.
type storage[T Element] struct {
	data []T
}

// Vector is a logical ordered sequence of T, backed by a shared storage
// and a view descriptor that translates logical indices into storage
// indices. A batch window further narrows the active range without
// rebuilding the view, so that a Runtime can hand each worker a cheap,
// non-copying slice of a larger Vector.
type Vector[T Element] struct {
	store      *storage[T]
	v          view
	batchStart int
	batchEnd   int // exclusive; -1 means "unset", i.e. full view size
	precision  int
}

// New allocates a fresh plain Vector of length n, all elements zero.
func New[T Element](n int) Vector[T] {
	return Vector[T]{
		store:    &storage[T]{data: make([]T, n)},
		v:        plainView{n: n},
		batchEnd: -1,
	}
}

// FromSlice wraps an existing slice as a plain Vector without copying it.
func FromSlice[T Element](data []T) Vector[T] {
	return Vector[T]{
		store:    &storage[T]{data: data},
		v:        plainView{n: len(data)},
		batchEnd: -1,
	}
}

// Fill returns a plain Vector of length n with every element set to val.
func Fill[T Element](n int, val T) Vector[T] {
	data := make([]T, n)
	for i := range data {
		data[i] = val
	}
	return FromSlice(data)
}

// WithPrecision returns a copy of the receiver's descriptor carrying the
// given fixed-point precision (bits). Storage and view are shared, not
// copied.
func (vec Vector[T]) WithPrecision(p int) Vector[T] {
	vec.precision = p
	return vec
}

// Precision returns the vector's fixed-point fractional-bit count.
func (vec Vector[T]) Precision() int { return vec.precision }

// viewSize is the full size of the view, ignoring any batch window.
func (vec Vector[T]) viewSize() int {
	return vec.v.size()
}

// Size returns the length of the active batch window (the whole view if
// no window has been set).
func (vec Vector[T]) Size() int {
	if vec.batchEnd < 0 {
		return vec.viewSize()
	}
	return vec.batchEnd - vec.batchStart
}

// TotalSize returns the length of the underlying view, ignoring any batch
// window — the size the vector would report before SetBatchWindow.
func (vec Vector[T]) TotalSize() int {
	return vec.viewSize()
}

// HasMapping reports whether the vector's view is anything other than a
// contiguous plain window. Communicators refuse to send non-plain views.
func (vec Vector[T]) HasMapping() bool {
	return !vec.v.isPlain()
}

// logicalIndex translates a batch-relative index into the vector's view
// index space.
func (vec Vector[T]) logicalIndex(i int) int {
	if vec.batchEnd >= 0 {
		i += vec.batchStart
	}
	return i
}

func (vec Vector[T]) checkBounds(i int) {
	if i < 0 || i >= vec.Size() {
		panic(fmt.Errorf("vector: index %d out of range [0,%d)", i, vec.Size()))
	}
}

// At returns the element at logical index i within the active batch
// window.
func (vec Vector[T]) At(i int) T {
	vec.checkBounds(i)
	return vec.store.data[vec.v.index(vec.logicalIndex(i))]
}

// Set writes val at logical index i within the active batch window.
func (vec Vector[T]) Set(i int, val T) {
	vec.checkBounds(i)
	vec.store.data[vec.v.index(vec.logicalIndex(i))] = val
}

// SetBatchWindow narrows the vector's active [start,end) range without
// rebuilding the view descriptor. Size() and iteration thereafter observe
// only the window. Passing end<0 clears the window.
func (vec Vector[T]) SetBatchWindow(start, end int) Vector[T] {
	if end < 0 {
		vec.batchStart, vec.batchEnd = 0, -1
		return vec
	}
	if start < 0 || end < start || end > vec.viewSize() {
		panic(fmt.Errorf("vector: batch window [%d,%d) outside view of length %d", start, end, vec.viewSize()))
	}
	vec.batchStart, vec.batchEnd = start, end
	return vec
}

// BatchSpan returns a contiguous slice over the active batch window. Only
// valid when the view is plain; panics otherwise, per the "view must be
// plain" precondition enforced throughout the protocol layer.
func (vec Vector[T]) BatchSpan() []T {
	if !vec.v.isPlain() {
		panic(newPlainViewViolation())
	}
	start := vec.batchStart
	end := vec.batchStart + vec.Size()
	if vec.batchEnd < 0 {
		start, end = 0, vec.viewSize()
	}
	return vec.store.data[start:end]
}

func (vec Vector[T]) rewrap(v view) Vector[T] {
	return Vector[T]{store: vec.store, v: v, batchEnd: -1, precision: vec.precision}
}

// viewOverWindow builds the view this vector's current batch window
// addresses, so that derived views (subset/alternating/...) compose
// against the currently visible elements rather than the full backing
// view.
func (vec Vector[T]) viewOverWindow() view {
	if vec.batchEnd < 0 {
		return vec.v
	}
	return newSimpleSubsetView(vec.v, vec.batchStart, 1, vec.batchEnd)
}

// SimpleSubsetReference returns a new Vector selecting indices
// start, start+step, ..., strictly before end of the receiver.
func (vec Vector[T]) SimpleSubsetReference(start, step, end int) Vector[T] {
	return vec.rewrap(newSimpleSubsetView(vec.viewOverWindow(), start, step, end))
}

// AlternatingSubsetReference groups the receiver into blocks of
// (included+excluded) and keeps only the first `included` of each block.
func (vec Vector[T]) AlternatingSubsetReference(included, excluded int) Vector[T] {
	return vec.rewrap(newAlternatingView(vec.viewOverWindow(), included, excluded, false))
}

// AlternatingSubsetReferenceReversed is the reversed form of
// AlternatingSubsetReference: within each kept block, element order is
// reversed.
func (vec Vector[T]) AlternatingSubsetReferenceReversed(included, excluded int) Vector[T] {
	return vec.rewrap(newAlternatingView(vec.viewOverWindow(), included, excluded, true))
}

// RepeatedSubsetReference repeats each element of the receiver k times in
// place.
func (vec Vector[T]) RepeatedSubsetReference(k int) Vector[T] {
	return vec.rewrap(repeatedView{inner: vec.viewOverWindow(), k: k})
}

// CyclicSubsetReference repeats the whole receiver sequence k times.
func (vec Vector[T]) CyclicSubsetReference(k int) Vector[T] {
	return vec.rewrap(cyclicView{inner: vec.viewOverWindow(), k: k})
}

// DirectedSubsetReference walks the receiver forwards (+1) or backwards
// (-1).
func (vec Vector[T]) DirectedSubsetReference(direction int) Vector[T] {
	return vec.rewrap(newDirectedView(vec.viewOverWindow(), direction))
}

// ReversedReference walks the receiver back to front.
func (vec Vector[T]) ReversedReference() Vector[T] {
	return vec.rewrap(reversedView{inner: vec.viewOverWindow()})
}

// Materialize returns a new plain Vector holding a copy of the receiver's
// currently visible elements, in logical order.
func (vec Vector[T]) Materialize() Vector[T] {
	n := vec.Size()
	out := New[T](n)
	for i := 0; i < n; i++ {
		out.Set(i, vec.At(i))
	}
	out.precision = vec.precision
	return out
}

func assertSameSizeAndPrecision[T Element](a, b Vector[T]) {
	if a.Size() != b.Size() {
		panic(newSizeViolation(a.Size(), b.Size()))
	}
	if a.precision != b.precision {
		panic(newPrecisionViolation(a.precision, b.precision))
	}
}
