package correlation

import (
	"fmt"
	"sync"

	"github.com/Pro7ech/secmpc/diag"
	"github.com/Pro7ech/secmpc/vector"
)

// Manager is the permutation manager of spec.md §4.5: a queue of
// pre-generated sharded permutations plus a queue of pairs of
// permutations. It is not a process-wide singleton: every NewManager
// call returns an independent instance (Beaver keeps one per protocol
// object), and its methods serialize on an internal mutex.
type Manager[T vector.Element] struct {
	mu       sync.Mutex
	gen      PermutationGenerator[T]
	single   []DishonestMajorityTuple[T]
	pairs    [][2]DishonestMajorityTuple[T]
	size     int
	onWarn   func(format string, args ...any)
}

func NewManager[T vector.Element](gen PermutationGenerator[T], size int) *Manager[T] {
	return &Manager[T]{gen: gen, size: size}
}

// OnWarning overrides the callback used when GetNext underflows and
// must regenerate synchronously; by default this logs via diag.Warn.
func (m *Manager[T]) OnWarning(f func(format string, args ...any)) { m.onWarn = f }

func (m *Manager[T]) warn(format string, args ...any) {
	if m.onWarn != nil {
		m.onWarn(format, args...)
		return
	}
	diag.Warn(m.gen.Rank(), "permutation_manager", fmt.Sprintf(format, args...))
}

// Reserve fills both queues with count single permutations and pairs
// pairs of permutations of the given size, calling the generator
// directly on the calling goroutine.
func (m *Manager[T]) Reserve(size, count int, pairs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		m.single = append(m.single, m.gen.Generate(size))
	}
	for i := 0; i < pairs; i++ {
		m.pairs = append(m.pairs, [2]DishonestMajorityTuple[T]{m.gen.Generate(size), m.gen.Generate(size)})
	}
	m.size = size
}

// GetNext dequeues one permutation of the given size. If the queue is
// empty it generates synchronously with a warning, per spec.md §9's
// documented queue-underflow behavior.
func (m *Manager[T]) GetNext(size int) DishonestMajorityTuple[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.single) == 0 || m.size != size {
		m.warn("permutation manager queue underflow for size %d, regenerating inline", size)
		return m.gen.Generate(size)
	}
	t := m.single[0]
	m.single = m.single[1:]
	return t
}

// GetNextPair dequeues one pair of permutations. The two are produced by
// consecutive Generate calls and do not share a key.
func (m *Manager[T]) GetNextPair(size int) [2]DishonestMajorityTuple[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pairs) == 0 || m.size != size {
		m.warn("permutation manager pair queue underflow for size %d, regenerating inline", size)
		return [2]DishonestMajorityTuple[T]{m.gen.Generate(size), m.gen.Generate(size)}
	}
	p := m.pairs[0]
	m.pairs = m.pairs[1:]
	return p
}

// Widen converts a dishonest-majority permutation tuple's vector
// contents from a narrower element type to T, a 2PC "T-conversion"
// applied on demand per spec.md §4.5.
func Widen[From, T vector.Element](t DishonestMajorityTuple[From]) DishonestMajorityTuple[T] {
	return DishonestMajorityTuple[T]{
		Pi: t.Pi,
		A:  widenVector[From, T](t.A),
		B:  widenVector[From, T](t.B),
		C:  widenVector[From, T](t.C),
	}
}

func widenVector[From, T vector.Element](v vector.Vector[From]) vector.Vector[T] {
	if v.Size() == 0 {
		return vector.Vector[T]{}
	}
	out := vector.New[T](v.Size())
	for i := 0; i < v.Size(); i++ {
		out.Set(i, widenElement[From, T](v.At(i)))
	}
	return out
}

// widenElement zero-extends the narrower type's little-endian bit
// pattern into the wider one; callers widening a signed negative value
// get its unsigned residue mod 2^width(From), matching the ring
// arithmetic convention the rest of this package's share math uses.
func widenElement[From, T vector.Element](v From) T {
	var buf [16]byte
	copy(buf[:], encodeElement(v))
	var zero T
	width := elementByteWidth(zero)
	return decodeElement[T](buf[:width])
}
