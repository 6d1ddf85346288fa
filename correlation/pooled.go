package correlation

import "github.com/Pro7ech/secmpc/vector"

// vectorFIFO is a FIFO of pending elements backed by a single
// concatenated Vector, with reserve appending a freshly generated
// batch and dequeue peeling a fixed-size prefix off the front.
type vectorFIFO[T vector.Element] struct {
	pending vector.Vector[T]
	size    int
}

func (f *vectorFIFO[T]) reserve(fresh vector.Vector[T]) {
	if f.size == 0 {
		f.pending = fresh
		f.size = fresh.Size()
		return
	}
	merged := vector.New[T](f.size + fresh.Size())
	for i := 0; i < f.size; i++ {
		merged.Set(i, f.pending.At(i))
	}
	for i := 0; i < fresh.Size(); i++ {
		merged.Set(f.size+i, fresh.At(i))
	}
	f.pending = merged
	f.size = merged.Size()
}

func (f *vectorFIFO[T]) dequeue(n int) (vector.Vector[T], bool) {
	if f.size < n {
		return vector.Vector[T]{}, false
	}
	head := vector.New[T](n)
	for i := 0; i < n; i++ {
		head.Set(i, f.pending.At(i))
	}
	rest := vector.New[T](f.size - n)
	for i := n; i < f.size; i++ {
		rest.Set(i-n, f.pending.At(i))
	}
	f.pending = rest
	f.size = rest.Size()
	return head, true
}

// PooledTriples wraps a BeaverGenerator with one FIFO per tuple
// position (a, b, c), matching spec.md §4.5: Reserve preallocates,
// GetNext dequeues, generating on demand (synchronously, with a
// warning the caller should log) if a FIFO underflows. The invariant
// the spec calls out — FIFO lengths across tuple positions remain
// equal — holds by construction since every Reserve/underflow grows
// all three FIFOs by the same amount together.
type PooledTriples[T vector.Element] struct {
	gen        *BeaverGenerator[T]
	a, b, c    vectorFIFO[T]
	onUnderflow func(n int)
}

func NewPooledTriples[T vector.Element](gen *BeaverGenerator[T]) *PooledTriples[T] {
	return &PooledTriples[T]{gen: gen}
}

// OnUnderflow registers a callback invoked whenever GetNext must
// generate synchronously because the pool ran dry.
func (p *PooledTriples[T]) OnUnderflow(f func(n int)) { p.onUnderflow = f }

func (p *PooledTriples[T]) Reserve(n int) {
	t := p.gen.Generate(n)
	p.a.reserve(t.A)
	p.b.reserve(t.B)
	p.c.reserve(t.C)
}

func (p *PooledTriples[T]) GetNext(n int) Triple[T] {
	a, ok := p.a.dequeue(n)
	if !ok {
		if p.onUnderflow != nil {
			p.onUnderflow(n)
		}
		p.Reserve(n)
		a, _ = p.a.dequeue(n)
	}
	b, _ := p.b.dequeue(n)
	c, _ := p.c.dequeue(n)
	return Triple[T]{A: a, B: b, C: c}
}

// Len reports how many triples currently sit in the pool.
func (p *PooledTriples[T]) Len() int { return p.a.size }
