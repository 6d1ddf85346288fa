// Package correlation implements the preprocessing material the
// protocol layer consumes: oblivious-linear-evaluation tuples, Beaver
// multiplication/AND triples built from them, a pooled FIFO wrapper
// amortizing generator setup, and sharded permutation correlations.
package correlation

import (
	"fmt"

	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/vector"
)

// Kind selects the combining operator an OLE/Beaver correlation
// satisfies: AND for boolean shares, multiplication for arithmetic
// shares.
type Kind int

const (
	Boolean Kind = iota
	Arithmetic
)

func (k Kind) String() string {
	if k == Boolean {
		return "boolean"
	}
	return "arithmetic"
}

// OLE is a two-party oblivious-linear-evaluation generator. Each call
// produces one party's half of n fresh correlated instances: rank 0
// gets (A,C), rank 1 gets (B,D), satisfying:
//
//	boolean:    A xor B = C and D
//	arithmetic: A + B   = C * D
//
// Generate must be called once per party per matched round; C and D
// are generated by the OLE process itself, not supplied by the caller.
type OLE[T vector.Element] interface {
	Kind() Kind
	Rank() int
	// Generate runs this party's side of n parallel OLE instances,
	// returning (A,C) at rank 0 or (B,D) at rank 1.
	Generate(n int) (share, local vector.Vector[T])
}

// ZeroOLE is the all-zero correlation of spec.md §4.5, used to
// benchmark raw generator throughput without caring about correctness:
// both parties unconditionally receive all-zero output, which
// trivially satisfies both relations when C=D=0.
type ZeroOLE[T vector.Element] struct {
	kind Kind
	rank int
}

func NewZeroOLE[T vector.Element](kind Kind, rank int) *ZeroOLE[T] {
	return &ZeroOLE[T]{kind: kind, rank: rank}
}

func (z *ZeroOLE[T]) Kind() Kind { return z.kind }
func (z *ZeroOLE[T]) Rank() int  { return z.rank }

func (z *ZeroOLE[T]) Generate(n int) (vector.Vector[T], vector.Vector[T]) {
	return vector.New[T](n), vector.New[T](n)
}

// DummyOLE is the seeded-common-randomness variant of spec.md §4.5:
// both parties derive C, D and a sender mask A from the same shared
// seed via independent labeled sub-streams, and compute the relation
// locally. It sacrifices the privacy a real OLE provides in exchange
// for zero communication, which is exactly the trade spec.md calls out
// this variant for ("benchmarking and unit testing").
type DummyOLE[T vector.Element] struct {
	kind    Kind
	rank    int
	factory prng.GeneratorFactory
	seed    []byte
}

func NewDummyOLE[T vector.Element](kind Kind, rank int, seed []byte, factory prng.GeneratorFactory) *DummyOLE[T] {
	return &DummyOLE[T]{kind: kind, rank: rank, factory: factory, seed: seed}
}

func (d *DummyOLE[T]) Kind() Kind { return d.kind }
func (d *DummyOLE[T]) Rank() int  { return d.rank }

func (d *DummyOLE[T]) Generate(n int) (vector.Vector[T], vector.Vector[T]) {
	cStream := d.labeledStream("C")
	dStream := d.labeledStream("D")
	aStream := d.labeledStream("A")

	C := drawVector[T](cStream, n)
	D := drawVector[T](dStream, n)
	A := drawVector[T](aStream, n)

	var combined vector.Vector[T]
	if d.kind == Boolean {
		combined = C.And(D)
	} else {
		combined = C.Mul(D)
	}

	if d.rank == 0 {
		return A, C
	}
	if d.kind == Boolean {
		return A.Xor(combined), D
	}
	return combined.Sub(A), D
}

func (d *DummyOLE[T]) labeledStream(label string) prng.DeterministicPRG {
	gen, err := d.factory(deriveKey(d.seed, label))
	if err != nil {
		panic(fmt.Errorf("correlation: deriving dummy OLE stream %q: %w", label, err))
	}
	return gen
}

func drawVector[T vector.Element](g prng.DeterministicPRG, n int) vector.Vector[T] {
	var zero T
	width := elementByteWidth(zero)
	buf := make([]byte, n*width)
	g.FillBytes(buf)
	out := vector.New[T](n)
	for i := 0; i < n; i++ {
		out.Set(i, decodeElement[T](buf[i*width:(i+1)*width]))
	}
	return out
}
