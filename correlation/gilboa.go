package correlation

import "github.com/Pro7ech/secmpc/vector"

// GilboaOLE is the arithmetic OLE generator of spec.md §4.5, built
// from many boolean-OT-shaped rounds via the standard Gilboa
// reduction: C is bit-decomposed contribution is folded in once per
// bit of D, one OT round per bit. Rank 0 receives (A,C), rank 1
// receives (B,D), satisfying A + B = C * D.
type GilboaOLE[T vector.Element] struct {
	rank int
	src  *SeededOTSource[T]
}

func NewGilboaOLE[T vector.Element](rank int, src *SeededOTSource[T]) *GilboaOLE[T] {
	return &GilboaOLE[T]{rank: rank, src: src}
}

func (g *GilboaOLE[T]) Kind() Kind { return Arithmetic }
func (g *GilboaOLE[T]) Rank() int  { return g.rank }

func (g *GilboaOLE[T]) Generate(n int) (vector.Vector[T], vector.Vector[T]) {
	var zero T
	width := uint(elementByteWidth(zero) * 8)

	cStream := g.src.stream("ot-secret-C")
	dStream := g.src.stream("ot-secret-D")
	C := drawVector[T](cStream, n)
	D := drawVector[T](dStream, n)

	one := vector.Fill[T](n, oneElement[T]())
	A := vector.New[T](n)
	B := vector.New[T](n)

	for i := uint(0); i < width; i++ {
		r := g.src.pad(n)
		A = A.Sub(r)

		bit := D.Shr(i).And(one)
		term := bit.Mul(C.Shl(i))
		B = B.Add(r.Add(term))
	}

	if g.rank == 0 {
		return A, C
	}
	return B, D
}
