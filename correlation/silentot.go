package correlation

import "github.com/Pro7ech/secmpc/vector"

// maxOTBlockElements bounds how many elements SilentOT processes per
// underlying OT round, keeping each round's message traffic under the
// ~1 MB block size spec.md §4.5 requires.
func maxOTBlockElements[T vector.Element](n int) int {
	var z T
	w := elementByteWidth(z)
	block := (1 << 20) / w
	if block < 1 {
		block = 1
	}
	if n < block {
		return n
	}
	return block
}

// SilentOT is the boolean OLE generator of spec.md §4.5: rank 0 (the
// sender) receives (A,C), rank 1 (the receiver) receives (B,D),
// satisfying A xor B = C and D. Requests are chunked into fixed-size
// blocks of at most maxOTBlockElements so a single large Generate call
// doesn't hold one oversized round open end to end.
type SilentOT[T vector.Element] struct {
	rank int
	src  *SeededOTSource[T]
}

func NewSilentOT[T vector.Element](rank int, src *SeededOTSource[T]) *SilentOT[T] {
	return &SilentOT[T]{rank: rank, src: src}
}

func (s *SilentOT[T]) Kind() Kind { return Boolean }
func (s *SilentOT[T]) Rank() int  { return s.rank }

func (s *SilentOT[T]) Generate(n int) (vector.Vector[T], vector.Vector[T]) {
	share := vector.New[T](n)
	local := vector.New[T](n)

	cStream := s.src.stream("ot-secret-C")
	dStream := s.src.stream("ot-secret-D")

	block := maxOTBlockElements[T](n)
	for start := 0; start < n; start += block {
		size := block
		if size > n-start {
			size = n - start
		}

		C := drawVector[T](cStream, size)
		D := drawVector[T](dStream, size)

		var shareChunk, localChunk vector.Vector[T]
		if s.rank == 0 {
			shareChunk, localChunk = s.src.SenderRound(size), C
		} else {
			shareChunk, localChunk = s.src.ReceiverRound(C, D, size, Boolean), D
		}
		for i := 0; i < size; i++ {
			share.Set(start+i, shareChunk.At(i))
			local.Set(start+i, localChunk.At(i))
		}
	}
	return share, local
}
