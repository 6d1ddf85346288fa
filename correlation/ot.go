package correlation

import (
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/vector"
)

// CorrelatedOTSource models the external correlated-OT primitive
// spec.md §4.5 names as Silent OT's dependency. Production deployments
// plug in a real OT-extension-backed implementation behind this
// interface; SeededOTSource below is the seeded-common-randomness
// stand-in spec.md explicitly calls for in its dummy/benchmark builds —
// both parties derive the sender's pad from the same shared seed, so
// the receiver's "choice" never has to cross the wire, trading away
// the privacy a real backend provides for zero communication.
type CorrelatedOTSource[T vector.Element] interface {
	// SenderRound draws this round's sender pad for n instances.
	SenderRound(n int) (pad vector.Vector[T])
	// ReceiverRound draws the matching pad and combines it with delta
	// according to kind: pad xor (choice and delta) bitwise for Boolean,
	// pad + choice*delta for Arithmetic.
	ReceiverRound(delta, choice vector.Vector[T], n int, kind Kind) (selected vector.Vector[T])
}

type SeededOTSource[T vector.Element] struct {
	factory prng.GeneratorFactory
	seed    []byte
	round   int
	streams map[string]prng.DeterministicPRG
}

func NewSeededOTSource[T vector.Element](seed []byte, factory prng.GeneratorFactory) *SeededOTSource[T] {
	return &SeededOTSource[T]{factory: factory, seed: seed, streams: make(map[string]prng.DeterministicPRG)}
}

// stream returns the persistent generator for label, creating it on
// first use. Reusing the same generator across calls is what lets a
// caller draw a label's stream in several chunks and get a continuous
// sequence rather than repeating the same prefix.
func (s *SeededOTSource[T]) stream(label string) prng.DeterministicPRG {
	if g, ok := s.streams[label]; ok {
		return g
	}
	gen, err := s.factory(deriveKey(s.seed, label))
	if err != nil {
		panic(err)
	}
	s.streams[label] = gen
	return gen
}

func (s *SeededOTSource[T]) pad(n int) vector.Vector[T] {
	s.round++
	return drawVector[T](s.stream("ot-round-"+itoa(s.round)), n)
}

func (s *SeededOTSource[T]) SenderRound(n int) vector.Vector[T] {
	return s.pad(n)
}

func (s *SeededOTSource[T]) ReceiverRound(delta, choice vector.Vector[T], n int, kind Kind) vector.Vector[T] {
	pad := s.pad(n)
	if kind == Boolean {
		return pad.Xor(choice.And(delta))
	}
	return pad.Add(choice.Mul(delta))
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
