// Package zero implements the zero-sharing generator described in
// spec.md §4.4: given per-relative-rank and per-group common PRGs, it
// produces fresh additive or XOR shares of the all-zero vector, the
// masking primitive the protocol engine uses to rerandomize a value
// before forwarding it to a party that must not learn it directly.
package zero

import (
	"fmt"

	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/vector"
)

// RankPRGs is the minimal view into a CommonPRGManager the generator
// needs: the common stream shared with the previous and next party by
// rank, and the generator's own rank.
type RankPRGs interface {
	Rank() int
	Previous() *prng.CommonPRG
	Next() *prng.CommonPRG
}

// Generator produces zero shares for a single party using its
// per-relative-rank common PRGs.
type Generator struct {
	numParties int
	prgs       RankPRGs
}

// New constructs a zero-sharing generator for a party in a computation of
// the given size.
func New(numParties int, prgs RankPRGs) *Generator {
	return &Generator{numParties: numParties, prgs: prgs}
}

func drawVector[T vector.Element](g *prng.CommonPRG, n int) vector.Vector[T] {
	v := vector.New[T](n)
	span := v.BatchSpan()
	var zero T
	switch any(zero).(type) {
	case vector.Int128:
		for i := range span {
			buf := make([]byte, 16)
			g.FillBytes(buf)
			span[i] = any(vector.UnmarshalWireInt128(buf)).(T)
		}
	default:
		width := elementByteWidth(zero)
		buf := make([]byte, width)
		for i := range span {
			g.FillBytes(buf)
			span[i] = decodeElem[T](buf)
		}
	}
	return v
}

func elementByteWidth(a any) int {
	switch a.(type) {
	case int8:
		return 1
	case int16:
		return 2
	case int32:
		return 4
	case int64:
		return 8
	default:
		panic(fmt.Errorf("zero: unsupported element type %T", a))
	}
}

func decodeElem[T vector.Element](buf []byte) T {
	var acc uint64
	for i := len(buf) - 1; i >= 0; i-- {
		acc = acc<<8 | uint64(buf[i])
	}
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(acc)).(T)
	case int16:
		return any(int16(acc)).(T)
	case int32:
		return any(int32(acc)).(T)
	case int64:
		return any(int64(acc)).(T)
	default:
		panic(fmt.Errorf("zero: unsupported element type %T", zero))
	}
}

// Arithmetic returns party prgs.Rank()'s additive share of a fresh
// all-zero vector of length n: r_{i-1} (drawn from the common PRG shared
// with the previous-ranked party) minus r_{i+1} (drawn from the common
// PRG shared with the next-ranked party). Summed across all P parties,
// the shares telescope to zero since every drawn value is counted once
// with a + sign and once with a - sign.
//
// In the 2-party special case, party 0's result is negated so that the
// two single-term shares still cancel (there being no "previous" and
// "next" distinct from each other).
func Arithmetic[T vector.Element](g *Generator, n int) vector.Vector[T] {
	rPrev := drawVector[T](g.prgs.Previous(), n)
	rNext := drawVector[T](g.prgs.Next(), n)
	share := rPrev.Sub(rNext)
	if g.numParties == 2 && g.prgs.Rank() == 0 {
		share = share.Neg()
	}
	return share
}

// Binary is the XOR analogue of Arithmetic: share = r_{i-1} XOR r_{i+1}.
// The 2-party special case needs no adjustment since XOR is its own
// inverse.
func Binary[T vector.Element](g *Generator, n int) vector.Vector[T] {
	rPrev := drawVector[T](g.prgs.Previous(), n)
	rNext := drawVector[T](g.prgs.Next(), n)
	return rPrev.Xor(rNext)
}

// GroupArithmetic produces this party's share of a zero vector shared
// among the |G| members of a group using a single group-keyed PRG: the
// first |G|-1 members (in ascending rank order) each draw an independent
// random vector from the group PRG, and the last member's share is fixed
// to minus the running sum, so that the sum of all members' shares is
// exactly zero. Every member must draw from the identical group PRG
// stream in the identical order to agree on the same assignment.
// Every member holds an independently seeded but byte-identical copy of
// groupPRG, so every member draws the same |G|-1 vectors in the same
// order on every call: a non-last member draws all of them and keeps the
// one at its own position, and the last member draws and combines all of
// them. Each call therefore advances every member's stream by the same
// amount, and successive calls stay aligned.
func GroupArithmetic[T vector.Element](groupPRG *prng.CommonPRG, members []int, selfRank int, n int) vector.Vector[T] {
	idx := indexOf(members, selfRank)
	if idx < 0 {
		panic(fmt.Errorf("zero: rank %d is not a member of the group", selfRank))
	}
	last := len(members) - 1
	if idx < last {
		var own vector.Vector[T]
		for i := 0; i < last; i++ {
			v := drawVector[T](groupPRG, n)
			if i == idx {
				own = v
			}
		}
		return own
	}
	sum := vector.New[T](n)
	for i := 0; i < last; i++ {
		sum = sum.Add(drawVector[T](groupPRG, n))
	}
	return sum.Neg()
}

// GroupBinary is the XOR analogue of GroupArithmetic.
func GroupBinary[T vector.Element](groupPRG *prng.CommonPRG, members []int, selfRank int, n int) vector.Vector[T] {
	idx := indexOf(members, selfRank)
	if idx < 0 {
		panic(fmt.Errorf("zero: rank %d is not a member of the group", selfRank))
	}
	last := len(members) - 1
	if idx < last {
		var own vector.Vector[T]
		for i := 0; i < last; i++ {
			v := drawVector[T](groupPRG, n)
			if i == idx {
				own = v
			}
		}
		return own
	}
	sum := vector.New[T](n)
	for i := 0; i < last; i++ {
		sum = sum.Xor(drawVector[T](groupPRG, n))
	}
	return sum
}

func indexOf(members []int, rank int) int {
	for i, m := range members {
		if m == rank {
			return i
		}
	}
	return -1
}
