package protocol

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/prng"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/transport"
	"github.com/Pro7ech/secmpc/vector"
	"github.com/Pro7ech/secmpc/zero"
)

// Base holds the pieces every concrete variant shares: this party's
// identity and replication layout, its communicator, the share→party
// map derived from the replication layout, and a zero-sharing generator
// for reshare masking. Variants embed Base and add their own
// correlated-randomness source plus MultiplyA/AndB/MaliciousCheck.
type Base[T vector.Element] struct {
	ID       party.Identity
	Comm     transport.Communicator
	ShareMap *party.ShareToPartyMap
	ZeroGen  *zero.Generator
	PRGs     *prng.CommonPRGManager
}

// NewBase constructs the shared protocol state for one party.
func NewBase[T vector.Element](id party.Identity, comm transport.Communicator, zeroGen *zero.Generator, prgs *prng.CommonPRGManager) Base[T] {
	return Base[T]{
		ID:       id,
		Comm:     comm,
		ShareMap: party.BuildShareToPartyMap(id.NumParties, id.R),
		ZeroGen:  zeroGen,
		PRGs:     prgs,
	}
}

func (b Base[T]) Rank() int        { return b.ID.Rank }
func (b Base[T]) NumParties() int  { return b.ID.NumParties }
func (b Base[T]) R() int           { return b.ID.R }

// slotOf returns the position within this party's own Shares() list that
// holds global share index s, or -1 if this party does not hold s.
func (b Base[T]) slotOf(s int) int {
	for i, held := range b.ID.Shares() {
		if held == s {
			return i
		}
	}
	return -1
}

func randomVector[T vector.Element](n int) vector.Vector[T] {
	v := vector.New[T](n)
	span := v.BatchSpan()
	g := prng.DevURandom{}
	switch any(*new(T)).(type) {
	case vector.Int128:
		buf := make([]byte, 16)
		for i := range span {
			g.FillBytes(buf)
			span[i] = any(vector.UnmarshalWireInt128(buf)).(T)
		}
	default:
		width := elementByteWidth[T]()
		buf := make([]byte, width)
		for i := range span {
			g.FillBytes(buf)
			span[i] = decodeElem[T](buf)
		}
	}
	return v
}

func elementByteWidth[T vector.Element]() int {
	switch any(*new(T)).(type) {
	case int8:
		return 1
	case int16:
		return 2
	case int32:
		return 4
	case int64:
		return 8
	default:
		panic(fmt.Errorf("protocol: unsupported element type %T", *new(T)))
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
		panic(fmt.Errorf("protocol: unsupported element type %T", zero))
	}
}

// secretShare is the shared body of SecretShareA/SecretShareB: owner
// splits v into P shares (P-1 random plus a residual combined with
// combine/invert), every party ends up holding the shares its
// replication layout assigns it. combine folds a freshly drawn random
// share into the running residual (Add for arithmetic, Xor for
// boolean); the residual share is v combined with invert applied once
// to the accumulated random shares.
func (b Base[T]) secretShare(owner int, v vector.Vector[T], combine func(acc, r vector.Vector[T]) vector.Vector[T], invert func(acc vector.Vector[T]) vector.Vector[T]) (share.EVector[T], error) {
	n := v.Size()
	p := b.ID.NumParties
	out := share.New[T](b.ID.R, n)

	var shares []vector.Vector[T]
	if b.ID.Rank == owner {
		shares = make([]vector.Vector[T], p)
		acc := vector.New[T](n)
		for i := 0; i < p-1; i++ {
			shares[i] = randomVector[T](n)
			acc = combine(acc, shares[i])
		}
		shares[p-1] = combine(invert(acc), v)
	}

	for s := 0; s < p; s++ {
		holders := b.ShareMap.PartiesHolding(s)
		holdsS := b.slotOf(s)
		switch {
		case b.ID.Rank == owner:
			if holdsS >= 0 {
				out.Set(holdsS, shares[s])
			}
			for _, q := range holders {
				if q == owner {
					continue
				}
				if err := b.Comm.SendShares(shares[s], q-owner, n); err != nil {
					return share.EVector[T]{}, fmt.Errorf("protocol: secret-share send to %d: %w", q, err)
				}
			}
		case holdsS >= 0:
			dst := vector.New[T](n)
			if err := b.Comm.RecvShares(owner-b.ID.Rank, dst, n); err != nil {
				return share.EVector[T]{}, fmt.Errorf("protocol: secret-share recv from owner: %w", err)
			}
			out.Set(holdsS, dst)
		}
	}
	return out, nil
}

// SecretShareA is the additive-sharing form.
func (b Base[T]) SecretShareA(owner int, v vector.Vector[T]) (share.EVector[T], error) {
	return b.secretShare(owner, v, vector.Vector[T].Add, vector.Vector[T].Neg)
}

// SecretShareB is the XOR form; the residual share needs no inversion
// since XOR is its own inverse.
func (b Base[T]) SecretShareB(owner int, v vector.Vector[T]) (share.EVector[T], error) {
	identity := func(acc vector.Vector[T]) vector.Vector[T] { return acc }
	return b.secretShare(owner, v, vector.Vector[T].Xor, identity)
}

// PublicShare encodes a publicly-known vector: share index 0 carries v,
// every other slot is zero. No communication is needed since v is
// already known identically to every party.
func (b Base[T]) PublicShare(v vector.Vector[T]) share.EVector[T] {
	n := v.Size()
	out := share.New[T](b.ID.R, n)
	for i, s := range b.ID.Shares() {
		if s == 0 {
			out.Set(i, v)
		}
	}
	return out
}

// openShares is the shared body of OpenSharesA/OpenSharesB: for each
// global share index, its canonical holder broadcasts to every party
// missing it; every party folds in the P shares via combine.
func (b Base[T]) openShares(s share.EVector[T], combine func(acc, v vector.Vector[T]) vector.Vector[T]) (vector.Vector[T], error) {
	n := s.Size()
	p := b.ID.NumParties
	acc := vector.New[T](n)
	for idx := 0; idx < p; idx++ {
		holder := b.ShareMap.CanonicalHolder(idx)
		slot := b.slotOf(idx)
		switch {
		case b.ID.Rank == holder:
			val := s.At(slot)
			acc = combine(acc, val)
			holders := b.ShareMap.PartiesHolding(idx)
			for q := 0; q < p; q++ {
				if q == b.ID.Rank || containsRank(holders, q) {
					continue
				}
				if err := b.Comm.SendShares(val, q-b.ID.Rank, n); err != nil {
					return vector.Vector[T]{}, fmt.Errorf("protocol: open send to %d: %w", q, err)
				}
			}
		case slot >= 0:
			acc = combine(acc, s.At(slot))
		default:
			dst := vector.New[T](n)
			if err := b.Comm.RecvShares(holder-b.ID.Rank, dst, n); err != nil {
				return vector.Vector[T]{}, fmt.Errorf("protocol: open recv from %d: %w", holder, err)
			}
			acc = combine(acc, dst)
		}
	}
	return acc, nil
}

func containsRank(ranks []int, q int) bool {
	for _, r := range ranks {
		if r == q {
			return true
		}
	}
	return false
}

func (b Base[T]) OpenSharesA(s share.EVector[T]) (vector.Vector[T], error) {
	return b.openShares(s, vector.Vector[T].Add)
}

func (b Base[T]) OpenSharesB(s share.EVector[T]) (vector.Vector[T], error) {
	return b.openShares(s, vector.Vector[T].Xor)
}

func (b Base[T]) AddA(x, y share.EVector[T]) share.EVector[T] { return x.Add(y) }
func (b Base[T]) SubA(x, y share.EVector[T]) share.EVector[T] { return x.Sub(y) }
func (b Base[T]) XorB(x, y share.EVector[T]) share.EVector[T] { return x.Xor(y) }
func (b Base[T]) NegA(x share.EVector[T]) share.EVector[T]    { return x.Neg() }

// flipSlotZero returns x with share index 0's slot complemented (via f)
// if this party holds it, and every other slot copied unchanged — the
// "adjust depending on rank" behavior spec.md calls for in not_b.
func (b Base[T]) flipSlotZero(x share.EVector[T], f func(vector.Vector[T]) vector.Vector[T]) share.EVector[T] {
	out := share.New[T](x.R(), x.Size())
	for i, s := range b.ID.Shares() {
		if s == 0 {
			out.Set(i, f(x.At(i)))
		} else {
			out.Set(i, x.At(i))
		}
	}
	return out
}

func (b Base[T]) NotB(x share.EVector[T]) share.EVector[T] {
	return b.flipSlotZero(x, vector.Vector[T].Not)
}

// oneOf returns the element value 1 for any supported width, including
// Int128 which has no literal-constant conversion to a type parameter.
func oneOf[T vector.Element]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(1)).(T)
	case int16:
		return any(int16(1)).(T)
	case int32:
		return any(int32(1)).(T)
	case int64:
		return any(int64(1)).(T)
	case vector.Int128:
		return any(vector.Int128FromInt64(1)).(T)
	default:
		panic(fmt.Errorf("protocol: unsupported element type %T", zero))
	}
}

// NotB1 complements only the least-significant bit of share index 0's
// slot, leaving higher bits and every other slot untouched.
func (b Base[T]) NotB1(x share.EVector[T]) share.EVector[T] {
	one := vector.Fill[T](x.Size(), oneOf[T]())
	return b.flipSlotZero(x, func(v vector.Vector[T]) vector.Vector[T] { return v.Xor(one) })
}

// Reshare is the canonical rerandomize-and-forward step of spec.md
// §4.7, specialized to the shape the replicated honest-majority
// multiplication primitives need: v holds, in its single slot, this
// party's freshly computed (non-replicated) contribution to global
// share index Rank(). Reshare masks it with a group zero-sharing so it
// looks uniformly random, ships it to every other party in group that
// the replication layout says should also hold index Rank(), and
// receives the matching fresh contributions from the owners of every
// other index this party's own layout holds — producing a properly
// replicated EVector. General cross-group forwarding (a different
// party holding the value to redistribute than the index's own owner)
// is not needed by any primitive in this package and is not
// implemented.
func (b Base[T]) Reshare(v share.EVector[T], group party.Group, binary bool) (share.EVector[T], error) {
	n := v.Size()
	s := b.ID.Rank
	groupPRG := b.PRGs.Group([]int(group))

	var masked vector.Vector[T]
	if binary {
		mask := zero.GroupBinary[T](groupPRG, []int(group), b.ID.Rank, n)
		masked = v.At(0).Xor(mask)
	} else {
		mask := zero.GroupArithmetic[T](groupPRG, []int(group), b.ID.Rank, n)
		masked = v.At(0).Add(mask)
	}

	out := share.New[T](b.ID.R, n)
	for i, held := range b.ID.Shares() {
		if held == s {
			out.Set(i, masked)
		}
	}

	for _, q := range b.ShareMap.PartiesHolding(s) {
		if q == b.ID.Rank || !group.Contains(q) {
			continue
		}
		if err := b.Comm.SendShares(masked, q-b.ID.Rank, n); err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: reshare send to %d: %w", q, err)
		}
	}

	for i, held := range b.ID.Shares() {
		if held == s || !group.Contains(held) {
			continue
		}
		dst := vector.New[T](n)
		if err := b.Comm.RecvShares(held-b.ID.Rank, dst, n); err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: reshare recv from %d: %w", held, err)
		}
		out.Set(i, dst)
	}
	return out, nil
}

// ApplyPerm reindexes every replication slot of x by pi: slot i becomes
// pi-applied, slot[k] = old_slot[pi[k]]. Every party applies the same pi
// to the same global share indices it holds, so the replicated
// invariant (every copy of a given global index agrees) survives, and
// opening the result yields pi applied to the value open(x) would have
// produced — with no communication at all.
func (b Base[T]) ApplyPerm(x share.EVector[T], pi correlation.Permutation) share.EVector[T] {
	out := share.New[T](x.R(), len(pi))
	for i := 0; i < x.R(); i++ {
		out.Set(i, correlation.Apply(x.At(i), pi))
	}
	return out
}

// ApplyInversePerm undoes a prior ApplyPerm(x, pi) call.
func (b Base[T]) ApplyInversePerm(x share.EVector[T], pi correlation.Permutation) share.EVector[T] {
	return b.ApplyPerm(x, pi.Inverse())
}

// B2ABit converts a boolean single-bit share into an arithmetic one,
// generalizing spec.md §4.7's two-party identity (x0-x1)^2 = x0 xor x1
// to P parties: each canonical holder of a global share index injects
// its own known bit value as a freshly arithmetic-secret-shared term
// (via SecretShareA — a value only that party actually knows), then the
// P terms are folded pairwise via the standard bit-XOR-as-arithmetic
// identity a xor b = a + b - 2ab, computed with nothing but AddA/SubA/
// MultiplyA so every Protocol variant gets the same implementation.
func B2ABit[T vector.Element](p Protocol[T], x share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	numParties := p.NumParties()
	zero := share.New[T](1, n)

	var acc share.EVector[T]
	for s := 0; s < numParties; s++ {
		term, err := secretShareFromHolder(p, x, s, n)
		if err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: b2a_bit injecting share %d: %w", s, err)
		}
		if s == 0 {
			acc = term
			continue
		}
		sum := p.AddA(acc, term)
		prod, err := p.MultiplyA(acc, term)
		if err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: b2a_bit combining share %d: %w", s, err)
		}
		acc = p.SubA(sum, p.AddA(prod, prod))
	}
	if acc.R() == 0 {
		acc = zero
	}
	return acc, nil
}

// secretShareFromHolder has the canonical holder of global share index s
// inject its own locally-known bit value (x's slot for s) as a fresh
// arithmetic secret share; every other party participates in the same
// SecretShareA call with a throwaway input, since only the owner's
// value is actually read.
func secretShareFromHolder[T vector.Element](p Protocol[T], x share.EVector[T], s, n int) (share.EVector[T], error) {
	holder := shareToPartyHolder(p, s)
	v := vector.New[T](n)
	if p.Rank() == holder {
		if idx := slotIndexFor(p, s); idx >= 0 {
			v = x.At(idx)
		}
	}
	return p.SecretShareA(holder, v)
}

// shareToPartyHolder and slotIndexFor recompute the replication layout
// generically from a Protocol's Rank/NumParties/R, without requiring the
// interface to expose its internal Base.
func shareToPartyHolder[T vector.Element](p Protocol[T], s int) int {
	m := party.BuildShareToPartyMap(p.NumParties(), p.R())
	return m.CanonicalHolder(s)
}

func slotIndexFor[T vector.Element](p Protocol[T], s int) int {
	id := party.NewIdentity(p.Rank(), p.NumParties())
	for i, held := range id.Shares() {
		if held == s {
			return i
		}
	}
	return -1
}

// DivConstA is the local-only division-by-constant primitive: every
// party divides its own share by c and keeps the per-share remainder as
// a truncation-error term a caller can fold into an optional correction
// round (spec.md §4.7's "corrected" state).
func DivConstA[T vector.Element](x share.EVector[T], c T) (q, truncErr share.EVector[T]) {
	divisor := vector.Fill[T](x.Size(), c)
	qOut := share.New[T](x.R(), x.Size())
	errOut := share.New[T](x.R(), x.Size())
	for i := 0; i < x.R(); i++ {
		qi := x.At(i).Div(divisor)
		qOut.Set(i, qi)
		errOut.Set(i, x.At(i).Sub(qi.Mul(divisor)))
	}
	return qOut, errOut
}
