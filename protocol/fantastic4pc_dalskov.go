package protocol

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
	"github.com/Pro7ech/secmpc/zero"
)

// FantasticDalskov is the malicious-secure 4-party variant: it reuses
// FantasticCustom's local multiplication, but the reshare inside
// MultiplyA, AndB and RedistributeSharesB additionally feeds the
// transferred value into a rolling per-peer BLAKE2b hash, on both the
// sending and the receiving side. The exported Reshare is Base.Reshare
// and is not hashed. MaliciousCheck exchanges
// those accumulated digests between every pair of parties that
// exchanged a reshared value this session and aborts on mismatch,
// standing in for the joint-message-passing protocol's real-time
// agreement step: a party that reshared inconsistent values to two
// different peers during the computation ends up with a digest its
// peers can't reproduce.
type FantasticDalskov[T vector.Element] struct {
	Base[T]
	everyone party.Group
	hashes   map[int]hash.Hash
}

// NewFantasticDalskov builds the 4-party Dalskov-variant protocol
// object for one party.
func NewFantasticDalskov[T vector.Element](b Base[T]) *FantasticDalskov[T] {
	if b.ID.NumParties != 4 {
		panic(fmt.Errorf("protocol: fantastic4pc requires 4 parties, got %d", b.ID.NumParties))
	}
	hashes := make(map[int]hash.Hash, 3)
	for q := 0; q < 4; q++ {
		if q == b.ID.Rank {
			continue
		}
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(fmt.Errorf("protocol: blake2b init: %w", err))
		}
		hashes[q] = h
	}
	return &FantasticDalskov[T]{Base: b, everyone: party.Group{0, 1, 2, 3}, hashes: hashes}
}

func vectorBytes[T vector.Element](v vector.Vector[T]) []byte {
	span := v.BatchSpan()
	var width int
	switch any(*new(T)).(type) {
	case vector.Int128:
		width = 16
	default:
		width = elementByteWidth[T]()
	}
	buf := make([]byte, len(span)*width)
	for i, e := range span {
		dst := buf[i*width : (i+1)*width]
		switch x := any(e).(type) {
		case int8:
			dst[0] = byte(x)
		case int16:
			binary.LittleEndian.PutUint16(dst, uint16(x))
		case int32:
			binary.LittleEndian.PutUint32(dst, uint32(x))
		case int64:
			binary.LittleEndian.PutUint64(dst, uint64(x))
		case vector.Int128:
			x.MarshalWire(dst)
		}
	}
	return buf
}

// jmpReshare is Base.Reshare with every transferred value folded into
// the sender's and receiver's rolling hash for the peer on the other
// end of the exchange.
func (p *FantasticDalskov[T]) jmpReshare(v share.EVector[T], group party.Group, binary_ bool) (share.EVector[T], error) {
	n := v.Size()
	s := p.ID.Rank
	groupPRG := p.PRGs.Group([]int(group))

	var masked vector.Vector[T]
	if binary_ {
		mask := zero.GroupBinary[T](groupPRG, []int(group), p.ID.Rank, n)
		masked = v.At(0).Xor(mask)
	} else {
		mask := zero.GroupArithmetic[T](groupPRG, []int(group), p.ID.Rank, n)
		masked = v.At(0).Add(mask)
	}

	out := share.New[T](p.ID.R, n)
	for i, held := range p.ID.Shares() {
		if held == s {
			out.Set(i, masked)
		}
	}

	// Two parties that send to each other both hash the lower rank's
	// message first, so a sent value bound for a lower-ranked peer is
	// hashed only after that peer's value has been received.
	buf := vectorBytes(masked)
	pending := make(map[int][]byte)
	for _, q := range p.ShareMap.PartiesHolding(s) {
		if q == p.ID.Rank || !group.Contains(q) {
			continue
		}
		if err := p.Comm.SendShares(masked, q-p.ID.Rank, n); err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: jmp reshare send to %d: %w", q, err)
		}
		if q < p.ID.Rank {
			pending[q] = buf
		} else {
			p.hashes[q].Write(buf)
		}
	}

	for i, held := range p.ID.Shares() {
		if held == s || !group.Contains(held) {
			continue
		}
		dst := vector.New[T](n)
		if err := p.Comm.RecvShares(held-p.ID.Rank, dst, n); err != nil {
			return share.EVector[T]{}, fmt.Errorf("protocol: jmp reshare recv from %d: %w", held, err)
		}
		out.Set(i, dst)
		p.hashes[held].Write(vectorBytes(dst))
	}
	for q, b := range pending {
		p.hashes[q].Write(b)
	}
	return out, nil
}

func (p *FantasticDalskov[T]) MultiplyA(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	local := fantasticLocal4[T](p.ID, x, y, n, vector.Vector[T].Add)
	out, err := p.jmpReshare(share.FromVectors(local), p.everyone, false)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: fantastic4pc-dalskov multiply_a: %w", err)
	}
	return out, nil
}

func (p *FantasticDalskov[T]) AndB(x, y share.EVector[T]) (share.EVector[T], error) {
	n := x.Size()
	local := andLocal4[T](p.ID, x, y, n)
	out, err := p.jmpReshare(share.FromVectors(local), p.everyone, true)
	if err != nil {
		return share.EVector[T]{}, fmt.Errorf("protocol: fantastic4pc-dalskov and_b: %w", err)
	}
	return out, nil
}

func (p *FantasticDalskov[T]) B2ABit(x share.EVector[T]) (share.EVector[T], error) {
	return B2ABit[T](p, x)
}

func (p *FantasticDalskov[T]) DivConstA(x share.EVector[T], c T) (share.EVector[T], share.EVector[T], error) {
	q, truncErr := DivConstA[T](x, c)
	return q, truncErr, nil
}

func (p *FantasticDalskov[T]) RedistributeSharesB(x share.EVector[T]) (share.EVector[T], error) {
	own := share.FromVectors(x.At(0))
	return p.jmpReshare(own, p.everyone, true)
}

// maliciousCheckEnvelope is the control-plane message malicious_check
// exchanges between peers: a self-describing wrapper around the
// accumulated digest rather than a bare byte dump, so the envelope can
// grow additional fields (an epoch counter, an abort reason) without
// changing the Communicator plumbing around it.
type maliciousCheckEnvelope struct {
	Kind   string `cbor:"kind"`
	Digest []byte `cbor:"digest"`
}

// digestVector packs an arbitrary byte payload into an int8 vector so
// it can travel over a Communicator, which only ever moves
// vector.Vector[T] values, never raw byte slices.
func digestVector(payload []byte) vector.Vector[int8] {
	v := vector.New[int8](len(payload))
	for i, b := range payload {
		v.Set(i, int8(b))
	}
	return v
}

func bytesFromDigestVector(v vector.Vector[int8]) []byte {
	span := v.BatchSpan()
	out := make([]byte, len(span))
	for i, b := range span {
		out[i] = byte(b)
	}
	return out
}

func encodeMaliciousCheckEnvelope(digest []byte) (vector.Vector[int8], error) {
	buf, err := cbor.Marshal(maliciousCheckEnvelope{Kind: "malicious_check", Digest: digest})
	if err != nil {
		return vector.Vector[int8]{}, fmt.Errorf("protocol: cbor marshal malicious_check envelope: %w", err)
	}
	return digestVector(buf), nil
}

func decodeMaliciousCheckEnvelope(v vector.Vector[int8]) ([]byte, error) {
	var env maliciousCheckEnvelope
	if err := cbor.Unmarshal(bytesFromDigestVector(v), &env); err != nil {
		return nil, fmt.Errorf("protocol: cbor unmarshal malicious_check envelope: %w", err)
	}
	return env.Digest, nil
}

// GeneratePerm draws a Fisher-Yates permutation from the common PRG
// shared by all four parties.
func (p *FantasticDalskov[T]) GeneratePerm(n int) correlation.Permutation {
	return correlation.FisherYates(p.PRGs.Group([]int(p.everyone)), n)
}

// MaliciousCheck exchanges this party's accumulated per-peer digests
// with each peer and aborts (returns false) on the first mismatch,
// then resets the rolling hashes for the next epoch.
func (p *FantasticDalskov[T]) MaliciousCheck() (bool, error) {
	ok := true
	for q := 0; q < 4; q++ {
		if q == p.ID.Rank {
			continue
		}
		mine, err := encodeMaliciousCheckEnvelope(p.hashes[q].Sum(nil))
		if err != nil {
			return false, err
		}
		n := mine.Size()
		theirs := vector.New[int8](n)
		if p.ID.Rank < q {
			if err := p.Comm.SendShares(mine, q-p.ID.Rank, n); err != nil {
				return false, fmt.Errorf("protocol: malicious_check send to %d: %w", q, err)
			}
			if err := p.Comm.RecvShares(q-p.ID.Rank, theirs, n); err != nil {
				return false, fmt.Errorf("protocol: malicious_check recv from %d: %w", q, err)
			}
		} else {
			if err := p.Comm.RecvShares(q-p.ID.Rank, theirs, n); err != nil {
				return false, fmt.Errorf("protocol: malicious_check recv from %d: %w", q, err)
			}
			if err := p.Comm.SendShares(mine, q-p.ID.Rank, n); err != nil {
				return false, fmt.Errorf("protocol: malicious_check send to %d: %w", q, err)
			}
		}
		theirDigest, err := decodeMaliciousCheckEnvelope(theirs)
		if err != nil {
			return false, err
		}
		if string(theirDigest) != string(p.hashes[q].Sum(nil)) {
			ok = false
		}
	}
	for _, h := range p.hashes {
		h.Reset()
	}
	return ok, nil
}
