// Package prng implements the runtime's deterministic and
// non-deterministic pseudo-random generators: the stream-cipher-backed
// DeterministicPRG used to derive correlated randomness across parties,
// and the CommonPRG/CommonPRGManager pair that set up identical streams
// between peers and groups of peers via a seed-agreement protocol over a
// transport.Communicator.
//
// Every deterministic generator here is, at heart, the same pattern the
// rest of the pack reaches for: a crypto/cipher.Stream keyed from a seed,
// advanced with XORKeyStream over a zeroed buffer to emit raw bytes.
package prng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// maxQueryBytes is the chunking ceiling described in spec.md §4.3: a
// single fill_bytes call never asks the underlying stream for more than
// ~1 MB at a time, so callers requesting larger buffers are served in
// chunks.
const maxQueryBytes = 1 << 20

// DeterministicPRG is implemented by every seeded stream generator the
// runtime uses to produce correlated randomness.
type DeterministicPRG interface {
	// FillBytes writes pseudo-random bytes into dest, chunking internally
	// if dest is larger than the generator's single-query ceiling.
	FillBytes(dest []byte)
	// SetSeed re-keys the generator and resets its stream position.
	SetSeed(seed []byte) error
	// IncrementNonce advances to a fresh, independent sub-stream without
	// changing the key — used to fork many logically distinct streams
	// from one seed (e.g. one sub-stream per worker).
	IncrementNonce()
}

// AES256CTR is a DeterministicPRG backed by AES-256 in CTR mode, keyed
// with a 32-byte seed.
type AES256CTR struct {
	key   [32]byte
	nonce uint64
	block cipher.Block
	ctr   cipher.Stream
}

// NewAES256CTR constructs an AES-256-CTR generator from a 32-byte seed.
func NewAES256CTR(seed []byte) (*AES256CTR, error) {
	g := &AES256CTR{}
	if err := g.SetSeed(seed); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *AES256CTR) SetSeed(seed []byte) error {
	if len(seed) != 32 {
		return fmt.Errorf("prng: AES-256 seed must be 32 bytes, got %d", len(seed))
	}
	copy(g.key[:], seed)
	block, err := aes.NewCipher(g.key[:])
	if err != nil {
		return fmt.Errorf("prng: %w", err)
	}
	g.block = block
	g.nonce = 0
	g.resetStream()
	return nil
}

func (g *AES256CTR) resetStream() {
	iv := make([]byte, aes.BlockSize)
	binary.LittleEndian.PutUint64(iv, g.nonce)
	g.ctr = cipher.NewCTR(g.block, iv)
}

func (g *AES256CTR) IncrementNonce() {
	g.nonce++
	g.resetStream()
}

func (g *AES256CTR) FillBytes(dest []byte) {
	fillChunked(dest, g.ctr)
}

// XChaCha20 is a DeterministicPRG backed by the XChaCha20 stream cipher,
// keyed with a 32-byte seed and a 24-byte extended nonce.
type XChaCha20 struct {
	key   [chacha20.KeySize]byte
	nonce [chacha20.NonceSizeX]byte
	ctr   uint64
	s     *chacha20.Cipher
}

// NewXChaCha20 constructs an XChaCha20 generator from a 32-byte seed.
func NewXChaCha20(seed []byte) (*XChaCha20, error) {
	g := &XChaCha20{}
	if err := g.SetSeed(seed); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *XChaCha20) SetSeed(seed []byte) error {
	if len(seed) != chacha20.KeySize {
		return fmt.Errorf("prng: XChaCha20 seed must be %d bytes, got %d", chacha20.KeySize, len(seed))
	}
	copy(g.key[:], seed)
	g.ctr = 0
	return g.resetStream()
}

func (g *XChaCha20) resetStream() error {
	binary.LittleEndian.PutUint64(g.nonce[:8], g.ctr)
	s, err := chacha20.NewUnauthenticatedCipher(g.key[:], g.nonce[:])
	if err != nil {
		return fmt.Errorf("prng: %w", err)
	}
	g.s = s
	return nil
}

func (g *XChaCha20) IncrementNonce() {
	g.ctr++
	if err := g.resetStream(); err != nil {
		panic(err)
	}
}

func (g *XChaCha20) FillBytes(dest []byte) {
	fillChunked(dest, g.s)
}

// DevURandom is a non-deterministic DeterministicPRG drawing fresh
// entropy from the OS CSPRNG on every call. SetSeed and IncrementNonce
// are no-ops: there is no deterministic state to reset.
type DevURandom struct{}

func (DevURandom) FillBytes(dest []byte) {
	if _, err := rand.Read(dest); err != nil {
		panic(fmt.Errorf("prng: reading system entropy: %w", err))
	}
}
func (DevURandom) SetSeed([]byte) error { return nil }
func (DevURandom) IncrementNonce()      {}

func fillChunked(dest []byte, s cipher.Stream) {
	for i := range dest {
		dest[i] = 0
	}
	for len(dest) > 0 {
		n := len(dest)
		if n > maxQueryBytes {
			n = maxQueryBytes
		}
		s.XORKeyStream(dest[:n], dest[:n])
		dest = dest[n:]
	}
}
