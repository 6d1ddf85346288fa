package correlation

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/Pro7ech/secmpc/vector"
)

// elementByteWidth and decodeElement mirror transport's private wire
// codec for the five element widths; correlation needs its own copy
// since it draws raw PRG bytes directly into elements rather than
// going through a Communicator.
func elementByteWidth[T vector.Element](_ T) int {
	var z T
	switch any(z).(type) {
	case int8:
		return 1
	case int16:
		return 2
	case int32:
		return 4
	case int64:
		return 8
	case vector.Int128:
		return 16
	default:
		panic(fmt.Errorf("correlation: unsupported element type %T", z))
	}
}

func encodeElement[T vector.Element](v T) []byte {
	switch x := any(v).(type) {
	case int8:
		return []byte{byte(x)}
	case int16:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(x))
		return buf
	case int32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(x))
		return buf
	case int64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(x))
		return buf
	case vector.Int128:
		buf := make([]byte, 16)
		x.MarshalWire(buf)
		return buf
	default:
		panic(fmt.Errorf("correlation: unsupported element type %T", v))
	}
}

func decodeElement[T vector.Element](src []byte) T {
	var z T
	switch any(z).(type) {
	case int8:
		return any(int8(src[0])).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(src))).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(src))).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(src))).(T)
	case vector.Int128:
		return any(vector.UnmarshalWireInt128(src)).(T)
	default:
		panic(fmt.Errorf("correlation: unsupported element type %T", z))
	}
}

// oneElement returns the element value 1 for any supported width,
// including Int128 which has no literal-constant conversion to a type
// parameter.
func oneElement[T vector.Element]() T {
	var z T
	switch any(z).(type) {
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
		panic(fmt.Errorf("correlation: unsupported element type %T", z))
	}
}

// deriveKey derives a labeled 32-byte sub-key from a master seed using
// a keyed hash, so a single shared seed can drive several independent
// PRG streams (the dummy OLE's C/D/A streams, the honest-majority
// permutation's per-group stream, and so on) without a network
// round-trip per stream.
func deriveKey(seed []byte, label string) []byte {
	h := blake3.NewDeriveKey(label)
	h.Write(seed)
	sum := make([]byte, 32)
	h.Sum(sum[:0])
	return sum
}
