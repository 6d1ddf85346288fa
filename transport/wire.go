package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/Pro7ech/secmpc/vector"
)

// elementWireWidth is the number of bytes one element of T occupies on
// the wire. 128-bit elements are split into two 64-bit elements per
// logical element, so Int128 reports 16 (two 8-byte wire elements) but
// is framed no differently from any other width from the caller's
// perspective — the split is purely an encoding detail.
func elementWireWidth[T vector.Element](a T) int {
	switch any(a).(type) {
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
		panic(fmt.Errorf("transport: unsupported element type %T", a))
	}
}

// encodeElements serializes the first n elements of a plain vector into a
// little-endian byte buffer.
func encodeElements[T vector.Element](v vector.Vector[T], n int) []byte {
	assertPlain(v)
	var zero T
	w := elementWireWidth(zero)
	buf := make([]byte, n*w)
	for i := 0; i < n; i++ {
		encodeOne(v.At(i), buf[i*w:(i+1)*w])
	}
	return buf
}

func encodeOne[T vector.Element](a T, dst []byte) {
	switch x := any(a).(type) {
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
	default:
		panic(fmt.Errorf("transport: unsupported element type %T", a))
	}
}

// decodeElements deserializes n elements from buf into the first n
// positions of a plain, pre-allocated destination vector.
func decodeElements[T vector.Element](dst vector.Vector[T], buf []byte, n int) {
	assertPlain(dst)
	var zero T
	w := elementWireWidth(zero)
	for i := 0; i < n; i++ {
		dst.Set(i, decodeOne[T](buf[i*w:(i+1)*w]))
	}
}

// encodeAny and decodeAny dispatch encodeElements/decodeElements across
// the concrete vector.Element width wrapped in an any, since
// Communicator's methods cannot themselves be generic (Go forbids type
// parameters on interface methods).
func encodeAny(v any, n int) []byte {
	switch x := v.(type) {
	case vector.Vector[int8]:
		return encodeElements(x, n)
	case vector.Vector[int16]:
		return encodeElements(x, n)
	case vector.Vector[int32]:
		return encodeElements(x, n)
	case vector.Vector[int64]:
		return encodeElements(x, n)
	case vector.Vector[vector.Int128]:
		return encodeElements(x, n)
	default:
		panic(fmt.Errorf("transport: unsupported vector type %T", v))
	}
}

func decodeAny(dst any, buf []byte, n int) {
	switch x := dst.(type) {
	case vector.Vector[int8]:
		decodeElements(x, buf, n)
	case vector.Vector[int16]:
		decodeElements(x, buf, n)
	case vector.Vector[int32]:
		decodeElements(x, buf, n)
	case vector.Vector[int64]:
		decodeElements(x, buf, n)
	case vector.Vector[vector.Int128]:
		decodeElements(x, buf, n)
	default:
		panic(fmt.Errorf("transport: unsupported vector type %T", dst))
	}
}

// encodeOneAny/decodeOneAny are the single-element analogues used by
// SendShare/RecvShare.
func encodeOneAny(v any) []byte {
	switch x := v.(type) {
	case int8:
		return []byte{byte(x)}
	case int16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(x))
		return b
	case int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(x))
		return b
	case int64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(x))
		return b
	case vector.Int128:
		b := make([]byte, 16)
		x.MarshalWire(b)
		return b
	default:
		panic(fmt.Errorf("transport: unsupported element type %T", v))
	}
}

// decodeOneAnyInto writes the single decoded element into dst, which
// must be a pointer to one of the five element kinds.
func decodeOneAnyInto(dst any, src []byte) {
	switch p := dst.(type) {
	case *int8:
		*p = int8(src[0])
	case *int16:
		*p = int16(binary.LittleEndian.Uint16(src))
	case *int32:
		*p = int32(binary.LittleEndian.Uint32(src))
	case *int64:
		*p = int64(binary.LittleEndian.Uint64(src))
	case *vector.Int128:
		*p = vector.UnmarshalWireInt128(src)
	default:
		panic(fmt.Errorf("transport: unsupported element pointer type %T", dst))
	}
}

// vecSize returns the Size() of a vector.Vector[T] wrapped in an any,
// across all five element widths.
func vecSize(v any) int {
	switch x := v.(type) {
	case vector.Vector[int8]:
		return x.Size()
	case vector.Vector[int16]:
		return x.Size()
	case vector.Vector[int32]:
		return x.Size()
	case vector.Vector[int64]:
		return x.Size()
	case vector.Vector[vector.Int128]:
		return x.Size()
	default:
		panic(fmt.Errorf("transport: unsupported vector type %T", v))
	}
}

func decodeOne[T vector.Element](src []byte) T {
	var zero T
	switch any(zero).(type) {
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
		panic(fmt.Errorf("transport: unsupported element type %T", zero))
	}
}
