package vector

import "fmt"

func widthBits[T Element](a T) uint {
	switch any(a).(type) {
	case int8:
		return 8
	case int16:
		return 16
	case int32:
		return 32
	case int64:
		return 64
	case Int128:
		return 128
	default:
		panic(unsupportedElement(a))
	}
}

// BitLevelShift implements bit_level_shift(level): within each 2^level-bit
// chunk of every element, the low half is overwritten with the bit-0 (LSB)
// value of the high half. It is a building block of the comparison
// networks used by the protocol layer (e.g. to broadcast a carry/borrow
// bit across a chunk).
func (vec Vector[T]) BitLevelShift(level uint) Vector[T] {
	return unaryOp(vec, func(a T) T {
		chunk := uint(1) << level
		w := widthBits(a)
		var out T
		for start := uint(0); start < w; start += chunk {
			half := chunk / 2
			if half == 0 {
				half = 1
			}
			hiBit := bitAt(a, start+half)
			for j := uint(0); j < half; j++ {
				out = setBitElem(out, start+j, hiBit)
			}
			for j := half; j < chunk; j++ {
				out = setBitElem(out, start+j, bitAt(a, start+j))
			}
		}
		return out
	})
}

// ExtendLSB replicates bit 0 of every element across all bits of that
// element, producing an all-zero or all-ones mask per element.
func (vec Vector[T]) ExtendLSB() Vector[T] {
	return unaryOp(vec, func(a T) T {
		if bitAt(a, 0) == 0 {
			var zero T
			return zero
		}
		var allOnes T
		return notElem(allOnes)
	})
}

// ExtractValid returns a new plain vector containing only the elements of
// the receiver at positions where the corresponding element of mask is
// non-zero, in order.
func (vec Vector[T]) ExtractValid(mask Vector[T]) Vector[T] {
	assertSameSizeAndPrecision(vec, mask)
	n := vec.Size()
	kept := make([]T, 0, n)
	var zero T
	for i := 0; i < n; i++ {
		if notZero(mask.At(i), zero) {
			kept = append(kept, vec.At(i))
		}
	}
	out := FromSlice(kept)
	out.precision = vec.precision
	return out
}

func notZero[T Element](a, zero T) bool {
	return cmpElem(a, zero) != 0
}

// ChunkedSum sums disjoint runs of k consecutive elements of the receiver
// into a vector of length size/k. size must be divisible by k.
func (vec Vector[T]) ChunkedSum(k int) Vector[T] {
	n := vec.Size()
	if k <= 0 || n%k != 0 {
		panic(fmt.Errorf("vector: chunked sum size %d not divisible by chunk %d", n, k))
	}
	out := New[T](n / k)
	for c := 0; c < n/k; c++ {
		var acc T
		for j := 0; j < k; j++ {
			acc = addElem(acc, vec.At(c*k+j))
		}
		out.Set(c, acc)
	}
	out.precision = vec.precision
	return out
}

// SimpleBitCompress packs bit `pos` (computed per element as start+i*step
// for i in [0,rep)) of every element into a dense output vector of the
// same element width: output element j holds, in its low `rep` bits, the
// selected bit of input elements [j*rep, (j+1)*rep).
func (vec Vector[T]) SimpleBitCompress(start, step, rep int) Vector[T] {
	n := vec.Size()
	if rep <= 0 || n%rep != 0 {
		panic(fmt.Errorf("vector: simple bit compress size %d not divisible by rep %d", n, rep))
	}
	out := New[T](n / rep)
	for j := 0; j < n/rep; j++ {
		var acc T
		for i := 0; i < rep; i++ {
			pos := start + i*step
			b := bitAt(vec.At(j*rep+i), uint(pos))
			acc = setBitElem(acc, uint(i), b)
		}
		out.Set(j, acc)
	}
	out.precision = vec.precision
	return out
}

// SimpleBitDecompress is the inverse of SimpleBitCompress: it scatters the
// low `rep` bits of each element of the receiver back out to bit `pos` of
// rep consecutive elements of a zero-initialized output vector of length
// size*rep.
func (vec Vector[T]) SimpleBitDecompress(start, step, rep int) Vector[T] {
	n := vec.Size()
	out := New[T](n * rep)
	for j := 0; j < n; j++ {
		packed := vec.At(j)
		for i := 0; i < rep; i++ {
			pos := start + i*step
			b := bitAt(packed, uint(i))
			elem := out.At(j*rep + i)
			out.Set(j*rep+i, setBitElem(elem, uint(pos), b))
		}
	}
	out.precision = vec.precision
	return out
}

// SimpleBitCompressSingle is the optimized single-position form of
// SimpleBitCompress (rep=1): packs bit `pos` of every element of the
// receiver into consecutive low bits of output elements, `width`
// (element-bit-width) bits at a time.
func (vec Vector[T]) SimpleBitCompressSingle(pos int) Vector[T] {
	n := vec.Size()
	var zero T
	w := int(widthBits(zero))
	out := New[T]((n + w - 1) / w)
	for i := 0; i < n; i++ {
		b := bitAt(vec.At(i), uint(pos))
		j, bit := i/w, uint(i%w)
		out.Set(j, setBitElem(out.At(j), bit, b))
	}
	out.precision = vec.precision
	return out
}

// SimpleBitDecompressSingle is the inverse of SimpleBitCompressSingle.
func (vec Vector[T]) SimpleBitDecompressSingle(pos int, n int) Vector[T] {
	var zero T
	w := int(widthBits(zero))
	out := New[T](n)
	for i := 0; i < n; i++ {
		j, bit := i/w, uint(i%w)
		b := bitAt(vec.At(j), bit)
		out.Set(i, setBitElem(out.At(i), uint(pos), b))
	}
	out.precision = vec.precision
	return out
}

func bitAt[T Element](a T, i uint) uint64 {
	switch x := any(a).(type) {
	case int8:
		return uint64(x>>i) & 1
	case int16:
		return uint64(x>>i) & 1
	case int32:
		return uint64(x>>i) & 1
	case int64:
		return uint64(x>>i) & 1
	case Int128:
		return x.Bit(int(i))
	default:
		panic(unsupportedElement(a))
	}
}

func setBitElem[T Element](a T, i uint, bit uint64) T {
	switch x := any(a).(type) {
	case int8:
		if bit != 0 {
			return any(x | (1 << i)).(T)
		}
		return any(x &^ (1 << i)).(T)
	case int16:
		if bit != 0 {
			return any(x | (1 << i)).(T)
		}
		return any(x &^ (1 << i)).(T)
	case int32:
		if bit != 0 {
			return any(x | (1 << i)).(T)
		}
		return any(x &^ (1 << i)).(T)
	case int64:
		if bit != 0 {
			return any(x | (1 << i)).(T)
		}
		return any(x &^ (1 << i)).(T)
	case Int128:
		if bit != 0 {
			return any(setBit(x, i)).(T)
		}
		return any(x.And(setBit(Int128{}, i).Not())).(T)
	default:
		panic(unsupportedElement(a))
	}
}
