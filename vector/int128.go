package vector

import "encoding/binary"

// Int128 is a signed 128-bit integer stored as two's-complement across two
// uint64 limbs. Go has no native int128, so the runtime's widest element
// kind is hand-rolled here the way the 64-bit halves are described in
// spec.md's wire format: Lo holds the low 64 bits, Hi the high 64 bits
// (including the sign bit, in bit 63 of Hi).
type Int128 struct {
	Lo uint64
	Hi uint64
}

// Int128FromInt64 widens a native int64 into an Int128, sign-extending.
func Int128FromInt64(v int64) Int128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Add returns a+b mod 2^128, wrapping silently like Go's native signed
// integer arithmetic.
func (a Int128) Add(b Int128) Int128 {
	lo, carry := bitsAdd64(a.Lo, b.Lo, 0)
	hi, _ := bitsAdd64(a.Hi, b.Hi, carry)
	return Int128{Lo: lo, Hi: hi}
}

// Sub returns a-b mod 2^128.
func (a Int128) Sub(b Int128) Int128 {
	lo, borrow := bitsSub64(a.Lo, b.Lo, 0)
	hi, _ := bitsSub64(a.Hi, b.Hi, borrow)
	return Int128{Lo: lo, Hi: hi}
}

// Neg returns -a mod 2^128.
func (a Int128) Neg() Int128 {
	return Int128{}.Sub(a)
}

// Mul returns a*b mod 2^128 (low 128 bits of the full product, as with
// native wraparound multiplication).
func (a Int128) Mul(b Int128) Int128 {
	hi, lo := bitsMul64(a.Lo, b.Lo)
	hi += a.Lo*b.Hi + a.Hi*b.Lo
	return Int128{Lo: lo, Hi: hi}
}

// Div returns the truncated (towards zero) signed quotient a/b. Panics if
// b is zero, matching native Go integer division semantics.
func (a Int128) Div(b Int128) Int128 {
	if b.Lo == 0 && b.Hi == 0 {
		panic("vector: Int128 division by zero")
	}
	negA := a.Hi>>63 == 1
	negB := b.Hi>>63 == 1
	ua := a
	if negA {
		ua = ua.Neg()
	}
	ub := b
	if negB {
		ub = ub.Neg()
	}
	q, _ := divU128(ua, ub)
	if negA != negB {
		q = q.Neg()
	}
	return q
}

// And, Or, Xor, Not are bitwise over the full 128 bits.
func (a Int128) And(b Int128) Int128 { return Int128{a.Lo & b.Lo, a.Hi & b.Hi} }
func (a Int128) Or(b Int128) Int128  { return Int128{a.Lo | b.Lo, a.Hi | b.Hi} }
func (a Int128) Xor(b Int128) Int128 { return Int128{a.Lo ^ b.Lo, a.Hi ^ b.Hi} }
func (a Int128) Not() Int128         { return Int128{^a.Lo, ^a.Hi} }

// Shl returns a left-shifted by n bits (0 <= n < 128).
func (a Int128) Shl(n uint) Int128 {
	if n == 0 {
		return a
	}
	if n >= 128 {
		return Int128{}
	}
	if n >= 64 {
		return Int128{Lo: 0, Hi: a.Lo << (n - 64)}
	}
	return Int128{Lo: a.Lo << n, Hi: (a.Hi << n) | (a.Lo >> (64 - n))}
}

// Shr returns a arithmetic-right-shifted by n bits (sign-extending).
func (a Int128) Shr(n uint) Int128 {
	sign := uint64(0)
	if a.Hi>>63 == 1 {
		sign = ^uint64(0)
	}
	if n == 0 {
		return a
	}
	if n >= 128 {
		return Int128{Lo: sign, Hi: sign}
	}
	if n >= 64 {
		hi := sign
		lo := arithShift64(a.Hi, n-64, sign != 0)
		return Int128{Lo: lo, Hi: hi}
	}
	lo := (a.Lo >> n) | (a.Hi << (64 - n))
	hi := arithShift64(a.Hi, n, sign != 0)
	return Int128{Lo: lo, Hi: hi}
}

// Cmp returns -1, 0 or 1 comparing a and b as signed 128-bit integers.
func (a Int128) Cmp(b Int128) int {
	as, bs := a.Hi>>63, b.Hi>>63
	if as != bs {
		if as == 1 {
			return -1
		}
		return 1
	}
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	if a.Lo != b.Lo {
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Equal reports whether a and b hold the same bit pattern.
func (a Int128) Equal(b *Int128) bool { return a.Lo == b.Lo && a.Hi == b.Hi }

// Bit returns the value (0 or 1) of bit i (0 = least significant).
func (a Int128) Bit(i int) uint64 {
	if i < 64 {
		return (a.Lo >> uint(i)) & 1
	}
	return (a.Hi >> uint(i-64)) & 1
}

// MarshalWire encodes a as two little-endian 64-bit halves in address
// order (Lo then Hi), matching spec.md's wire-format rule for 128-bit
// elements.
func (a Int128) MarshalWire(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], a.Lo)
	binary.LittleEndian.PutUint64(dst[8:16], a.Hi)
}

// UnmarshalWireInt128 decodes an Int128 from its wire encoding.
func UnmarshalWireInt128(src []byte) Int128 {
	return Int128{
		Lo: binary.LittleEndian.Uint64(src[0:8]),
		Hi: binary.LittleEndian.Uint64(src[8:16]),
	}
}

func bitsAdd64(a, b, carryIn uint64) (sum, carryOut uint64) {
	sum = a + b + carryIn
	carryOut = 0
	if sum < a || (carryIn == 1 && sum == a) {
		carryOut = 1
	}
	return
}

func bitsSub64(a, b, borrowIn uint64) (diff, borrowOut uint64) {
	diff = a - b - borrowIn
	borrowOut = 0
	if a < b || (borrowIn == 1 && a-b == 0) {
		borrowOut = 1
	}
	return
}

func bitsMul64(a, b uint64) (hi, lo uint64) {
	const mask32 = 1<<32 - 1
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t := aLo * bLo
	w0 := t & mask32
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask32
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	lo = (t << 32) | w0
	hi = aHi*bHi + w2 + k
	return
}

func arithShift64(v uint64, n uint, negative bool) uint64 {
	if n == 0 {
		return v
	}
	if n >= 64 {
		if negative {
			return ^uint64(0)
		}
		return 0
	}
	r := v >> n
	if negative {
		r |= ^uint64(0) << (64 - n)
	}
	return r
}

// divU128 performs unsigned 128-bit division via simple binary long
// division. Inputs must already be in unsigned (magnitude) form.
func divU128(num, den Int128) (quo, rem Int128) {
	if den.Hi == 0 && den.Lo != 0 && num.Hi == 0 {
		return Int128{Lo: num.Lo / den.Lo}, Int128{Lo: num.Lo % den.Lo}
	}
	var q, r Int128
	for i := 127; i >= 0; i-- {
		r = r.Shl(1)
		if num.Bit(i) == 1 {
			r.Lo |= 1
		}
		if r.Cmp(den) >= 0 {
			r = r.Sub(den)
			q = setBit(q, uint(i))
		}
	}
	return q, r
}

func setBit(v Int128, i uint) Int128 {
	if i < 64 {
		v.Lo |= 1 << i
	} else {
		v.Hi |= 1 << (i - 64)
	}
	return v
}
