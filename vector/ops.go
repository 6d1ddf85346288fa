package vector

import "fmt"

// Arithmetic, boolean, comparison and shift operators dispatch per element
// width via a type switch on the instantiated T, the same pattern
// utils/structs.Vector uses to defer to element-specific behavior without
// Go generics supporting operator overloading on a type parameter.

func addElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x + any(b).(int8)).(T)
	case int16:
		return any(x + any(b).(int16)).(T)
	case int32:
		return any(x + any(b).(int32)).(T)
	case int64:
		return any(x + any(b).(int64)).(T)
	case Int128:
		return any(x.Add(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func subElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x - any(b).(int8)).(T)
	case int16:
		return any(x - any(b).(int16)).(T)
	case int32:
		return any(x - any(b).(int32)).(T)
	case int64:
		return any(x - any(b).(int64)).(T)
	case Int128:
		return any(x.Sub(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func negElem[T Element](a T) T {
	switch x := any(a).(type) {
	case int8:
		return any(-x).(T)
	case int16:
		return any(-x).(T)
	case int32:
		return any(-x).(T)
	case int64:
		return any(-x).(T)
	case Int128:
		return any(x.Neg()).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func mulElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x * any(b).(int8)).(T)
	case int16:
		return any(x * any(b).(int16)).(T)
	case int32:
		return any(x * any(b).(int32)).(T)
	case int64:
		return any(x * any(b).(int64)).(T)
	case Int128:
		return any(x.Mul(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func divElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x / any(b).(int8)).(T)
	case int16:
		return any(x / any(b).(int16)).(T)
	case int32:
		return any(x / any(b).(int32)).(T)
	case int64:
		return any(x / any(b).(int64)).(T)
	case Int128:
		return any(x.Div(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func andElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x & any(b).(int8)).(T)
	case int16:
		return any(x & any(b).(int16)).(T)
	case int32:
		return any(x & any(b).(int32)).(T)
	case int64:
		return any(x & any(b).(int64)).(T)
	case Int128:
		return any(x.And(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func orElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x | any(b).(int8)).(T)
	case int16:
		return any(x | any(b).(int16)).(T)
	case int32:
		return any(x | any(b).(int32)).(T)
	case int64:
		return any(x | any(b).(int64)).(T)
	case Int128:
		return any(x.Or(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func xorElem[T Element](a, b T) T {
	switch x := any(a).(type) {
	case int8:
		return any(x ^ any(b).(int8)).(T)
	case int16:
		return any(x ^ any(b).(int16)).(T)
	case int32:
		return any(x ^ any(b).(int32)).(T)
	case int64:
		return any(x ^ any(b).(int64)).(T)
	case Int128:
		return any(x.Xor(any(b).(Int128))).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func notElem[T Element](a T) T {
	switch x := any(a).(type) {
	case int8:
		return any(^x).(T)
	case int16:
		return any(^x).(T)
	case int32:
		return any(^x).(T)
	case int64:
		return any(^x).(T)
	case Int128:
		return any(x.Not()).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func shlElem[T Element](a T, n uint) T {
	switch x := any(a).(type) {
	case int8:
		return any(x << n).(T)
	case int16:
		return any(x << n).(T)
	case int32:
		return any(x << n).(T)
	case int64:
		return any(x << n).(T)
	case Int128:
		return any(x.Shl(n)).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func shrElem[T Element](a T, n uint) T {
	switch x := any(a).(type) {
	case int8:
		return any(x >> n).(T)
	case int16:
		return any(x >> n).(T)
	case int32:
		return any(x >> n).(T)
	case int64:
		return any(x >> n).(T)
	case Int128:
		return any(x.Shr(n)).(T)
	default:
		panic(unsupportedElement(a))
	}
}

func cmpElem[T Element](a, b T) int {
	switch x := any(a).(type) {
	case int8:
		y := any(b).(int8)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case int16:
		y := any(b).(int16)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case int32:
		y := any(b).(int32)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case int64:
		y := any(b).(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case Int128:
		return x.Cmp(any(b).(Int128))
	default:
		panic(unsupportedElement(a))
	}
}

func boolElem[T Element](b bool) T {
	var zero T
	if !b {
		return zero
	}
	switch any(zero).(type) {
	case int8:
		return any(int8(1)).(T)
	case int16:
		return any(int16(1)).(T)
	case int32:
		return any(int32(1)).(T)
	case int64:
		return any(int64(1)).(T)
	case Int128:
		return any(Int128FromInt64(1)).(T)
	default:
		panic(unsupportedElement(zero))
	}
}

func unsupportedElement(a any) error {
	return fmt.Errorf("vector: unsupported element type %T", a)
}

func binaryOp[T Element](a, b Vector[T], f func(T, T) T) Vector[T] {
	assertSameSizeAndPrecision(a, b)
	n := a.Size()
	out := New[T](n)
	for i := 0; i < n; i++ {
		out.Set(i, f(a.At(i), b.At(i)))
	}
	out.precision = a.precision
	return out
}

func unaryOp[T Element](a Vector[T], f func(T) T) Vector[T] {
	n := a.Size()
	out := New[T](n)
	for i := 0; i < n; i++ {
		out.Set(i, f(a.At(i)))
	}
	out.precision = a.precision
	return out
}

// Add returns the element-wise sum of the receiver and other.
func (vec Vector[T]) Add(other Vector[T]) Vector[T] { return binaryOp(vec, other, addElem[T]) }

// Sub returns the element-wise difference.
func (vec Vector[T]) Sub(other Vector[T]) Vector[T] { return binaryOp(vec, other, subElem[T]) }

// Neg returns the element-wise negation.
func (vec Vector[T]) Neg() Vector[T] { return unaryOp(vec, negElem[T]) }

// Mul returns the element-wise product. Per fixed-point convention, the
// result carries the receiver's precision; callers performing fixed-point
// multiplication are responsible for truncating afterwards.
func (vec Vector[T]) Mul(other Vector[T]) Vector[T] { return binaryOp(vec, other, mulElem[T]) }

// Div returns the element-wise quotient (truncated towards zero).
func (vec Vector[T]) Div(other Vector[T]) Vector[T] { return binaryOp(vec, other, divElem[T]) }

// And returns the element-wise bitwise AND.
func (vec Vector[T]) And(other Vector[T]) Vector[T] { return binaryOp(vec, other, andElem[T]) }

// Or returns the element-wise bitwise OR.
func (vec Vector[T]) Or(other Vector[T]) Vector[T] { return binaryOp(vec, other, orElem[T]) }

// Xor returns the element-wise bitwise XOR.
func (vec Vector[T]) Xor(other Vector[T]) Vector[T] { return binaryOp(vec, other, xorElem[T]) }

// Not returns the element-wise bitwise complement.
func (vec Vector[T]) Not() Vector[T] { return unaryOp(vec, notElem[T]) }

// Shl returns the element-wise left shift by n bits.
func (vec Vector[T]) Shl(n uint) Vector[T] {
	return unaryOp(vec, func(a T) T { return shlElem(a, n) })
}

// Shr returns the element-wise arithmetic right shift by n bits.
func (vec Vector[T]) Shr(n uint) Vector[T] {
	return unaryOp(vec, func(a T) T { return shrElem(a, n) })
}

// Eq, Neq, Lt, Le, Gt, Ge return plain vectors of 0/1 (in T) indicating
// the elementwise comparison result.
func (vec Vector[T]) Eq(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) == 0) })
}
func (vec Vector[T]) Neq(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) != 0) })
}
func (vec Vector[T]) Lt(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) < 0) })
}
func (vec Vector[T]) Le(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) <= 0) })
}
func (vec Vector[T]) Gt(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) > 0) })
}
func (vec Vector[T]) Ge(other Vector[T]) Vector[T] {
	return binaryOp(vec, other, func(a, b T) T { return boolElem[T](cmpElem(a, b) >= 0) })
}
