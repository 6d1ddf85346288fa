// Package structs implements small generic helpers shared by the containers
// in vector and share: equality and cloning contracts that let a generic
// container defer to its element type without a type switch at every call
// site.
package structs

// Equatable is implemented by element types that can compare themselves
// for a deep equal against another instance.
type Equatable[T any] interface {
	Equal(*T) bool
}

// Cloner is implemented by element types that know how to produce an
// independent deep copy of themselves.
type Cloner[V any] interface {
	Clone() *V
}

// Copyer is implemented by element types that can copy another instance's
// state onto the receiver in place.
type Copyer[V any] interface {
	Copy(*V)
}
