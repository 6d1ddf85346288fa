package protocol

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/vector"
)

// New builds the concrete Protocol[T] object matching (numParties,
// variant), wiring in the Beaver variant's OLE sources and permutation
// generator where needed. Dummy0PC accepts any party count; every other
// variant is pinned to the party count spec.md §4 assigns it.
func New[T vector.Element](variant Variant, b Base[T], arithOLE, boolOLE correlation.OLE[T], permGen correlation.PermutationGenerator[T]) (Protocol[T], error) {
	switch variant {
	case Plaintext1PC:
		if b.ID.NumParties != 1 {
			return nil, fmt.Errorf("protocol: plaintext1pc requires 1 party, got %d", b.ID.NumParties)
		}
		return NewPlaintext(b), nil
	case Dummy0PC:
		return NewDummy[T](b.ID.Rank, b.ID.NumParties), nil
	case Beaver2PC:
		if b.ID.NumParties != 2 {
			return nil, fmt.Errorf("protocol: beaver2pc requires 2 parties, got %d", b.ID.NumParties)
		}
		return NewBeaver[T](b, arithOLE, boolOLE, permGen), nil
	case Replicated3PC:
		return NewReplicated3PC[T](b), nil
	case Fantastic4PCCustom:
		return NewFantasticCustom[T](b), nil
	case Fantastic4PCDalskov:
		return NewFantasticDalskov[T](b), nil
	default:
		return nil, fmt.Errorf("protocol: unknown variant %v", variant)
	}
}
