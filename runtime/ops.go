package runtime

import (
	"fmt"

	"github.com/Pro7ech/secmpc/correlation"
	"github.com/Pro7ech/secmpc/party"
	"github.com/Pro7ech/secmpc/protocol"
	"github.com/Pro7ech/secmpc/share"
	"github.com/Pro7ech/secmpc/vector"
	"github.com/Pro7ech/secmpc/worker"
)

// Pick selects one width's protocol object out of a Worker, so the
// generic dispatch helpers below can stay agnostic of which of the
// five per-width fields a caller is driving.
type Pick[T vector.Element] func(w *worker.Worker) protocol.Protocol[T]

func copyVector[T vector.Element](dst, src vector.Vector[T]) {
	for i := 0; i < src.Size(); i++ {
		dst.Set(i, src.At(i))
	}
}

func copyEVector[T vector.Element](dst, src share.EVector[T]) {
	for r := 0; r < src.R(); r++ {
		copyVector(dst.At(r), src.At(r))
	}
}

// ExecuteParallel is the "single-input-pair/triple, allocate-output"
// dispatch variant of §4.9: x, y and res must all share total_size();
// each worker slices its batch window out of x/y/res and calls op with
// the matching width's protocol object, writing the fresh per-range
// result back into res's window.
func ExecuteParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T], op func(p protocol.Protocol[T], xw, yw share.EVector[T]) (share.EVector[T], error)) error {
	total := x.Size()
	if y.Size() != total || res.Size() != total {
		return fmt.Errorf("runtime: execute_parallel size mismatch: x=%d y=%d res=%d", total, y.Size(), res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		xw := x.SetBatchWindow(rng.Start, rng.End)
		yw := y.SetBatchWindow(rng.Start, rng.End)
		out, err := op(pick(w), xw, yw)
		if err != nil {
			return err
		}
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// ModifyParallel is the in-place unary variant: x is read and res
// (which may alias x) is overwritten, per window.
func ModifyParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T], op func(p protocol.Protocol[T], xw share.EVector[T]) share.EVector[T]) error {
	total := x.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: modify_parallel size mismatch: x=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		xw := x.SetBatchWindow(rng.Start, rng.End)
		out := op(pick(w), xw)
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// UnaryFallibleParallel is ModifyParallel's fallible counterpart, for
// unary primitives that can fail (B2ABit: a secret-share round per
// contributing party).
func UnaryFallibleParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T], op func(p protocol.Protocol[T], xw share.EVector[T]) (share.EVector[T], error)) error {
	total := x.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: unary_fallible_parallel size mismatch: x=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		xw := x.SetBatchWindow(rng.Start, rng.End)
		out, err := op(pick(w), xw)
		if err != nil {
			return err
		}
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// ModifyParallel2Arg is the in-place binary variant: res is overwritten
// from x and y per window, via a non-failing local op (AddA/SubA/...).
func ModifyParallel2Arg[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T], op func(p protocol.Protocol[T], xw, yw share.EVector[T]) share.EVector[T]) error {
	total := x.Size()
	if y.Size() != total || res.Size() != total {
		return fmt.Errorf("runtime: modify_parallel_2arg size mismatch: x=%d y=%d res=%d", total, y.Size(), res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		xw := x.SetBatchWindow(rng.Start, rng.End)
		yw := y.SetBatchWindow(rng.Start, rng.End)
		out := op(pick(w), xw, yw)
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// OpenParallel is the "1-in, plaintext-ref-out" variant used by
// OpenSharesA/OpenSharesB: s is read, the opened plaintext written into
// res's matching window.
func OpenParallel[T vector.Element](rt *Runtime, pick Pick[T], s share.EVector[T], res vector.Vector[T], op func(p protocol.Protocol[T], sw share.EVector[T]) (vector.Vector[T], error)) error {
	total := s.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: open_parallel size mismatch: s=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		sw := s.SetBatchWindow(rng.Start, rng.End)
		out, err := op(pick(w), sw)
		if err != nil {
			return err
		}
		copyVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// ShareParallel is the share-generation variant: owner's plaintext v is
// split across workers' windows and the shares assembled into res.
func ShareParallel[T vector.Element](rt *Runtime, pick Pick[T], owner int, v vector.Vector[T], res share.EVector[T], op func(p protocol.Protocol[T], owner int, vw vector.Vector[T]) (share.EVector[T], error)) error {
	total := v.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: share_parallel size mismatch: v=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		vw := v.SetBatchWindow(rng.Start, rng.End)
		out, err := op(pick(w), owner, vw)
		if err != nil {
			return err
		}
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// DivConstParallel is the "1-in, pair-out" variant: x is divided by c
// per window, writing both the quotient and the truncation-error term.
func DivConstParallel[T vector.Element](rt *Runtime, pick Pick[T], x share.EVector[T], c T, q, truncErr share.EVector[T]) error {
	total := x.Size()
	if q.Size() != total || truncErr.Size() != total {
		return fmt.Errorf("runtime: div_const_parallel size mismatch: x=%d q=%d err=%d", total, q.Size(), truncErr.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		xw := x.SetBatchWindow(rng.Start, rng.End)
		qOut, errOut, err := pick(w).DivConstA(xw, c)
		if err != nil {
			return err
		}
		copyEVector(q.SetBatchWindow(rng.Start, rng.End), qOut)
		copyEVector(truncErr.SetBatchWindow(rng.Start, rng.End), errOut)
		return nil
	})
}

// ReshareParallel is the in-place reshare variant: v is rerandomized
// and redistributed within group per window.
func ReshareParallel[T vector.Element](rt *Runtime, pick Pick[T], v, res share.EVector[T], group party.Group, binary bool) error {
	total := v.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: reshare_parallel size mismatch: v=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		vw := v.SetBatchWindow(rng.Start, rng.End)
		out, err := pick(w).Reshare(vw, group, binary)
		if err != nil {
			return err
		}
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

// MultiplyAParallel, AndBParallel, AddAParallel, SubAParallel and
// XorBParallel are the common ExecuteParallel/ModifyParallel2Arg
// instantiations for the named primitives.

func MultiplyAParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T]) error {
	return ExecuteParallel(rt, pick, x, y, res, func(p protocol.Protocol[T], xw, yw share.EVector[T]) (share.EVector[T], error) {
		return p.MultiplyA(xw, yw)
	})
}

func AndBParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T]) error {
	return ExecuteParallel(rt, pick, x, y, res, func(p protocol.Protocol[T], xw, yw share.EVector[T]) (share.EVector[T], error) {
		return p.AndB(xw, yw)
	})
}

func AddAParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T]) error {
	return ModifyParallel2Arg(rt, pick, x, y, res, func(p protocol.Protocol[T], xw, yw share.EVector[T]) share.EVector[T] {
		return p.AddA(xw, yw)
	})
}

func SubAParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T]) error {
	return ModifyParallel2Arg(rt, pick, x, y, res, func(p protocol.Protocol[T], xw, yw share.EVector[T]) share.EVector[T] {
		return p.SubA(xw, yw)
	})
}

func XorBParallel[T vector.Element](rt *Runtime, pick Pick[T], x, y, res share.EVector[T]) error {
	return ModifyParallel2Arg(rt, pick, x, y, res, func(p protocol.Protocol[T], xw, yw share.EVector[T]) share.EVector[T] {
		return p.XorB(xw, yw)
	})
}

func NegAParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T]) error {
	return ModifyParallel(rt, pick, x, res, func(p protocol.Protocol[T], xw share.EVector[T]) share.EVector[T] {
		return p.NegA(xw)
	})
}

func NotBParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T]) error {
	return ModifyParallel(rt, pick, x, res, func(p protocol.Protocol[T], xw share.EVector[T]) share.EVector[T] {
		return p.NotB(xw)
	})
}

func B2ABitParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T]) error {
	return UnaryFallibleParallel(rt, pick, x, res, func(p protocol.Protocol[T], xw share.EVector[T]) (share.EVector[T], error) {
		return p.B2ABit(xw)
	})
}

func NotB1Parallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T]) error {
	return ModifyParallel(rt, pick, x, res, func(p protocol.Protocol[T], xw share.EVector[T]) share.EVector[T] {
		return p.NotB1(xw)
	})
}

func RedistributeSharesBParallel[T vector.Element](rt *Runtime, pick Pick[T], x, res share.EVector[T]) error {
	return UnaryFallibleParallel(rt, pick, x, res, func(p protocol.Protocol[T], xw share.EVector[T]) (share.EVector[T], error) {
		return p.RedistributeSharesB(xw)
	})
}

// PublicShareParallel is PublicShare's dispatch wrapper: v is
// well-known to every party, so there is no owner argument and no
// failure mode, but the split still has to run per worker window like
// any other share-generation primitive.
func PublicShareParallel[T vector.Element](rt *Runtime, pick Pick[T], v vector.Vector[T], res share.EVector[T]) error {
	total := v.Size()
	if res.Size() != total {
		return fmt.Errorf("runtime: public_share_parallel size mismatch: v=%d res=%d", total, res.Size())
	}
	return rt.dispatch(total, func(w *worker.Worker, rng ThreadRange) error {
		vw := v.SetBatchWindow(rng.Start, rng.End)
		out := pick(w).PublicShare(vw)
		copyEVector(res.SetBatchWindow(rng.Start, rng.End), out)
		return nil
	})
}

func SecretShareAParallel[T vector.Element](rt *Runtime, pick Pick[T], owner int, v vector.Vector[T], res share.EVector[T]) error {
	return ShareParallel(rt, pick, owner, v, res, func(p protocol.Protocol[T], owner int, vw vector.Vector[T]) (share.EVector[T], error) {
		return p.SecretShareA(owner, vw)
	})
}

func SecretShareBParallel[T vector.Element](rt *Runtime, pick Pick[T], owner int, v vector.Vector[T], res share.EVector[T]) error {
	return ShareParallel(rt, pick, owner, v, res, func(p protocol.Protocol[T], owner int, vw vector.Vector[T]) (share.EVector[T], error) {
		return p.SecretShareB(owner, vw)
	})
}

func OpenSharesAParallel[T vector.Element](rt *Runtime, pick Pick[T], s share.EVector[T], res vector.Vector[T]) error {
	return OpenParallel(rt, pick, s, res, func(p protocol.Protocol[T], sw share.EVector[T]) (vector.Vector[T], error) {
		return p.OpenSharesA(sw)
	})
}

func OpenSharesBParallel[T vector.Element](rt *Runtime, pick Pick[T], s share.EVector[T], res vector.Vector[T]) error {
	return OpenParallel(rt, pick, s, res, func(p protocol.Protocol[T], sw share.EVector[T]) (vector.Vector[T], error) {
		return p.OpenSharesB(sw)
	})
}

// ReserveTriplesParallel runs a pool-reservation callback once per
// worker with no sub-chunking, per §4.9's note that pooled generation's
// fixed overhead makes further splitting counterproductive.
func ReserveTriplesParallel(rt *Runtime, n int, reserve func(w *worker.Worker, n int)) error {
	return rt.dispatchSingleBatch(func(w *worker.Worker) error {
		reserve(w, n)
		return nil
	})
}

// GeneratePermParallel agrees a fresh permutation of length n with every
// other party, via the first worker's protocol object. Unlike the
// element-wise primitives above, this has no per-index locality to split
// across thread windows, so it runs as a single whole-operation call.
func GeneratePermParallel[T vector.Element](rt *Runtime, pick Pick[T], n int) (correlation.Permutation, error) {
	if rt.terminated {
		return nil, fmt.Errorf("runtime: dispatch after teardown")
	}
	if len(rt.Workers) == 0 {
		return nil, fmt.Errorf("runtime: no workers configured")
	}
	return pick(rt.Workers[0]).GeneratePerm(n), nil
}

// ApplyPermParallel and ApplyInversePermParallel reindex x by pi (or by
// pi's inverse) and write the result into res. Permutation application
// cannot be split across thread windows local to the input the way the
// other parallel primitives are, since pi[i] may reference any global
// index in x, not just ones in the calling thread's own range — so both
// run as a single whole-vector call on the first worker's protocol
// object.
func ApplyPermParallel[T vector.Element](rt *Runtime, pick Pick[T], x share.EVector[T], pi correlation.Permutation, res share.EVector[T]) error {
	if res.Size() != len(pi) {
		return fmt.Errorf("runtime: apply_perm_parallel size mismatch: pi=%d res=%d", len(pi), res.Size())
	}
	if rt.terminated {
		return fmt.Errorf("runtime: dispatch after teardown")
	}
	if len(rt.Workers) == 0 {
		return fmt.Errorf("runtime: no workers configured")
	}
	copyEVector(res, pick(rt.Workers[0]).ApplyPerm(x, pi))
	return nil
}

func ApplyInversePermParallel[T vector.Element](rt *Runtime, pick Pick[T], x share.EVector[T], pi correlation.Permutation, res share.EVector[T]) error {
	if res.Size() != len(pi) {
		return fmt.Errorf("runtime: apply_inverse_perm_parallel size mismatch: pi=%d res=%d", len(pi), res.Size())
	}
	if rt.terminated {
		return fmt.Errorf("runtime: dispatch after teardown")
	}
	if len(rt.Workers) == 0 {
		return fmt.Errorf("runtime: no workers configured")
	}
	copyEVector(res, pick(rt.Workers[0]).ApplyInversePerm(x, pi))
	return nil
}
