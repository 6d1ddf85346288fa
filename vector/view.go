package vector

// view is the access-pattern sum type described in spec.md §3/§4.1: a
// logical-index-to-storage-index translation that lets Vector present a
// strided, reversed, alternating, repeated or cyclic re-indexing of a
// backing store without copying it. Views compose by wrapping: each
// concrete view holds an inner view and narrows or reorders its index
// space further.
type view interface {
	// size is the number of logical elements this view exposes.
	size() int
	// index translates a logical index (0 <= i < size()) into the index
	// space of the view's storage.
	index(i int) int
	// isPlain reports whether the view is a contiguous, non-remapping
	// window — the only case in which a Vector may hand out its
	// BatchSpan directly, and the only case a Communicator will accept.
	isPlain() bool
}

// plainView is the base case: a contiguous run of n elements, starting at
// storage index 0 in its own index space (composition with an offset is
// handled by wrapping in a simpleSubsetView).
type plainView struct{ n int }

func (p plainView) size() int       { return p.n }
func (p plainView) index(i int) int { return i }
func (p plainView) isPlain() bool   { return true }

// simpleSubsetView selects indices start, start+step, start+2*step, ...
// strictly before end from the inner view.
type simpleSubsetView struct {
	inner      view
	start, end int
	step       int
	n          int
}

func newSimpleSubsetView(inner view, start, step, end int) *simpleSubsetView {
	if step == 0 {
		panic("vector: simple subset view step must be non-zero")
	}
	n := 0
	if step > 0 {
		if end > start {
			n = (end - start + step - 1) / step
		}
	} else {
		if start > end {
			n = (start - end - step - 1) / (-step)
		}
	}
	return &simpleSubsetView{inner: inner, start: start, end: end, step: step, n: n}
}

func (s *simpleSubsetView) size() int { return s.n }
func (s *simpleSubsetView) index(i int) int {
	return s.inner.index(s.start + i*s.step)
}
func (s *simpleSubsetView) isPlain() bool { return s.step == 1 && s.inner.isPlain() && s.start == 0 }

// reversedView walks the inner view back to front.
type reversedView struct{ inner view }

func (r reversedView) size() int { return r.inner.size() }
func (r reversedView) index(i int) int {
	return r.inner.index(r.inner.size() - 1 - i)
}
func (r reversedView) isPlain() bool { return false }

// alternatingView groups the inner view's index space into blocks of
// (included+excluded) elements and exposes only the first `included` of
// each block.
type alternatingView struct {
	inner             view
	included, excluded int
	nBlocks           int
	n                 int
	reverse           bool
}

func newAlternatingView(inner view, included, excluded int, reverse bool) *alternatingView {
	if included <= 0 {
		panic("vector: alternating view included size must be positive")
	}
	block := included + excluded
	total := inner.size()
	nBlocks := total / block
	rem := total % block
	n := nBlocks * included
	if rem > 0 {
		if rem < included {
			n += rem
		} else {
			n += included
		}
	}
	return &alternatingView{inner: inner, included: included, excluded: excluded, nBlocks: nBlocks, n: n, reverse: reverse}
}

func (a *alternatingView) size() int { return a.n }
func (a *alternatingView) index(i int) int {
	block := i / a.included
	within := i % a.included
	if a.reverse {
		within = a.included - 1 - within
	}
	logical := block*(a.included+a.excluded) + within
	return a.inner.index(logical)
}
func (a *alternatingView) isPlain() bool { return false }

// repeatedView repeats every element of the inner view k times in place
// (0,0,0,1,1,1,2,2,2,...).
type repeatedView struct {
	inner view
	k     int
}

func (r repeatedView) size() int { return r.inner.size() * r.k }
func (r repeatedView) index(i int) int {
	return r.inner.index(i / r.k)
}
func (r repeatedView) isPlain() bool { return false }

// cyclicView repeats the whole inner sequence k times
// (0,1,2,0,1,2,0,1,2,...).
type cyclicView struct {
	inner view
	k     int
}

func (c cyclicView) size() int { return c.inner.size() * c.k }
func (c cyclicView) index(i int) int {
	n := c.inner.size()
	return c.inner.index(i % n)
}
func (c cyclicView) isPlain() bool { return false }

// newDirectedView exposes the inner view forwards (direction=+1) or backwards
// (direction=-1); it is the named entry point for directed_subset_reference
// and is equivalent to a plain pass-through or a reversedView.
func newDirectedView(inner view, direction int) view {
	switch direction {
	case 1:
		return inner
	case -1:
		return reversedView{inner: inner}
	default:
		panic("vector: directed view direction must be +1 or -1")
	}
}
