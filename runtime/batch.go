// Package runtime ties a set of per-thread workers to a Config and
// drives parallel dispatch of protocol operations across them: batch
// sizing, task construction, barrier-style synchronization via
// utils/concurrency.ResourceManager, group/party-mapping accessors,
// malicious-check orchestration and teardown.
package runtime

// MinimumChunkSize floors every batch size, and is itself a multiple of
// 128 to keep chunk boundaries aligned for SIMD/bit-packed boolean
// vectors.
const MinimumChunkSize = 256

// NormalizeBatchSize resolves the runtime's signed batch_size
// parameter into a concrete, positive element count. A negative value
// means "divide the total work into |batchSize| equal chunks across
// threads"; a positive value is used literally. Either way the result
// is floored at MinimumChunkSize.
func NormalizeBatchSize(batchSize, total, threads int) int {
	var bs int
	if batchSize < 0 {
		chunks := -batchSize
		if chunks < 1 {
			chunks = 1
		}
		bs = total / (chunks * threads)
		if bs < 1 {
			bs = 1
		}
	} else {
		bs = batchSize
	}
	if bs < MinimumChunkSize {
		bs = MinimumChunkSize
	}
	return bs
}

// MakeBatchSizeDivisibleBy rounds batchSize (after equal-chunk
// resolution via NormalizeBatchSize) up to the nearest multiple of d,
// as aggregation operators like dot-product require. It returns the
// rounded size and the pre-rounding size so a caller can restore it
// afterwards.
func MakeBatchSizeDivisibleBy(batchSize, total, threads, d int) (rounded, previous int) {
	previous = NormalizeBatchSize(batchSize, total, threads)
	if d <= 0 {
		return previous, previous
	}
	rounded = previous
	if rem := rounded % d; rem != 0 {
		rounded += d - rem
	}
	return rounded, previous
}

// ThreadRange is one worker's assigned [Start,End) slice of the total
// work, in element offsets.
type ThreadRange struct {
	Start, End int
}

// GetThreadBatchBoundaries partitions [0,total) into per-thread ranges
// given a resolved batch size: whole_batches = total/batchSize is
// split floor(whole_batches/threads) each, the remainder distributed
// one whole batch at a time to the first threads, and any leftover
// partial batch appended to the last thread's range. The returned
// ranges always sum to total.
func GetThreadBatchBoundaries(total, batchSize, threads int) []ThreadRange {
	if threads < 1 {
		threads = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	wholeBatches := total / batchSize
	tail := total - wholeBatches*batchSize

	base := wholeBatches / threads
	extra := wholeBatches % threads

	ranges := make([]ThreadRange, threads)
	cursor := 0
	for t := 0; t < threads; t++ {
		batches := base
		if t < extra {
			batches++
		}
		size := batches * batchSize
		if t == threads-1 {
			size += tail
		}
		ranges[t] = ThreadRange{Start: cursor, End: cursor + size}
		cursor += size
	}
	return ranges
}
