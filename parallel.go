package subdiv

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallel is the smallest number of items for which work is spread
// across goroutines.
const minParallel = 64

// splitRanges divides [0, n) into contiguous ranges, one per worker. With
// serial set, or for small n, it returns the single range [0, n).
func splitRanges(n int, serial bool) [][2]int {
	workers := runtime.GOMAXPROCS(0)
	if serial || workers == 1 || n < minParallel {
		return [][2]int{{0, n}}
	}
	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

// runRanges calls fn for every range, concurrently if there is more than one,
// and returns the first error. fn receives the index of its range. Each call
// must only write state owned by its range.
func runRanges(ranges [][2]int, fn func(k, lo, hi int) error) error {
	if len(ranges) == 1 {
		return fn(0, ranges[0][0], ranges[0][1])
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, r := range ranges {
		g.Go(func() error {
			return fn(k, r[0], r[1])
		})
	}
	return g.Wait()
}
