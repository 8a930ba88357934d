package leaderswarm

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor calls fn(i) for every i in [0, n) on at most workers goroutines
// and returns once all calls are done. Each call must only write to slot i.
// A non-positive worker count means GOMAXPROCS.
func parallelFor(n, workers int, fn func(i int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	// split into contiguous chunks, one task per chunk
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait() // tasks never fail
}
