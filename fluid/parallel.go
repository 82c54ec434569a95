package fluid

import (
	"runtime"
	"sync"
)

// parallelRowThreshold is the minimum row count to fan out to goroutines.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelRowThreshold = 64

// parallelRows runs fn for every row in [0, h). Rows are split into
// contiguous chunks, one per worker, and the call returns only after every
// row has completed, so each kernel is a full synchronous barrier. fn must
// only write cells of its own row.
func parallelRows(h int, fn func(y int)) {
	if h < parallelRowThreshold {
		for y := 0; y < h; y++ {
			fn(y)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	chunk := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > h {
			end = h
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()
}
