package compute

import (
	"runtime"
	"sync"
)

// smallSweep is the particle count below which goroutine fan-out costs
// more than it saves.
const smallSweep = 256

type CPU struct {
	workers int
}

func NewCPU() *CPU {
	return &CPU{workers: runtime.NumCPU()}
}

func (c *CPU) Name() string { return "cpu" }

func (c *CPU) ForEach(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < smallSweep || c.workers <= 1 {
		fn(0, n)
		return
	}

	workers := c.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
