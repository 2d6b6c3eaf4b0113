package compute

import "fmt"

// Backend executes data-parallel particle sweeps. ForEach must call fn
// over disjoint contiguous ranges covering [0, n) and return only after
// every range has completed, so a sweep acts as a barrier between
// pipeline stages.
type Backend interface {
	Name() string
	ForEach(n int, fn func(start, end int))
}

var active Backend = NewCPU()

func SetBackend(b Backend) { active = b }
func GetBackend() Backend  { return active }

// Select picks a backend by name for the CLI surface.
func Select(name string) (Backend, error) {
	switch name {
	case "cpu", "":
		return NewCPU(), nil
	case "serial":
		return Serial{}, nil
	}
	return nil, fmt.Errorf("compute: unknown backend %q", name)
}

// ForEach runs fn for every index in [0, n) on the active backend.
func ForEach(n int, fn func(i int)) {
	active.ForEach(n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// ForRange exposes the chunk bounds directly for sweeps that keep
// per-worker scratch.
func ForRange(n int, fn func(start, end int)) {
	active.ForEach(n, fn)
}
