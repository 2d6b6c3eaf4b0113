package compute

// Serial runs every sweep on the calling goroutine. Useful when a run
// must be bit-for-bit reproducible or under profiling where goroutine
// scheduling noise hides the signal.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) ForEach(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}
