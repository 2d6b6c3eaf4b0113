package kernel

// DefaultSmoothingRatio relates smoothing length to particle spacing.
const DefaultSmoothingRatio = 1.3

// Kernel is a radially symmetric smoothing function with compact support.
type Kernel interface {
	// Weight evaluates W(r). Zero at and beyond Radius.
	Weight(r float64) float64
	// Grad evaluates dW/dr. Negative inside the support, zero beyond.
	Grad(r float64) float64
	// Radius is the support radius (2h for both families here).
	Radius() float64
	// H is the smoothing length the kernel was built with.
	H() float64
}

// SmoothingLength derives h from a lattice spacing using the default ratio.
func SmoothingLength(spacing float64) float64 {
	return DefaultSmoothingRatio * spacing
}
