package discretize

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lattice samples the shape with a regular grid of the given spacing,
// centered on the shape's bounds so the layout is symmetric. Axes with
// zero extent collapse to a single flat layer. The result depends only
// on the shape and spacing.
func Lattice(s Shape, spacing float64) []mgl64.Vec3 {
	lo, hi := s.Bounds()
	var coords [3][]float64
	for a := 0; a < 3; a++ {
		extent := hi[a] - lo[a]
		mid := 0.5 * (hi[a] + lo[a])
		if extent <= spacing*1e-9 {
			coords[a] = []float64{mid}
			continue
		}
		n := int(math.Ceil(extent/spacing - 1e-9))
		start := mid - 0.5*float64(n-1)*spacing
		for k := 0; k < n; k++ {
			coords[a] = append(coords[a], start+float64(k)*spacing)
		}
	}

	var pts []mgl64.Vec3
	for _, x := range coords[0] {
		for _, y := range coords[1] {
			for _, z := range coords[2] {
				p := mgl64.Vec3{x, y, z}
				if s.Contains(p) {
					pts = append(pts, p)
				}
			}
		}
	}
	return pts
}
