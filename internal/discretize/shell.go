package discretize

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// shellSpacingRatio widens the surface spacing relative to the bulk
// resolution: one shell particle stands in for a full column of wall
// material.
const shellSpacingRatio = 10.0 / 3.0

// Shell samples the mid-surface of a thin-walled shape. The particle
// count is the shape volume divided by the surface cell volume
//
//	count = round(V / (ss^2 * thickness)), ss = spacing * 10/3
//
// and the sampler emits exactly that many particles, each carrying an
// equal share of the volume. Supported shapes are flat boxes (plates)
// and tubes; thickness comes from the shape itself.
func Shell(s Shape, spacing float64) ([]mgl64.Vec3, []float64, error) {
	ss := spacing * shellSpacingRatio
	var pts []mgl64.Vec3
	switch sh := s.(type) {
	case Box:
		pts = plateShell(sh, ss, plannedCount(s, ss, boxThickness(sh)))
	case Tube:
		pts = tubeShell(sh, ss, plannedCount(s, ss, 0.5*(sh.Outer-sh.Inner)))
	default:
		return nil, nil, fmt.Errorf("discretize: no shell sampling for %T", s)
	}
	vol := s.Volume() / float64(len(pts))
	vols := make([]float64, len(pts))
	for i := range vols {
		vols[i] = vol
	}
	return pts, vols, nil
}

func plannedCount(s Shape, ss, thickness float64) int {
	n := int(math.Round(s.Volume() / (ss * ss * thickness)))
	if n < 1 {
		n = 1
	}
	return n
}

func boxThickness(b Box) float64 {
	return math.Min(b.Size.X(), math.Min(b.Size.Y(), b.Size.Z()))
}

// rowCounts splits total into rows as evenly as integer arithmetic
// allows; the splits always sum to total exactly.
func rowCounts(total, rows int) []int {
	counts := make([]int, rows)
	for k := 0; k < rows; k++ {
		counts[k] = (total*(k+1))/rows - (total*k)/rows
	}
	return counts
}

// plateShell lays the particles on the box mid-plane normal to its
// thinnest axis, row balanced so the planned count is met exactly.
func plateShell(b Box, ss float64, planned int) []mgl64.Vec3 {
	thin := 0
	for a := 1; a < 3; a++ {
		if b.Size[a] < b.Size[thin] {
			thin = a
		}
	}
	u, v := (thin+1)%3, (thin+2)%3
	if u > v {
		u, v = v, u
	}

	rows := int(math.Round(b.Size[u] / ss))
	if rows < 1 {
		rows = 1
	}
	su := b.Size[u] / float64(rows)

	pts := make([]mgl64.Vec3, 0, planned)
	for k, c := range rowCounts(planned, rows) {
		if c == 0 {
			continue
		}
		sv := b.Size[v] / float64(c)
		uc := b.Center[u] - 0.5*float64(rows-1)*su + float64(k)*su
		for m := 0; m < c; m++ {
			var p mgl64.Vec3
			p[thin] = b.Center[thin]
			p[u] = uc
			p[v] = b.Center[v] - 0.5*float64(c-1)*sv + float64(m)*sv
			pts = append(pts, p)
		}
	}
	return pts
}

// tubeShell lays the particles on the mid-wall cylinder as stacked
// rings, alternate rings staggered by half an angular step.
func tubeShell(t Tube, ss float64, planned int) []mgl64.Vec3 {
	rings := int(math.Round(t.Length / ss))
	if rings < 1 {
		rings = 1
	}
	sz := t.Length / float64(rings)
	radius := 0.25 * (t.Outer + t.Inner) // mid-wall

	pts := make([]mgl64.Vec3, 0, planned)
	for k, c := range rowCounts(planned, rings) {
		if c == 0 {
			continue
		}
		z := t.Center.Z() - 0.5*float64(rings-1)*sz + float64(k)*sz
		offset := 0.5 * float64(k%2)
		for m := 0; m < c; m++ {
			theta := 2 * math.Pi * (float64(m) + offset) / float64(c)
			pts = append(pts, mgl64.Vec3{
				t.Center.X() + radius*math.Cos(theta),
				t.Center.Y() + radius*math.Sin(theta),
				z,
			})
		}
	}
	return pts
}
