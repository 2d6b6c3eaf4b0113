package dynamics

import (
	"math"
	"sync"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/compute"
)

// DefaultSafety scales the raw stability limit; the classic leapfrog
// margin.
const DefaultSafety = 0.6

// Stepper sizes sub-steps from the acoustic and advection limits of the
// governing bodies. It is stateless: Size can be called at any point of
// the loop and depends only on the bodies passed in.
type Stepper struct {
	Safety float64 // fraction of the raw limit, (0,1]
	MaxDt  float64 // upper clamp, also the degenerate fallback
}

// Size returns the largest stable sub-step for the given bodies: the
// smoothing length over the stress-wave speed and over the fastest
// particle, whichever is smaller, scaled by Safety and clamped to
// MaxDt. Bodies at rest with zero stiffness impose no limit; with no
// limit at all the result is MaxDt, never zero.
func (s Stepper) Size(bodies ...*body.Body) float64 {
	limit := math.MaxFloat64
	for _, b := range bodies {
		h := b.Kern.H()
		if c := b.Law.WaveSpeed(); c > 0 {
			limit = math.Min(limit, h/c)
		}
		if v := maxSpeed(b); v > 0 {
			limit = math.Min(limit, h/v)
		}
	}
	if limit == math.MaxFloat64 {
		return s.MaxDt
	}
	return math.Min(s.Safety*limit, s.MaxDt)
}

// maxSpeed is the largest velocity magnitude in the body, reduced over
// worker-local maxima.
func maxSpeed(b *body.Body) float64 {
	var mu sync.Mutex
	top := 0.0
	compute.ForRange(b.Len(), func(start, end int) {
		local := 0.0
		for i := start; i < end; i++ {
			if v := b.Vel[i].Len(); v > local {
				local = v
			}
		}
		mu.Lock()
		if local > top {
			top = local
		}
		mu.Unlock()
	})
	return top
}
