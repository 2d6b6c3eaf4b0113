package dynamics

import (
	"math/rand"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/neighbor"
)

// DefaultDampingRatio is the fraction of sub-steps a random-choice
// damper fires on.
const DefaultDampingRatio = 0.5

// Damper removes relative velocity between reference neighbors with a
// pairwise implicit splitting sweep. Every pair update transfers
// momentum exactly, so the body total is conserved to round-off no
// matter how the sweep is ordered.
//
// With Ratio below one the damper becomes random-choice: each sub-step
// it fires with probability Ratio and then applies the operator with
// dt/Ratio, keeping the expected dissipation per unit time unchanged.
type Damper struct {
	Viscosity float64
	Ratio     float64

	b     *body.Body
	inner *neighbor.Relation
	rng   *rand.Rand
	order []int
}

// NewDamper builds a damper over an existing inner relation. Ratio at
// or above one disables the random choice.
func NewDamper(b *body.Body, inner *neighbor.Relation, viscosity, ratio float64, seed int64) *Damper {
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	order := make([]int, b.Len())
	for i := range order {
		order[i] = i
	}
	return &Damper{
		Viscosity: viscosity,
		Ratio:     ratio,
		b:         b,
		inner:     inner,
		rng:       rand.New(rand.NewSource(seed)),
		order:     order,
	}
}

// Apply damps the body's velocities over dt. The sweep is sequential:
// pair updates read the velocities written by earlier pairs in the same
// sweep, which is what keeps the implicit form unconditionally stable.
func (d *Damper) Apply(dt float64) {
	if d.Ratio < 1 {
		if d.rng.Float64() > d.Ratio {
			return
		}
		dt = dt / d.Ratio
	}
	d.rng.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	h := d.b.Kern.H()
	for _, i := range d.order {
		d.relax(i, dt, h)
	}
}

// relax runs the implicit pair updates of particle i's neighborhood.
func (d *Damper) relax(i int, dt, h float64) {
	b := d.b
	vi := b.Vel[i]
	mi := b.Mass[i]
	for _, p := range d.inner.Lists[i] {
		j := p.J
		mj := b.Mass[j]
		// DW < 0 keeps the parameter negative and the solve stable.
		eta := 2 * d.Viscosity * p.DW * b.Vol[i] * b.Vol[j] * dt
		vd := vi.Sub(b.Vel[j]).Mul(1 / (p.R + 0.01*h))
		inc := vd.Mul(eta / (mi*mj - eta*(mi+mj)))
		vi = vi.Add(inc.Mul(mj))
		b.Vel[j] = b.Vel[j].Sub(inc.Mul(mi))
	}
	b.Vel[i] = vi
}
