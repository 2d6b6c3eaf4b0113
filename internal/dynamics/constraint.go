package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
)

// Constraint pins part of a body after an integrator stage has touched
// its state. Apply must be idempotent: the loop calls it after the
// first half and again after damping.
type Constraint interface {
	Apply()
}

// FixedRegion holds every particle whose reference position falls in an
// axis-aligned box at its reference position with zero velocity. The
// selection happens once, against the reference configuration, so the
// held set never changes as the body deforms.
type FixedRegion struct {
	b   *body.Body
	ids []int
}

// NewFixedRegion selects the held particles of b inside [lo, hi].
func NewFixedRegion(b *body.Body, lo, hi mgl64.Vec3) *FixedRegion {
	f := &FixedRegion{b: b}
	for i, p := range b.Pos0 {
		if p.X() < lo.X() || p.X() > hi.X() ||
			p.Y() < lo.Y() || p.Y() > hi.Y() ||
			p.Z() < lo.Z() || p.Z() > hi.Z() {
			continue
		}
		f.ids = append(f.ids, i)
	}
	return f
}

// Len reports how many particles the region holds.
func (f *FixedRegion) Len() int { return len(f.ids) }

// Apply restores the held particles to their reference position and
// clears velocity and acceleration.
func (f *FixedRegion) Apply() {
	for _, i := range f.ids {
		f.b.Pos[i] = f.b.Pos0[i]
		f.b.Vel[i] = mgl64.Vec3{}
		f.b.Acc[i] = mgl64.Vec3{}
	}
}
