package dynamics

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/compute"
	"github.com/san-kum/sphsim/internal/neighbor"
)

// ErrDegenerateGeometry reports a deformation gradient that stopped
// being invertible, usually after a contact blew a particle through its
// neighbors. The wrapping error names the particle.
var ErrDegenerateGeometry = errors.New("dynamics: deformation gradient degenerate")

// detFloor is the smallest Jacobian still accepted by the stress
// refresh. At or below it the constitutive law has no valid answer.
const detFloor = 1e-12

// Relaxation integrates one elastic body. It owns the body's inner
// relation and reference correction matrices and is the only writer of
// Acc, F, FDot and PK1B between construction and the end of the run.
type Relaxation struct {
	b     *body.Body
	inner *neighbor.Relation
}

// NewRelaxation prepares a body for stress relaxation: builds the inner
// relation over reference positions, derives the correction matrix of
// every particle and evaluates the initial stress state.
func NewRelaxation(b *body.Body) *Relaxation {
	r := &Relaxation{b: b, inner: neighbor.NewInner(b)}
	r.correctConfiguration()
	compute.ForEach(b.Len(), func(i int) {
		r.refreshStress(i)
	})
	return r
}

// Body returns the body this relaxation advances.
func (r *Relaxation) Body() *body.Body { return r.b }

// Inner exposes the reference relation so damping can reuse it.
func (r *Relaxation) Inner() *neighbor.Relation { return r.inner }

// correctConfiguration inverts the reference moment matrix of every
// particle. Particles too sparse for a stable inverse fall back to the
// identity, which degrades them to standard kernel gradients.
func (r *Relaxation) correctConfiguration() {
	b := r.b
	compute.ForEach(b.Len(), func(i int) {
		var m mgl64.Mat3
		for _, p := range r.inner.Lists[i] {
			// x0_j - x0_i = -R*E, grad0 W = DW*E
			w := -b.Vol[p.J] * p.R * p.DW
			m = m.Add(p.E.OuterProd3(p.E).Mul(w))
		}
		b.B[i] = invertMoment(m, b.Dim)
	})
}

// invertMoment inverts the correction moment. Flat bodies carry a rank
// two moment, so the planar block is inverted alone and the out-of-plane
// slot pinned to one.
func invertMoment(m mgl64.Mat3, dim int) mgl64.Mat3 {
	if dim == 2 {
		a, bb := m.At(0, 0), m.At(0, 1)
		c, d := m.At(1, 0), m.At(1, 1)
		det := a*d - bb*c
		if math.Abs(det) < detFloor {
			return mgl64.Ident3()
		}
		return mgl64.Mat3{
			d / det, -c / det, 0,
			-bb / det, a / det, 0,
			0, 0, 1,
		}
	}
	if math.Abs(m.Det()) < detFloor {
		return mgl64.Ident3()
	}
	return m.Inv()
}

// refreshStress recomputes PK1B[i] from the current deformation
// gradient. Returns false when the gradient has degenerated.
func (r *Relaxation) refreshStress(i int) bool {
	b := r.b
	f := b.F[i]
	det := f.Det()
	if math.IsNaN(det) || det <= detFloor {
		return false
	}
	b.PK1B[i] = f.Mul3(b.Law.Stress(f)).Mul3(b.B[i])
	return true
}

// stressAccel is the corrected divergence of the first Piola-Kirchhoff
// stress at particle i, over reference neighbors and volumes.
func (r *Relaxation) stressAccel(i int) mgl64.Vec3 {
	b := r.b
	var acc mgl64.Vec3
	for _, p := range r.inner.Lists[i] {
		sum := b.PK1B[i].Add(b.PK1B[p.J])
		acc = acc.Add(sum.Mul3x1(p.E).Mul(p.DW * b.Vol[p.J]))
	}
	return acc.Mul(1 / b.Law.Density())
}

// FirstHalf kicks velocities by half a step from the current stress,
// contact force and gravity, then drifts positions and deformation
// gradients a full step with the kicked velocity.
func (r *Relaxation) FirstHalf(dt float64, gravity mgl64.Vec3) {
	b := r.b
	half := 0.5 * dt
	compute.ForEach(b.Len(), func(i int) {
		a := r.stressAccel(i).
			Add(gravity).
			Add(b.ContactForce[i].Mul(1 / b.Mass[i]))
		b.Acc[i] = a
		b.Vel[i] = b.Vel[i].Add(a.Mul(half))
	})
	compute.ForEach(b.Len(), func(i int) {
		var grad mgl64.Mat3
		vi := b.Vel[i]
		for _, p := range r.inner.Lists[i] {
			dv := b.Vel[p.J].Sub(vi)
			g := p.E.Mul(p.DW * b.Vol[p.J])
			grad = grad.Add(dv.OuterProd3(g))
		}
		b.FDot[i] = grad.Mul3(b.B[i])
		b.F[i] = b.F[i].Add(b.FDot[i].Mul(dt))
		b.Pos[i] = b.Pos[i].Add(vi.Mul(dt))
	})
}

// SecondHalf refreshes the stress from the drifted deformation
// gradients and applies the second half kick. A gradient that lost
// invertibility aborts the sub-step.
func (r *Relaxation) SecondHalf(dt float64, gravity mgl64.Vec3) error {
	b := r.b
	var bad atomic.Int64
	bad.Store(-1)
	compute.ForEach(b.Len(), func(i int) {
		if !r.refreshStress(i) {
			bad.CompareAndSwap(-1, int64(i))
		}
	})
	if i := bad.Load(); i >= 0 {
		return fmt.Errorf("body %s particle %d (det %.3g): %w",
			b.Name, i, b.F[i].Det(), ErrDegenerateGeometry)
	}
	half := 0.5 * dt
	compute.ForEach(b.Len(), func(i int) {
		a := r.stressAccel(i).
			Add(gravity).
			Add(b.ContactForce[i].Mul(1 / b.Mass[i]))
		b.Acc[i] = a
		b.Vel[i] = b.Vel[i].Add(a.Mul(half))
	})
	return nil
}
