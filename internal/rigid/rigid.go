// Package rigid couples particle regions to external rigid-body
// degrees of freedom.
//
// The exchange contract per sub-step: gather the net contact force and
// torque on the coupled particles, hand them to the [Integrator], and
// overwrite the particles with the rigid motion of the pose it returns.
// The particle side never integrates a coupled region itself.
//
// [FreeBody] and [Slider] are the built-in integrators; both advance
// translation in closed form under the forces of one sub-step and leave
// orientation alone.
package rigid

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrCouplingMismatch reports an external integrator answer the
// particle side cannot absorb: a non-finite pose, or a jump larger than
// the coupled body's kernel radius within one sub-step.
var ErrCouplingMismatch = errors.New("rigid: coupling returned inconsistent pose")

// Pose is a rigid placement with its first derivatives. Pos locates the
// coupled region's reference center of mass.
type Pose struct {
	Pos    mgl64.Vec3
	Rot    mgl64.Quat
	Vel    mgl64.Vec3
	AngVel mgl64.Vec3
}

// Finite reports whether every pose component is a real number.
func (p Pose) Finite() bool {
	for _, v := range []float64{
		p.Pos.X(), p.Pos.Y(), p.Pos.Z(),
		p.Vel.X(), p.Vel.Y(), p.Vel.Z(),
		p.AngVel.X(), p.AngVel.Y(), p.AngVel.Z(),
		p.Rot.W, p.Rot.V.X(), p.Rot.V.Y(), p.Rot.V.Z(),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Integrator owns the state of one external rigid degree of freedom and
// advances it under the forces of a sub-step.
type Integrator interface {
	Advance(force, torque mgl64.Vec3, dt float64) (Pose, error)
}

// FreeBody translates freely under the gathered force and its own
// gravity. Torque is discarded; the pose keeps the identity rotation.
type FreeBody struct {
	Mass    float64
	Gravity mgl64.Vec3

	pose Pose
}

// NewFreeBody starts a free body of the given mass at a pose.
func NewFreeBody(mass float64, gravity mgl64.Vec3, start Pose) *FreeBody {
	start.Rot = mgl64.QuatIdent()
	return &FreeBody{Mass: mass, Gravity: gravity, pose: start}
}

// Advance integrates the sub-step in closed form, exact for the
// constant force a sub-step sees.
func (f *FreeBody) Advance(force, _ mgl64.Vec3, dt float64) (Pose, error) {
	a := force.Mul(1 / f.Mass).Add(f.Gravity)
	f.pose.Pos = f.pose.Pos.
		Add(f.pose.Vel.Mul(dt)).
		Add(a.Mul(0.5 * dt * dt))
	f.pose.Vel = f.pose.Vel.Add(a.Mul(dt))
	return f.pose, nil
}

// Slider is a single translational degree of freedom along a fixed
// axis. Force components off the axis are reacted by the joint and
// discarded, as is torque.
type Slider struct {
	Mass    float64
	Axis    mgl64.Vec3 // unit direction of travel
	Gravity mgl64.Vec3

	origin mgl64.Vec3 // pose at q = 0
	q, qd  float64
}

// NewSlider starts a slider at a pose; the pose position becomes q = 0.
func NewSlider(mass float64, axis, gravity mgl64.Vec3, start Pose) *Slider {
	return &Slider{
		Mass:    mass,
		Axis:    axis.Normalize(),
		Gravity: gravity,
		origin:  start.Pos,
	}
}

// Advance integrates the on-axis equation of motion in closed form.
func (s *Slider) Advance(force, _ mgl64.Vec3, dt float64) (Pose, error) {
	a := force.Dot(s.Axis)/s.Mass + s.Gravity.Dot(s.Axis)
	s.q += s.qd*dt + 0.5*a*dt*dt
	s.qd += a * dt
	return Pose{
		Pos: s.origin.Add(s.Axis.Mul(s.q)),
		Rot: mgl64.QuatIdent(),
		Vel: s.Axis.Mul(s.qd),
	}, nil
}
