package rigid

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
)

// Link couples a set of particles to one external integrator. The
// coupled set is fixed at construction from reference positions; the
// link is the only writer of those particles' positions and velocities
// during a run.
type Link struct {
	b     *body.Body
	integ Integrator
	ids   []int
	rel   []mgl64.Vec3 // reference offsets from the reference center of mass

	mass    float64
	com     mgl64.Vec3
	inertia mgl64.Mat3

	prev      Pose
	jumpLimit float64
}

// Factory builds the external integrator once the link knows the
// coupled mass and start pose.
type Factory func(mass float64, start Pose) Integrator

// NewLink couples every particle of b.
func NewLink(b *body.Body, factory Factory) *Link {
	ids := make([]int, b.Len())
	for i := range ids {
		ids[i] = i
	}
	return newLink(b, ids, factory)
}

// NewLinkRegion couples only the particles whose reference position
// falls inside [lo, hi].
func NewLinkRegion(b *body.Body, lo, hi mgl64.Vec3, factory Factory) (*Link, error) {
	var ids []int
	for i, p := range b.Pos0 {
		if p.X() < lo.X() || p.X() > hi.X() ||
			p.Y() < lo.Y() || p.Y() > hi.Y() ||
			p.Z() < lo.Z() || p.Z() > hi.Z() {
			continue
		}
		ids = append(ids, i)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("rigid: link region on %s selects no particles", b.Name)
	}
	return newLink(b, ids, factory), nil
}

func newLink(b *body.Body, ids []int, factory Factory) *Link {
	l := &Link{
		b:         b,
		ids:       ids,
		jumpLimit: b.Kern.Radius(),
	}
	for _, i := range ids {
		l.mass += b.Mass[i]
		l.com = l.com.Add(b.Pos0[i].Mul(b.Mass[i]))
	}
	l.com = l.com.Mul(1 / l.mass)
	l.rel = make([]mgl64.Vec3, len(ids))
	for k, i := range ids {
		r := b.Pos0[i].Sub(l.com)
		l.rel[k] = r
		shift := mgl64.Ident3().Mul(r.Dot(r)).Sub(r.OuterProd3(r))
		l.inertia = l.inertia.Add(shift.Mul(b.Mass[i]))
	}
	l.prev = Pose{Pos: l.com, Rot: mgl64.QuatIdent()}
	l.integ = factory(l.mass, l.prev)
	return l
}

// Mass is the total coupled mass.
func (l *Link) Mass() float64 { return l.mass }

// Inertia is the reference inertia tensor about the mass center.
func (l *Link) Inertia() mgl64.Mat3 { return l.inertia }

// Body returns the coupled body.
func (l *Link) Body() *body.Body { return l.b }

// Gather sums the contact forces on the coupled particles and their
// torque about the current mass center.
func (l *Link) Gather() (force, torque mgl64.Vec3) {
	center := l.prev.Pos
	for _, i := range l.ids {
		f := l.b.ContactForce[i]
		force = force.Add(f)
		torque = torque.Add(l.b.Pos[i].Sub(center).Cross(f))
	}
	return force, torque
}

// Exchange runs one coupling round: gather, advance the external
// integrator by dt, validate the answer and constrain the particles to
// the returned pose.
func (l *Link) Exchange(dt float64) error {
	force, torque := l.Gather()
	pose, err := l.integ.Advance(force, torque, dt)
	if err != nil {
		return fmt.Errorf("rigid: link on %s: %w", l.b.Name, err)
	}
	if !pose.Finite() {
		return fmt.Errorf("rigid: link on %s: non-finite pose: %w", l.b.Name, ErrCouplingMismatch)
	}
	if jump := pose.Pos.Sub(l.prev.Pos).Len(); jump > l.jumpLimit {
		return fmt.Errorf("rigid: link on %s: pose jumped %.3g in one sub-step (limit %.3g): %w",
			l.b.Name, jump, l.jumpLimit, ErrCouplingMismatch)
	}
	l.prev = pose
	l.constrain(pose)
	return nil
}

// constrain overwrites the coupled particles with the rigid motion of
// the pose.
func (l *Link) constrain(p Pose) {
	for k, i := range l.ids {
		r := p.Rot.Rotate(l.rel[k])
		l.b.Pos[i] = p.Pos.Add(r)
		l.b.Vel[i] = p.Vel.Add(p.AngVel.Cross(r))
		l.b.Acc[i] = mgl64.Vec3{}
	}
}
