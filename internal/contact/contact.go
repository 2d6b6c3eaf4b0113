// Package contact resolves repulsive forces between registered body
// pairs.
//
// Per sub-step a [Pair] refreshes its two directional neighbor
// relations, accumulates a contact density on each side from closing
// particle pairs, and converts density into a normal force. The force
// is strictly repulsive: zero density gives exactly zero force, and a
// receding pair contributes nothing.
package contact

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/compute"
	"github.com/san-kum/sphsim/internal/neighbor"
)

// jacobianFloor keeps a crushed neighbor's volume ratio from blowing up
// the stiffened density sum.
const jacobianFloor = 0.1

// Diagnostics counts particles whose state was unusable for contact
// evaluation. The count is per sub-step; the loop resets it and decides
// when the fraction is fatal.
type Diagnostics struct {
	invalid atomic.Int64
}

func (d *Diagnostics) count()         { d.invalid.Add(1) }
func (d *Diagnostics) Invalid() int64 { return d.invalid.Load() }
func (d *Diagnostics) Reset()         { d.invalid.Store(0) }

// Pair couples two bodies for contact resolution. It owns the two
// directional relations; densities and forces land in each side's own
// arrays, so pairs never write across bodies.
type Pair struct {
	A, B *body.Body

	aToB *neighbor.Relation
	bToA *neighbor.Relation

	// stiffened is set when exactly one side is rigid; density sums are
	// then penalized by the neighbor's volumetric deformation.
	stiffened bool

	diag *Diagnostics
}

// NewPair registers two distinct bodies for contact.
func NewPair(a, b *body.Body, diag *Diagnostics) *Pair {
	return &Pair{
		A:         a,
		B:         b,
		aToB:      neighbor.NewContact(a, b),
		bToA:      neighbor.NewContact(b, a),
		stiffened: a.Rigid != b.Rigid,
		diag:      diag,
	}
}

// Update refreshes both directional relations from current positions.
// Callers rebuild the body indices first.
func (p *Pair) Update() {
	p.aToB.Update()
	p.bToA.Update()
}

// AddDensities accumulates contact density on both sides. Only closing
// pairs contribute; non-finite state zeroes the particle's contribution
// and is counted.
func (p *Pair) AddDensities() {
	p.addDensity(p.A, p.B, p.aToB)
	p.addDensity(p.B, p.A, p.bToA)
}

func (p *Pair) addDensity(src, dst *body.Body, rel *neighbor.Relation) {
	compute.ForEach(src.Len(), func(i int) {
		if !finiteVec(src.Pos[i]) || !finiteVec(src.Vel[i]) || src.Vol[i] <= 0 {
			p.diag.count()
			return
		}
		sum := 0.0
		for _, pr := range rel.Lists[i] {
			j := pr.J
			if !finiteVec(dst.Pos[j]) || !finiteVec(dst.Vel[j]) {
				p.diag.count()
				continue
			}
			// closing test: relative velocity against the pair direction
			if src.Vel[i].Sub(dst.Vel[j]).Dot(pr.E) >= 0 {
				continue
			}
			w := pr.W * dst.Mass[j]
			if p.stiffened {
				w /= math.Max(dst.F[j].Det(), jacobianFloor)
			}
			sum += w
		}
		src.ContactDensity[i] += sum
	})
}

// AddForces converts the accumulated densities into repulsive forces on
// both sides' particles.
func (p *Pair) AddForces() {
	p.addForce(p.A, p.B, p.aToB)
	p.addForce(p.B, p.A, p.bToA)
}

func (p *Pair) addForce(src, dst *body.Body, rel *neighbor.Relation) {
	kSrc := src.Law.WaveSpeed() * src.Law.WaveSpeed()
	kDst := dst.Law.WaveSpeed() * dst.Law.WaveSpeed()
	compute.ForEach(src.Len(), func(i int) {
		if !isFinite(src.ContactDensity[i]) {
			p.diag.count()
			return
		}
		var force mgl64.Vec3
		for _, pr := range rel.Lists[i] {
			pStar := 0.5 * (src.ContactDensity[i]*kSrc + dst.ContactDensity[pr.J]*kDst)
			if pStar == 0 {
				continue
			}
			// DW < 0 inside support, so the force points along E, away
			// from the neighbor.
			force = force.Add(pr.E.Mul(-2 * pStar * src.Vol[i] * dst.Vol[pr.J] * pr.DW))
		}
		src.ContactForce[i] = src.ContactForce[i].Add(force)
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return isFinite(v.X()) && isFinite(v.Y()) && isFinite(v.Z())
}
