// Package metrics implements the engine's frame observers.
package metrics

import (
	"math"

	"github.com/san-kum/sphsim/internal/body"
)

type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(t float64, bodies []*body.Body) {
	e := 0.0
	for _, b := range bodies {
		for i := range b.Vel {
			v := b.Vel[i]
			e += 0.5 * b.Mass[i] * v.Dot(v)
		}
	}
	k.value = e
}

func (k *KineticEnergy) Value() float64 { return k.value }

func (k *KineticEnergy) Reset() { k.value = 0 }

type MaxVelocity struct {
	name  string
	value float64
}

func NewMaxVelocity() *MaxVelocity {
	return &MaxVelocity{name: "max_velocity"}
}

func (m *MaxVelocity) Name() string { return m.name }

func (m *MaxVelocity) Observe(t float64, bodies []*body.Body) {
	top := 0.0
	for _, b := range bodies {
		for i := range b.Vel {
			if v := b.Vel[i].Len(); v > top {
				top = v
			}
		}
	}
	m.value = top
}

func (m *MaxVelocity) Value() float64 { return m.value }

func (m *MaxVelocity) Reset() { m.value = 0 }

// Momentum reports the magnitude of the total linear momentum; handy
// for checking that contacts and damping keep the books balanced.
type Momentum struct {
	name  string
	value float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(t float64, bodies []*body.Body) {
	var px, py, pz float64
	for _, b := range bodies {
		for i := range b.Vel {
			v := b.Vel[i].Mul(b.Mass[i])
			px += v.X()
			py += v.Y()
			pz += v.Z()
		}
	}
	m.value = math.Sqrt(px*px + py*py + pz*pz)
}

func (m *Momentum) Value() float64 { return m.value }

func (m *Momentum) Reset() { m.value = 0 }
