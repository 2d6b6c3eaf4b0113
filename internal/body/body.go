// Package body holds the particle state arenas the engine advances.
//
// A [Body] owns fixed-size flat arrays indexed by particle id. Particle
// count and identity never change after construction; only the field
// values move. Keeping state as parallel slices rather than per-particle
// structs keeps rebuild and sweep cost predictable.
package body

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/grid"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/material"
)

var errNoParticles = errors.New("body: no particles")

// Body is one discretized solid: particle state plus its material law
// and smoothing kernel.
type Body struct {
	Name    string
	Dim     int // 2 or 3
	Spacing float64
	Rigid   bool // constrained to rigid motion, skips stress relaxation

	Law  material.Law
	Kern kernel.Kernel

	// Index over current positions, rebuilt by the loop whenever the
	// body has moved.
	Index *grid.Index

	// Reference configuration, fixed after construction.
	Pos0 []mgl64.Vec3
	Vol  []float64 // reference volume per particle
	Mass []float64

	// Evolving state.
	Pos  []mgl64.Vec3
	Vel  []mgl64.Vec3
	Acc  []mgl64.Vec3 // stress-divergence acceleration, owned by the relaxation stages
	F    []mgl64.Mat3 // deformation gradient
	FDot []mgl64.Mat3
	B    []mgl64.Mat3 // reference correction matrices
	PK1B []mgl64.Mat3 // first Piola-Kirchhoff stress times B, refreshed with stress

	// Contact state, zeroed at every sub-step start.
	ContactDensity []float64
	ContactForce   []mgl64.Vec3
}

// New builds a body from discretized positions. vols supplies the
// reference volume per particle; nil means the uniform lattice volume
// spacing^dim. Mass follows from the law's reference density.
func New(name string, dim int, spacing float64, law material.Law, kern kernel.Kernel, pos []mgl64.Vec3, vols []float64) (*Body, error) {
	if len(pos) == 0 {
		return nil, errNoParticles
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("body %s: spacing %g must be positive", name, spacing)
	}
	if vols != nil && len(vols) != len(pos) {
		return nil, fmt.Errorf("body %s: %d volumes for %d particles", name, len(vols), len(pos))
	}
	n := len(pos)
	b := &Body{
		Name:    name,
		Dim:     dim,
		Spacing: spacing,
		Law:     law,
		Kern:    kern,

		Pos0: append([]mgl64.Vec3(nil), pos...),
		Pos:  append([]mgl64.Vec3(nil), pos...),
		Vol:  make([]float64, n),
		Mass: make([]float64, n),

		Vel:  make([]mgl64.Vec3, n),
		Acc:  make([]mgl64.Vec3, n),
		F:    make([]mgl64.Mat3, n),
		FDot: make([]mgl64.Mat3, n),
		B:    make([]mgl64.Mat3, n),
		PK1B: make([]mgl64.Mat3, n),

		ContactDensity: make([]float64, n),
		ContactForce:   make([]mgl64.Vec3, n),
	}
	b.Index = grid.New(kern.Radius())
	unit := spacing * spacing
	if dim == 3 {
		unit *= spacing
	}
	rho0 := law.Density()
	for i := 0; i < n; i++ {
		v := unit
		if vols != nil {
			v = vols[i]
		}
		if v <= 0 {
			return nil, fmt.Errorf("body %s: particle %d volume %g must be positive", name, i, v)
		}
		b.Vol[i] = v
		b.Mass[i] = rho0 * v
		b.F[i] = mgl64.Ident3()
		b.B[i] = mgl64.Ident3()
	}
	return b, nil
}

// Len is the particle count.
func (b *Body) Len() int { return len(b.Pos) }

// RebuildIndex re-bins the current positions.
func (b *Body) RebuildIndex() { b.Index.Rebuild(b.Pos) }

// ResetStep clears the per-sub-step contact accumulators.
func (b *Body) ResetStep() {
	for i := range b.ContactDensity {
		b.ContactDensity[i] = 0
		b.ContactForce[i] = mgl64.Vec3{}
	}
}
