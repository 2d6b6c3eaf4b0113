package material

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Law is a constitutive model evaluated per particle. Stress maps a
// deformation gradient to the second Piola-Kirchhoff stress tensor; the
// caller guarantees F is finite with positive determinant.
type Law interface {
	Stress(f mgl64.Mat3) mgl64.Mat3
	// WaveSpeed is the reference stress-wave speed sqrt(K/rho0).
	WaveSpeed() float64
	// Density is the reference density rho0.
	Density() float64
}

// moduli holds the derived Lame constants shared by the solid laws.
type moduli struct {
	rho0, youngs, poisson float64
	lambda, mu, bulk      float64
}

func newModuli(rho0, youngs, poisson float64) moduli {
	return moduli{
		rho0:    rho0,
		youngs:  youngs,
		poisson: poisson,
		lambda:  youngs * poisson / ((1 + poisson) * (1 - 2*poisson)),
		mu:      youngs / (2 * (1 + poisson)),
		bulk:    youngs / (3 * (1 - 2*poisson)),
	}
}

func (m moduli) WaveSpeed() float64 { return math.Sqrt(m.bulk / m.rho0) }
func (m moduli) Density() float64   { return m.rho0 }

// New builds a law by config name.
func New(kind string, rho0, youngs, poisson float64) (Law, error) {
	switch kind {
	case "linear_elastic", "":
		return NewLinearElastic(rho0, youngs, poisson), nil
	case "neo_hookean":
		return NewNeoHookean(rho0, youngs, poisson), nil
	}
	return nil, fmt.Errorf("material: unknown law %q", kind)
}
