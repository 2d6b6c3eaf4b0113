package material

import "github.com/go-gl/mathgl/mgl64"

// LinearElastic is the Saint Venant-Kirchhoff solid: linear in the
// Green-Lagrange strain, valid for small to moderate deformation.
type LinearElastic struct {
	moduli
}

func NewLinearElastic(rho0, youngs, poisson float64) *LinearElastic {
	return &LinearElastic{newModuli(rho0, youngs, poisson)}
}

func (l *LinearElastic) Stress(f mgl64.Mat3) mgl64.Mat3 {
	c := f.Transpose().Mul3(f)
	strain := c.Sub(mgl64.Ident3()).Mul(0.5)
	return mgl64.Ident3().Mul(l.lambda * strain.Trace()).Add(strain.Mul(2 * l.mu))
}
