package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NeoHookean is a compressible hyperelastic solid that stays well
// behaved under large rotation and stretch.
type NeoHookean struct {
	moduli
}

func NewNeoHookean(rho0, youngs, poisson float64) *NeoHookean {
	return &NeoHookean{newModuli(rho0, youngs, poisson)}
}

func (n *NeoHookean) Stress(f mgl64.Mat3) mgl64.Mat3 {
	c := f.Transpose().Mul3(f)
	j := f.Det()
	cInv := c.Inv()
	return mgl64.Ident3().Mul(n.mu).Add(cInv.Mul(n.lambda*math.Log(j) - n.mu))
}
