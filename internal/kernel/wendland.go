package kernel

import "math"

// WendlandC2 is the Wendland C2 kernel with support 2h. Smoother second
// derivative than the cubic spline, which keeps stress fields quieter on
// coarse lattices.
type WendlandC2 struct {
	h     float64
	alpha float64
}

// NewWendlandC2 builds a Wendland C2 kernel for dim 2 or 3.
func NewWendlandC2(dim int, h float64) *WendlandC2 {
	k := &WendlandC2{h: h}
	switch dim {
	case 2:
		k.alpha = 7.0 / (4.0 * math.Pi * h * h)
	default:
		k.alpha = 21.0 / (16.0 * math.Pi * h * h * h)
	}
	return k
}

func (k *WendlandC2) Weight(r float64) float64 {
	q := r / k.h
	if q >= 2 {
		return 0
	}
	d := 1 - 0.5*q
	d2 := d * d
	return k.alpha * d2 * d2 * (2*q + 1)
}

func (k *WendlandC2) Grad(r float64) float64 {
	q := r / k.h
	if q >= 2 {
		return 0
	}
	d := 1 - 0.5*q
	return k.alpha / k.h * (-5 * q * d * d * d)
}

func (k *WendlandC2) Radius() float64 { return 2 * k.h }
func (k *WendlandC2) H() float64      { return k.h }
