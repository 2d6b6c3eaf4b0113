package kernel

import "math"

// CubicSpline is the classic B-spline kernel with support 2h.
type CubicSpline struct {
	h     float64
	alpha float64 // dimensional normalization
}

// NewCubicSpline builds a cubic spline kernel for dim 2 or 3.
func NewCubicSpline(dim int, h float64) *CubicSpline {
	k := &CubicSpline{h: h}
	switch dim {
	case 2:
		k.alpha = 10.0 / (7.0 * math.Pi * h * h)
	default:
		k.alpha = 1.0 / (math.Pi * h * h * h)
	}
	return k
}

func (k *CubicSpline) Weight(r float64) float64 {
	q := r / k.h
	switch {
	case q < 1:
		return k.alpha * (1 - 1.5*q*q + 0.75*q*q*q)
	case q < 2:
		d := 2 - q
		return k.alpha * 0.25 * d * d * d
	}
	return 0
}

func (k *CubicSpline) Grad(r float64) float64 {
	q := r / k.h
	switch {
	case q < 1:
		return k.alpha / k.h * (-3*q + 2.25*q*q)
	case q < 2:
		d := 2 - q
		return k.alpha / k.h * (-0.75 * d * d)
	}
	return 0
}

func (k *CubicSpline) Radius() float64 { return 2 * k.h }
func (k *CubicSpline) H() float64      { return k.h }
