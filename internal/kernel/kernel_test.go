package kernel

import (
	"math"
	"testing"
)

func kernels(h float64) map[string]struct {
	dim int
	k   Kernel
} {
	return map[string]struct {
		dim int
		k   Kernel
	}{
		"cubic2d":    {2, NewCubicSpline(2, h)},
		"cubic3d":    {3, NewCubicSpline(3, h)},
		"wendland2d": {2, NewWendlandC2(2, h)},
		"wendland3d": {3, NewWendlandC2(3, h)},
	}
}

func TestSupportVanishes(t *testing.T) {
	for name, tc := range kernels(1.3) {
		if tc.k.Weight(0) <= 0 {
			t.Errorf("%s: W(0) = %g, want > 0", name, tc.k.Weight(0))
		}
		if r := tc.k.Radius(); r != 2.6 {
			t.Errorf("%s: radius = %g, want 2.6", name, r)
		}
		for _, r := range []float64{tc.k.Radius(), tc.k.Radius() * 1.5} {
			if w := tc.k.Weight(r); w != 0 {
				t.Errorf("%s: W(%g) = %g, want 0", name, r, w)
			}
			if g := tc.k.Grad(r); g != 0 {
				t.Errorf("%s: dW(%g) = %g, want 0", name, r, g)
			}
		}
	}
}

func TestGradNegativeInside(t *testing.T) {
	h := 1.0
	for name, tc := range kernels(h) {
		for _, q := range []float64{0.2, 0.5, 0.9, 1.1, 1.7} {
			if g := tc.k.Grad(q * h); g >= 0 {
				t.Errorf("%s: dW at q=%g is %g, want < 0", name, q, g)
			}
		}
	}
}

// Radial quadrature of W over the support must give unity in the
// kernel's own dimension.
func TestNormalization(t *testing.T) {
	const steps = 20000
	h := 1.3
	for name, tc := range kernels(h) {
		radius := tc.k.Radius()
		dr := radius / steps
		sum := 0.0
		for i := 0; i < steps; i++ {
			r := (float64(i) + 0.5) * dr
			shell := 2 * math.Pi * r // 2D ring
			if tc.dim == 3 {
				shell = 4 * math.Pi * r * r
			}
			sum += tc.k.Weight(r) * shell * dr
		}
		if math.Abs(sum-1) > 1e-4 {
			t.Errorf("%s: integral = %.6f, want 1", name, sum)
		}
	}
}

// Grad must match a finite difference of Weight away from the spline knots.
func TestGradMatchesWeight(t *testing.T) {
	const eps = 1e-6
	h := 1.3
	for name, tc := range kernels(h) {
		for _, q := range []float64{0.3, 0.7, 1.3, 1.8} {
			r := q * h
			fd := (tc.k.Weight(r+eps) - tc.k.Weight(r-eps)) / (2 * eps)
			got := tc.k.Grad(r)
			if math.Abs(fd-got) > 1e-5*math.Abs(fd)+1e-9 {
				t.Errorf("%s: dW(%g) = %g, finite difference %g", name, r, got, fd)
			}
		}
	}
}

func TestSmoothingLength(t *testing.T) {
	if h := SmoothingLength(1.5); math.Abs(h-1.95) > 1e-12 {
		t.Fatalf("smoothing length = %g, want 1.95", h)
	}
}
