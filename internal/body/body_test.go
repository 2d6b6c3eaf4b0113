package body

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/material"
)

func testLaw() material.Law { return material.NewLinearElastic(1000, 5e4, 0.3) }

func TestNewUniformVolumes(t *testing.T) {
	pos := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	cases := []struct {
		dim     int
		wantVol float64
	}{
		{2, 0.25},
		{3, 0.125},
	}
	for _, tc := range cases {
		k := kernel.NewCubicSpline(tc.dim, kernel.SmoothingLength(0.5))
		b, err := New("slab", tc.dim, 0.5, testLaw(), k, pos, nil)
		if err != nil {
			t.Fatalf("dim %d: %v", tc.dim, err)
		}
		if b.Len() != 3 {
			t.Fatalf("dim %d: len = %d, want 3", tc.dim, b.Len())
		}
		for i := 0; i < b.Len(); i++ {
			if math.Abs(b.Vol[i]-tc.wantVol) > 1e-12 {
				t.Errorf("dim %d: vol[%d] = %g, want %g", tc.dim, i, b.Vol[i], tc.wantVol)
			}
			if want := 1000 * tc.wantVol; math.Abs(b.Mass[i]-want) > 1e-9 {
				t.Errorf("dim %d: mass[%d] = %g, want %g", tc.dim, i, b.Mass[i], want)
			}
			if b.F[i] != mgl64.Ident3() {
				t.Errorf("dim %d: F[%d] not identity", tc.dim, i)
			}
		}
	}
}

func TestNewExplicitVolumes(t *testing.T) {
	pos := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}}
	k := kernel.NewCubicSpline(3, 1.95)
	b, err := New("shell", 3, 1.5, testLaw(), k, pos, []float64{2, 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if b.Vol[0] != 2 || b.Vol[1] != 3 {
		t.Fatalf("volumes = %v", b.Vol)
	}
	if b.Mass[1] != 3000 {
		t.Fatalf("mass[1] = %g, want 3000", b.Mass[1])
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	k := kernel.NewCubicSpline(3, 1.95)
	if _, err := New("empty", 3, 1.5, testLaw(), k, nil, nil); err == nil {
		t.Error("expected error for empty body")
	}
	pos := []mgl64.Vec3{{0, 0, 0}}
	if _, err := New("flat", 3, 0, testLaw(), k, pos, nil); err == nil {
		t.Error("expected error for zero spacing")
	}
	if _, err := New("mismatch", 3, 1.5, testLaw(), k, pos, []float64{1, 2}); err == nil {
		t.Error("expected error for volume count mismatch")
	}
	if _, err := New("hollow", 3, 1.5, testLaw(), k, pos, []float64{0}); err == nil {
		t.Error("expected error for zero volume")
	}
}

func TestResetStep(t *testing.T) {
	pos := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}}
	k := kernel.NewCubicSpline(3, 1.95)
	b, err := New("b", 3, 1.5, testLaw(), k, pos, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b.ContactDensity[0] = 4
	b.ContactForce[1] = mgl64.Vec3{1, 2, 3}
	b.ResetStep()
	if b.ContactDensity[0] != 0 || b.ContactForce[1] != (mgl64.Vec3{}) {
		t.Fatal("contact accumulators not cleared")
	}
}

func TestReferenceCopyIsolated(t *testing.T) {
	pos := []mgl64.Vec3{{0, 0, 0}}
	k := kernel.NewCubicSpline(3, 1.95)
	b, err := New("b", 3, 1.5, testLaw(), k, pos, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b.Pos[0] = mgl64.Vec3{9, 9, 9}
	if b.Pos0[0] != (mgl64.Vec3{0, 0, 0}) {
		t.Fatal("reference positions aliased with current positions")
	}
	pos[0] = mgl64.Vec3{5, 5, 5}
	if b.Pos0[0] != (mgl64.Vec3{0, 0, 0}) {
		t.Fatal("reference positions aliased with caller slice")
	}
}
