package material

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func laws(t *testing.T) map[string]Law {
	t.Helper()
	lin, err := New("linear_elastic", 1000, 5e4, 0.45)
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	neo, err := New("neo_hookean", 1000, 5e4, 0.45)
	if err != nil {
		t.Fatalf("neo: %v", err)
	}
	return map[string]Law{"linear": lin, "neo": neo}
}

func TestUndeformedStressFree(t *testing.T) {
	for name, law := range laws(t) {
		s := law.Stress(mgl64.Ident3())
		for i := 0; i < 9; i++ {
			if math.Abs(s[i]) > 1e-9 {
				t.Errorf("%s: stress at identity not zero: %v", name, s)
				break
			}
		}
	}
}

func TestStressSymmetric(t *testing.T) {
	f := mgl64.Mat3{1.05, 0.02, 0, 0.01, 0.97, 0.03, 0, 0.01, 1.02}
	for name, law := range laws(t) {
		s := law.Stress(f)
		st := s.Transpose()
		for i := 0; i < 9; i++ {
			if math.Abs(s[i]-st[i]) > 1e-9 {
				t.Errorf("%s: stress not symmetric: %v", name, s)
				break
			}
		}
	}
}

func TestUniaxialStretchLinear(t *testing.T) {
	lin := NewLinearElastic(1000, 5e4, 0.3)
	e := 1e-3
	f := mgl64.Ident3()
	f.Set(0, 0, 1+e)
	s := lin.Stress(f)

	strain := e + 0.5*e*e // exact Green strain of the stretch axis
	want00 := (lin.lambda + 2*lin.mu) * strain
	want11 := lin.lambda * strain
	if math.Abs(s.At(0, 0)-want00) > 1e-9*want00 {
		t.Errorf("S00 = %g, want %g", s.At(0, 0), want00)
	}
	if math.Abs(s.At(1, 1)-want11) > 1e-9*math.Abs(want11) {
		t.Errorf("S11 = %g, want %g", s.At(1, 1), want11)
	}
	if math.Abs(s.At(0, 1)) > 1e-12 {
		t.Errorf("S01 = %g, want 0", s.At(0, 1))
	}
}

// Both laws linearize to the same small-strain behavior.
func TestSmallStrainAgreement(t *testing.T) {
	ls := laws(t)
	e := 1e-6
	f := mgl64.Mat3{1 + e, e / 2, 0, e / 2, 1 - e, 0, 0, 0, 1}
	a := ls["linear"].Stress(f)
	b := ls["neo"].Stress(f)
	for i := 0; i < 9; i++ {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("laws disagree at small strain:\nlinear %v\nneo    %v", a, b)
		}
	}
}

func TestWaveSpeed(t *testing.T) {
	law := NewLinearElastic(1000, 5e4, 0.45)
	bulk := 5e4 / (3 * (1 - 2*0.45))
	want := math.Sqrt(bulk / 1000)
	if got := law.WaveSpeed(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("wave speed = %g, want %g", got, want)
	}
	if law.Density() != 1000 {
		t.Fatalf("density = %g, want 1000", law.Density())
	}
}

func TestUnknownLaw(t *testing.T) {
	if _, err := New("rubber", 1, 1, 0.3); err == nil {
		t.Fatal("expected error for unknown law")
	}
}
