package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/material"
)

func pairBody(t *testing.T, name string, v mgl64.Vec3) *body.Body {
	t.Helper()
	pos := []mgl64.Vec3{{0, 0, 0}, {0.1, 0, 0}}
	law := material.NewLinearElastic(1000, 5e4, 0.3)
	kern := kernel.NewCubicSpline(3, kernel.SmoothingLength(0.1))
	b, err := body.New(name, 3, 0.1, law, kern, pos, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Vel {
		b.Vel[i] = v
	}
	return b
}

func TestKineticEnergy(t *testing.T) {
	b := pairBody(t, "a", mgl64.Vec3{2, 0, 0})
	k := NewKineticEnergy()
	k.Observe(0, []*body.Body{b})

	want := 0.0
	for i := range b.Mass {
		want += 0.5 * b.Mass[i] * 4
	}
	if math.Abs(k.Value()-want) > 1e-12*want {
		t.Errorf("kinetic energy %g, want %g", k.Value(), want)
	}
	k.Reset()
	if k.Value() != 0 {
		t.Error("reset did not clear the value")
	}
}

func TestMomentumCancels(t *testing.T) {
	a := pairBody(t, "a", mgl64.Vec3{1, 0, 0})
	b := pairBody(t, "b", mgl64.Vec3{-1, 0, 0})
	m := NewMomentum()
	m.Observe(0, []*body.Body{a, b})
	if m.Value() > 1e-12 {
		t.Errorf("opposing equal bodies should cancel, got %g", m.Value())
	}
}

func TestMaxVelocity(t *testing.T) {
	a := pairBody(t, "a", mgl64.Vec3{1, 0, 0})
	a.Vel[1] = mgl64.Vec3{0, -3, 0}
	m := NewMaxVelocity()
	m.Observe(0, []*body.Body{a})
	if m.Value() != 3 {
		t.Errorf("max velocity %g, want 3", m.Value())
	}
}

func TestProbeReadsCoordinate(t *testing.T) {
	b := pairBody(t, "ball", mgl64.Vec3{})
	b.Pos[1] = mgl64.Vec3{0.5, -0.25, 0.125}
	p := NewProbe("ball", 1, 1)
	p.Observe(0, []*body.Body{b})
	if p.Value() != -0.25 {
		t.Errorf("probe read %g, want -0.25", p.Value())
	}
	if p.Name() != "probe:ball:1:y" {
		t.Errorf("probe name %q", p.Name())
	}
}

func TestProbeMissingReportsNaN(t *testing.T) {
	b := pairBody(t, "ball", mgl64.Vec3{})
	p := NewProbe("ghost", 0, 0)
	p.Observe(0, []*body.Body{b})
	if !math.IsNaN(p.Value()) {
		t.Errorf("missing body read %g, want NaN", p.Value())
	}
	q := NewProbe("ball", 99, 0)
	q.Observe(0, []*body.Body{b})
	if !math.IsNaN(q.Value()) {
		t.Errorf("out-of-range particle read %g, want NaN", q.Value())
	}
}

func TestBuild(t *testing.T) {
	ms, err := Build([]string{"kinetic_energy", "momentum", "max_velocity", "probe:ball:0:z"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 4 {
		t.Fatalf("built %d metrics, want 4", len(ms))
	}
	wantNames := []string{"kinetic_energy", "momentum", "max_velocity", "probe:ball:0:z"}
	for i, m := range ms {
		if m.Name() != wantNames[i] {
			t.Errorf("metric %d named %q, want %q", i, m.Name(), wantNames[i])
		}
	}

	bad := []string{"entropy", "probe:only:two", "probe:a:x:0", "probe:a:-1:x", "probe:a:0:w"}
	for _, name := range bad {
		if _, err := Build([]string{name}); err == nil {
			t.Errorf("observer %q accepted", name)
		}
	}
}
