package dynamics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
)

func seedVelocities(b *body.Body) {
	for i := range b.Vel {
		f := float64(i)
		b.Vel[i] = mgl64.Vec3{math.Sin(f), math.Cos(2 * f), math.Sin(3 * f)}
	}
}

func momentum(b *body.Body) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := range b.Vel {
		p = p.Add(b.Vel[i].Mul(b.Mass[i]))
	}
	return p
}

func kineticEnergy(b *body.Body) float64 {
	e := 0.0
	for i := range b.Vel {
		v := b.Vel[i]
		e += 0.5 * b.Mass[i] * v.Dot(v)
	}
	return e
}

func TestDampingConservesMomentum(t *testing.T) {
	b := latticeBody(t, "block", 3, 4, 4, 4, 0.1)
	seedVelocities(b)
	r := NewRelaxation(b)
	d := NewDamper(b, r.Inner(), 50, 1, 1)

	before := momentum(b)
	for step := 0; step < 20; step++ {
		d.Apply(1e-3)
	}
	after := momentum(b)

	if drift := after.Sub(before).Len(); drift > 1e-9*(1+before.Len()) {
		t.Errorf("momentum drifted by %g: %v -> %v", drift, before, after)
	}
}

func TestDampingDissipates(t *testing.T) {
	b := latticeBody(t, "block", 3, 4, 4, 4, 0.1)
	seedVelocities(b)
	r := NewRelaxation(b)
	d := NewDamper(b, r.Inner(), 50, 1, 1)

	before := kineticEnergy(b)
	for step := 0; step < 20; step++ {
		d.Apply(1e-3)
	}
	after := kineticEnergy(b)

	if after >= before {
		t.Errorf("kinetic energy grew under damping: %g -> %g", before, after)
	}
}

func TestDampingDeterministicForSeed(t *testing.T) {
	build := func() (*body.Body, *Damper) {
		b := latticeBody(t, "block", 3, 3, 3, 3, 0.1)
		seedVelocities(b)
		r := NewRelaxation(b)
		return b, NewDamper(b, r.Inner(), 20, 0.5, 42)
	}
	b1, d1 := build()
	b2, d2 := build()
	for step := 0; step < 30; step++ {
		d1.Apply(1e-3)
		d2.Apply(1e-3)
	}
	for i := range b1.Vel {
		if b1.Vel[i] != b2.Vel[i] {
			t.Fatalf("particle %d diverged: %v vs %v", i, b1.Vel[i], b2.Vel[i])
		}
	}
}

func TestRandomChoiceSkipsAndFires(t *testing.T) {
	b := latticeBody(t, "block", 3, 3, 3, 3, 0.1)
	seedVelocities(b)
	r := NewRelaxation(b)
	d := NewDamper(b, r.Inner(), 20, 0.5, 7)

	fired, skipped := 0, 0
	for step := 0; step < 100; step++ {
		before := b.Vel[0]
		d.Apply(1e-3)
		if b.Vel[0] != before {
			fired++
		} else {
			skipped++
		}
	}
	if fired == 0 || skipped == 0 {
		t.Errorf("ratio 0.5 over 100 steps: fired %d, skipped %d", fired, skipped)
	}
}

func TestDamperRatioClamped(t *testing.T) {
	b := latticeBody(t, "block", 3, 2, 2, 2, 0.1)
	r := NewRelaxation(b)
	for _, ratio := range []float64{0, -0.5, 1.5} {
		d := NewDamper(b, r.Inner(), 1, ratio, 1)
		if d.Ratio != 1 {
			t.Errorf("ratio %g clamped to %g, want 1", ratio, d.Ratio)
		}
	}
}
