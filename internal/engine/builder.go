package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/discretize"
	"github.com/san-kum/sphsim/internal/dynamics"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/material"
	"github.com/san-kum/sphsim/internal/rigid"
)

// FromScene assembles a ready engine from a validated scene: bodies are
// discretized, relations built and every operator the scene names is
// registered. Metrics are not wired here; callers attach the observers
// they want.
func FromScene(s *config.Scene) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	e := New(Settings{
		Gravity:            vec3(s.Gravity),
		EndTime:            s.EndTime,
		OutputInterval:     s.OutputInterval,
		Safety:             s.Safety,
		MaxDt:              s.MaxDt,
		MinDt:              s.MinDt,
		MaxInvalidFraction: s.MaxInvalidFraction,
	})

	byName := make(map[string]*body.Body, len(s.Bodies))
	for i := range s.Bodies {
		spec := &s.Bodies[i]
		b, err := buildBody(spec, s.Dim)
		if err != nil {
			return nil, err
		}
		e.AddBody(b)
		byName[spec.Name] = b
	}

	for i := range s.Bodies {
		spec := &s.Bodies[i]
		b := byName[spec.Name]
		if spec.Holder != nil {
			e.AddConstraint(dynamics.NewFixedRegion(b, vec3(spec.Holder.Min), vec3(spec.Holder.Max)))
		}
		if spec.Damping != nil {
			r := e.relaxationOf(b)
			if r == nil {
				return nil, fmt.Errorf("engine: damping on rigid body %q", spec.Name)
			}
			e.AddDamper(dynamics.NewDamper(b, r.Inner(),
				spec.Damping.Viscosity, spec.Damping.Ratio, s.Seed))
		}
	}

	for _, pair := range s.Contacts {
		e.AddContact(byName[pair[0]], byName[pair[1]])
	}

	for i := range s.Links {
		l, err := buildLink(&s.Links[i], byName, e.set.Gravity)
		if err != nil {
			return nil, err
		}
		e.AddLink(l)
	}
	return e, nil
}

func buildBody(spec *config.Body, dim int) (*body.Body, error) {
	shape, err := makeShape(&spec.Shape, dim)
	if err != nil {
		return nil, fmt.Errorf("engine: body %q: %w", spec.Name, err)
	}
	law, err := material.New(spec.Material.Law,
		spec.Material.Density, spec.Material.Youngs, spec.Material.Poisson)
	if err != nil {
		return nil, fmt.Errorf("engine: body %q: %w", spec.Name, err)
	}

	h := kernel.SmoothingLength(spec.Spacing)
	var kern kernel.Kernel
	switch spec.Kernel {
	case "", "cubic":
		kern = kernel.NewCubicSpline(dim, h)
	case "wendland":
		kern = kernel.NewWendlandC2(dim, h)
	default:
		return nil, fmt.Errorf("engine: body %q: unknown kernel %q", spec.Name, spec.Kernel)
	}

	var pos []mgl64.Vec3
	var vols []float64
	if spec.Shell {
		pos, vols, err = discretize.Shell(shape, spec.Spacing)
		if err != nil {
			return nil, fmt.Errorf("engine: body %q: %w", spec.Name, err)
		}
	} else {
		pos = discretize.Lattice(shape, spec.Spacing)
	}
	if len(pos) == 0 {
		return nil, fmt.Errorf("engine: body %q discretizes to no particles", spec.Name)
	}

	b, err := body.New(spec.Name, dim, spec.Spacing, law, kern, pos, vols)
	if err != nil {
		return nil, fmt.Errorf("engine: body %q: %w", spec.Name, err)
	}
	b.Rigid = spec.Rigid
	v := vec3(spec.Velocity)
	for i := range b.Vel {
		b.Vel[i] = v
	}
	return b, nil
}

func makeShape(spec *config.Shape, dim int) (discretize.Shape, error) {
	center := vec3(spec.Center)
	var s discretize.Shape
	switch spec.Kind {
	case "box":
		s = discretize.Box{Center: center, Size: vec3(spec.Size)}
	case "ball":
		s = discretize.Ball{Center: center, Radius: spec.Radius}
	case "tube":
		s = discretize.Tube{Center: center, Outer: spec.Outer, Inner: spec.Inner, Length: spec.Length}
	default:
		return nil, fmt.Errorf("unknown shape kind %q", spec.Kind)
	}
	if dim == 2 {
		s = discretize.Flatten(s)
	}
	return s, nil
}

func buildLink(spec *config.Link, byName map[string]*body.Body, sceneGravity mgl64.Vec3) (*rigid.Link, error) {
	b := byName[spec.Body]
	g := sceneGravity
	if spec.Gravity != nil {
		g = vec3(*spec.Gravity)
	}

	var factory rigid.Factory
	switch spec.Kind {
	case "free", "":
		factory = func(mass float64, start rigid.Pose) rigid.Integrator {
			return rigid.NewFreeBody(mass, g, start)
		}
	case "slider":
		axis := vec3(spec.Axis)
		factory = func(mass float64, start rigid.Pose) rigid.Integrator {
			return rigid.NewSlider(mass, axis, g, start)
		}
	default:
		return nil, fmt.Errorf("engine: link on %q: unknown kind %q", spec.Body, spec.Kind)
	}

	if spec.Region != nil {
		return rigid.NewLinkRegion(b, vec3(spec.Region.Min), vec3(spec.Region.Max), factory)
	}
	return rigid.NewLink(b, factory), nil
}

func vec3(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}
