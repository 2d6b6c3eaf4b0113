package engine_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/dynamics"
	"github.com/san-kum/sphsim/internal/engine"
	"github.com/san-kum/sphsim/internal/metrics"
)

var _ = Describe("Engine", func() {
	Describe("a free elastic body at rest", func() {
		It("shows no numerical drift", func() {
			s := &config.Scene{
				Name:               "rest",
				Dim:                2,
				EndTime:            0.02,
				OutputInterval:     0.01,
				Safety:             config.DefaultSafety,
				MinDt:              config.DefaultMinDt,
				MaxInvalidFraction: config.DefaultMaxInvalidFraction,
				Seed:               config.DefaultSeed,
				Bodies: []config.Body{{
					Name:     "block",
					Shape:    config.Shape{Kind: "box", Size: [3]float64{0.5, 0.5, 0}},
					Spacing:  0.05,
					Material: config.Material{Law: "linear_elastic", Density: 1000, Youngs: 1e4, Poisson: 0.3},
				}},
			}
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			start := e.Frame()
			_, err = e.Run(nil)
			Expect(err).NotTo(HaveOccurred())

			end := e.Frame()
			for i := range end.Bodies[0].Pos {
				for a := 0; a < 3; a++ {
					Expect(end.Bodies[0].Pos[i][a]).To(
						BeNumerically("~", start.Bodies[0].Pos[i][a], 1e-12))
				}
				Expect(end.Bodies[0].Speed[i]).To(BeZero())
			}
		})
	})

	Describe("a held plate with no load", func() {
		It("stays exactly where it started", func() {
			s := config.GetPreset("plate")
			s.EndTime = 0.01
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			start := e.Frame()
			_, err = e.Run(nil)
			Expect(err).NotTo(HaveOccurred())

			end := e.Frame()
			for k := range end.Bodies {
				for i := range end.Bodies[k].Pos {
					for a := 0; a < 3; a++ {
						Expect(end.Bodies[k].Pos[i][a]).To(
							BeNumerically("~", start.Bodies[k].Pos[i][a], 1e-12))
					}
				}
			}
		})
	})

	Describe("two bodies out of contact range", func() {
		It("exchanges no force and keeps both velocities", func() {
			s := config.GetPreset("collision")
			s.Bodies[0].Shape.Center = [3]float64{-1, 0, 0}
			s.Bodies[1].Shape.Center = [3]float64{1, 0, 0}
			s.EndTime = 0.01
			s.OutputInterval = 0.005
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Run(nil)
			Expect(err).NotTo(HaveOccurred())

			for k, b := range e.Bodies() {
				want := 1.0
				if k == 1 {
					want = -1.0
				}
				for i := range b.Vel {
					Expect(b.Vel[i].X()).To(BeNumerically("~", want, 1e-12))
					Expect(b.Vel[i].Y()).To(BeNumerically("~", 0, 1e-12))
					Expect(b.ContactDensity[i]).To(BeZero())
					Expect(b.ContactForce[i].Len()).To(BeZero())
				}
			}
		})
	})

	Describe("a free rigid body under gravity", func() {
		It("falls in closed form through the coupling", func() {
			s := &config.Scene{
				Name:               "fall",
				Dim:                2,
				Gravity:            [3]float64{0, -1, 0},
				EndTime:            1,
				OutputInterval:     0.1,
				Safety:             config.DefaultSafety,
				MaxDt:              1e-3,
				MinDt:              config.DefaultMinDt,
				MaxInvalidFraction: config.DefaultMaxInvalidFraction,
				Seed:               config.DefaultSeed,
				Bodies: []config.Body{{
					Name:     "ball",
					Shape:    config.Shape{Kind: "ball", Center: [3]float64{0, 0.5, 0}, Radius: 0.15},
					Spacing:  0.05,
					Material: config.Material{Law: "neo_hookean", Density: 1000, Youngs: 5e4, Poisson: 0.45},
					Rigid:    true,
				}},
				Links: []config.Link{{Body: "ball", Kind: "free"}},
			}
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			b := e.Bodies()[0]
			y0 := b.Pos[0].Y()
			_, err = e.Run(nil)
			Expect(err).NotTo(HaveOccurred())

			T := e.Time().Now
			Expect(T).To(BeNumerically(">=", 1.0))
			Expect(b.Pos[0].Y() - y0).To(BeNumerically("~", -0.5*T*T, 1e-9))
			Expect(b.Vel[0].Y()).To(BeNumerically("~", -T, 1e-9))
		})
	})

	Describe("the head-on collision preset", func() {
		It("keeps total momentum balanced and dissipates energy", func() {
			s := config.GetPreset("collision")
			s.EndTime = 0.2
			ms, err := metrics.Build(s.Observers)
			Expect(err).NotTo(HaveOccurred())
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range ms {
				e.AddMetric(m)
			}

			res, err := e.Run(nil)
			Expect(err).NotTo(HaveOccurred())

			totalMass := 0.0
			for _, b := range e.Bodies() {
				for i := range b.Mass {
					totalMass += b.Mass[i]
				}
			}
			mom := res.Series["momentum"]
			Expect(mom).To(HaveLen(res.Frames))
			for _, p := range mom {
				Expect(p).To(BeNumerically("<", 1e-6*totalMass))
			}

			ke := res.Series["kinetic_energy"]
			Expect(ke[0]).To(BeNumerically(">", 0))
			Expect(ke[len(ke)-1]).To(BeNumerically("<", ke[0]))
		})
	})

	Describe("fatal sub-step conditions", func() {
		It("aborts when the adaptive step underflows", func() {
			s := config.GetPreset("plate")
			s.MinDt = 1
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			res, err := e.Run(nil)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, engine.ErrTimeStepUnderflow)).To(BeTrue())

			var se *engine.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Component).To(Equal("timestep"))
			Expect(res.Frames).To(Equal(1), "the initial frame is still recorded")
		})

		It("aborts when a particle's configuration collapses", func() {
			s := config.GetPreset("plate")
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			e.Bodies()[0].F[7] = mgl64.Mat3{}
			err = e.Advance(0.001)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, dynamics.ErrDegenerateGeometry)).To(BeTrue())

			var se *engine.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Component).To(Equal("stress"))
			Expect(err.Error()).To(ContainSubstring("particle 7"))
		})

		It("aborts when too many contact inputs are unusable", func() {
			s := config.GetPreset("collision")
			s.MaxInvalidFraction = 0
			e, err := engine.FromScene(s)
			Expect(err).NotTo(HaveOccurred())

			e.Bodies()[0].Vel[3] = mgl64.Vec3{math.NaN(), 0, 0}
			err = e.Advance(0.01)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, engine.ErrContactOverflow)).To(BeTrue())

			var se *engine.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Component).To(Equal("contact"))
		})
	})
})
