package engine

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/contact"
	"github.com/san-kum/sphsim/internal/dynamics"
	"github.com/san-kum/sphsim/internal/rigid"
)

// Settings are the global knobs of a run. Zero Safety and MaxDt pick
// working defaults; everything else is taken literally.
type Settings struct {
	Gravity            mgl64.Vec3
	EndTime            float64
	OutputInterval     float64
	Safety             float64
	MaxDt              float64
	MinDt              float64
	MaxInvalidFraction float64
}

// Metric consumes the state at every output frame.
type Metric interface {
	Name() string
	Observe(t float64, bodies []*body.Body)
	Value() float64
	Reset()
}

// Recorder persists a snapshot at every output frame.
type Recorder interface {
	WriteSnapshot(bodies []*body.Body, step int) error
}

// TimeState is the loop position: simulated time and completed
// sub-steps.
type TimeState struct {
	Now  float64
	Step int
}

// Result collects what a run produced. Series holds one sample per
// output frame for each metric; Metrics the final values.
type Result struct {
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
	Steps   int
	Frames  int
	Invalid int64 // contact contributions rejected over the whole run
}

// Engine owns one scene's bodies and operators and advances them in a
// fixed sub-step order.
type Engine struct {
	set Settings

	bodies  []*body.Body
	solids  []*dynamics.Relaxation
	solidB  []*body.Body
	pairs   []*contact.Pair
	links   []*rigid.Link
	holds   []dynamics.Constraint
	dampers []*dynamics.Damper
	metrics []Metric

	stepper dynamics.Stepper
	diag    contact.Diagnostics

	time      TimeState
	dt        float64
	prepared  bool
	particles int
	invalid   int64

	times  []float64
	series map[string][]float64
}

// New builds an empty engine. Zero Safety falls back to the default
// margin and zero MaxDt to a tenth of the output interval.
func New(set Settings) *Engine {
	if set.Safety == 0 {
		set.Safety = dynamics.DefaultSafety
	}
	if set.MaxDt == 0 {
		set.MaxDt = set.OutputInterval / 10
	}
	return &Engine{
		set:     set,
		stepper: dynamics.Stepper{Safety: set.Safety, MaxDt: set.MaxDt},
		series:  make(map[string][]float64),
	}
}

// AddBody registers a body. Elastic bodies get a relaxation, rigid ones
// are moved by their link alone.
func (e *Engine) AddBody(b *body.Body) {
	e.bodies = append(e.bodies, b)
	e.particles += b.Len()
	if !b.Rigid {
		r := dynamics.NewRelaxation(b)
		e.solids = append(e.solids, r)
		e.solidB = append(e.solidB, b)
	}
}

// AddContact registers a contact pair between two bodies.
func (e *Engine) AddContact(a, b *body.Body) {
	e.pairs = append(e.pairs, contact.NewPair(a, b, &e.diag))
}

// AddLink registers a rigid coupling.
func (e *Engine) AddLink(l *rigid.Link) { e.links = append(e.links, l) }

// AddConstraint registers a holder applied after each integrator stage
// that touches velocity.
func (e *Engine) AddConstraint(c dynamics.Constraint) { e.holds = append(e.holds, c) }

// AddDamper registers a damper applied between the integrator halves.
func (e *Engine) AddDamper(d *dynamics.Damper) { e.dampers = append(e.dampers, d) }

// AddMetric registers an observer sampled at every output frame.
func (e *Engine) AddMetric(m Metric) { e.metrics = append(e.metrics, m) }

// Bodies exposes the simulated bodies for render surfaces and
// recorders.
func (e *Engine) Bodies() []*body.Body { return e.bodies }

// Time reports the loop position.
func (e *Engine) Time() TimeState { return e.time }

// Dt is the sub-step size the next iteration will use.
func (e *Engine) Dt() float64 { return e.dt }

// Settings returns the run configuration.
func (e *Engine) Settings() Settings { return e.set }

// Done reports whether simulated time reached the end.
func (e *Engine) Done() bool { return e.time.Now >= e.set.EndTime }

// relaxationOf finds the relaxation driving b, nil for rigid bodies.
func (e *Engine) relaxationOf(b *body.Body) *dynamics.Relaxation {
	for _, r := range e.solids {
		if r.Body() == b {
			return r
		}
	}
	return nil
}

// prepare runs once before the first sub-step: spatial indices, metric
// reset and the initial step size.
func (e *Engine) prepare() {
	if e.prepared {
		return
	}
	e.prepared = true
	for _, b := range e.bodies {
		b.RebuildIndex()
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	e.dt = e.stepper.Size(e.solidB...)
}

// step advances all bodies by one sub-step of size dt.
//
// The order is load-bearing: contact densities before contact forces so
// both sides of a pair see complete densities, the coupling exchange on
// the forces of this sub-step, holders after every stage that writes
// velocities, and the next step size from the freshly moved state.
func (e *Engine) step(dt float64) error {
	for _, b := range e.bodies {
		b.ResetStep()
	}
	e.diag.Reset()

	for _, p := range e.pairs {
		p.Update()
		p.AddDensities()
	}
	for _, p := range e.pairs {
		p.AddForces()
	}
	if n := e.diag.Invalid(); n > 0 {
		e.invalid += n
		if frac := float64(n) / float64(e.particles); frac > e.set.MaxInvalidFraction {
			return e.fail("contact", fmt.Errorf("%d of %d contact inputs rejected: %w",
				n, e.particles, ErrContactOverflow))
		}
	}

	for _, l := range e.links {
		if err := l.Exchange(dt); err != nil {
			return e.fail("coupling", err)
		}
	}

	for _, s := range e.solids {
		s.FirstHalf(dt, e.set.Gravity)
	}
	for _, c := range e.holds {
		c.Apply()
	}
	for _, d := range e.dampers {
		d.Apply(dt)
	}
	for _, c := range e.holds {
		c.Apply()
	}
	for _, s := range e.solids {
		if err := s.SecondHalf(dt, e.set.Gravity); err != nil {
			return e.fail("stress", err)
		}
	}
	for _, c := range e.holds {
		c.Apply()
	}

	for _, b := range e.bodies {
		b.RebuildIndex()
	}

	e.dt = e.stepper.Size(e.solidB...)
	if e.dt < e.set.MinDt {
		return e.fail("timestep", fmt.Errorf("step size %.3g below minimum %.3g: %w",
			e.dt, e.set.MinDt, ErrTimeStepUnderflow))
	}

	e.time.Now += dt
	e.time.Step++
	return nil
}

func (e *Engine) fail(component string, err error) error {
	return &StepError{Step: e.time.Step, Time: e.time.Now, Component: component, Wrapped: err}
}

// Advance runs sub-steps until the given interval of simulated time has
// passed, or the end time is reached. The last sub-step may overshoot
// the interval by less than one step size.
func (e *Engine) Advance(interval float64) error {
	e.prepare()
	target := math.Min(e.time.Now+interval, e.set.EndTime)
	for e.time.Now < target {
		if err := e.step(e.dt); err != nil {
			return err
		}
	}
	return nil
}

// Run advances to the end time, sampling metrics and recording a
// snapshot at every output interval. Recording failures end the run.
// The partially filled result is returned alongside any error.
func (e *Engine) Run(rec Recorder) (*Result, error) {
	e.prepare()
	if err := e.emit(rec); err != nil {
		return e.result(), err
	}
	for e.time.Now < e.set.EndTime {
		if err := e.Advance(e.set.OutputInterval); err != nil {
			return e.result(), err
		}
		if err := e.emit(rec); err != nil {
			return e.result(), err
		}
	}
	return e.result(), nil
}

// emit samples the metrics and writes one snapshot frame.
func (e *Engine) emit(rec Recorder) error {
	e.times = append(e.times, e.time.Now)
	for _, m := range e.metrics {
		m.Observe(e.time.Now, e.bodies)
		e.series[m.Name()] = append(e.series[m.Name()], m.Value())
	}
	if rec == nil {
		return nil
	}
	if err := rec.WriteSnapshot(e.bodies, e.time.Step); err != nil {
		return fmt.Errorf("engine: record frame: %w", err)
	}
	return nil
}

func (e *Engine) result() *Result {
	r := &Result{
		Times:   e.times,
		Series:  e.series,
		Metrics: make(map[string]float64, len(e.metrics)),
		Steps:   e.time.Step,
		Frames:  len(e.times),
		Invalid: e.invalid,
	}
	for _, m := range e.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	return r
}
