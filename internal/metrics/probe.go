package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/engine"
)

// Probe reads one coordinate of one particle, by body name. A probe on
// a missing body or particle reports NaN rather than hiding the
// mistake.
type Probe struct {
	body     string
	particle int
	axis     int
	value    float64
}

func NewProbe(bodyName string, particle, axis int) *Probe {
	return &Probe{body: bodyName, particle: particle, axis: axis, value: math.NaN()}
}

func (p *Probe) Name() string {
	return fmt.Sprintf("probe:%s:%d:%c", p.body, p.particle, "xyz"[p.axis])
}

func (p *Probe) Observe(t float64, bodies []*body.Body) {
	for _, b := range bodies {
		if b.Name != p.body {
			continue
		}
		if p.particle < 0 || p.particle >= b.Len() {
			p.value = math.NaN()
			return
		}
		p.value = b.Pos[p.particle][p.axis]
		return
	}
	p.value = math.NaN()
}

func (p *Probe) Value() float64 { return p.value }

func (p *Probe) Reset() { p.value = math.NaN() }

// Build maps observer names from a scene to metrics. Plain names are
// kinetic_energy, max_velocity and momentum; probes follow
// probe:<body>:<particle>:<x|y|z>.
func Build(names []string) ([]engine.Metric, error) {
	var ms []engine.Metric
	for _, name := range names {
		switch {
		case name == "kinetic_energy":
			ms = append(ms, NewKineticEnergy())
		case name == "max_velocity":
			ms = append(ms, NewMaxVelocity())
		case name == "momentum":
			ms = append(ms, NewMomentum())
		case strings.HasPrefix(name, "probe:"):
			p, err := parseProbe(name)
			if err != nil {
				return nil, err
			}
			ms = append(ms, p)
		default:
			return nil, fmt.Errorf("metrics: unknown observer %q", name)
		}
	}
	return ms, nil
}

func parseProbe(name string) (*Probe, error) {
	parts := strings.Split(name, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("metrics: probe %q needs body:particle:axis", name)
	}
	particle, err := strconv.Atoi(parts[2])
	if err != nil || particle < 0 {
		return nil, fmt.Errorf("metrics: probe %q has a bad particle index", name)
	}
	axis := strings.Index("xyz", parts[3])
	if axis < 0 || len(parts[3]) != 1 {
		return nil, fmt.Errorf("metrics: probe %q axis must be x, y or z", name)
	}
	return NewProbe(parts[1], particle, axis), nil
}
