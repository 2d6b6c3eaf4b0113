package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSafety             = 0.6
	DefaultOutputInterval     = 0.01
	DefaultMinDt              = 1e-9
	DefaultMaxInvalidFraction = 0.05
	DefaultSeed               = 1
)

// Scene is one simulation case: the bodies, how they interact and how
// long to run. Zero MaxDt resolves to a tenth of the output interval
// when the scene is assembled.
type Scene struct {
	Name               string     `yaml:"name"`
	Dim                int        `yaml:"dim"`
	Gravity            [3]float64 `yaml:"gravity"`
	EndTime            float64    `yaml:"end_time"`
	OutputInterval     float64    `yaml:"output_interval"`
	Safety             float64    `yaml:"safety"`
	MaxDt              float64    `yaml:"max_dt"`
	MinDt              float64    `yaml:"min_dt"`
	MaxInvalidFraction float64    `yaml:"max_invalid_fraction"`
	Seed               int64      `yaml:"seed"`
	Backend            string     `yaml:"backend"`
	Bodies             []Body     `yaml:"bodies"`
	Contacts           [][]string `yaml:"contacts"`
	Links              []Link     `yaml:"links"`
	Observers          []string   `yaml:"observers"`
}

// Body describes one particle body.
type Body struct {
	Name     string     `yaml:"name"`
	Shape    Shape      `yaml:"shape"`
	Spacing  float64    `yaml:"spacing"`
	Shell    bool       `yaml:"shell"` // sample the mid-surface instead of the volume
	Material Material   `yaml:"material"`
	Kernel   string     `yaml:"kernel"` // cubic | wendland
	Velocity [3]float64 `yaml:"velocity"`
	Rigid    bool       `yaml:"rigid"`
	Damping  *Damping   `yaml:"damping"`
	Holder   *Region    `yaml:"holder"`
}

// Shape selects a solid region by kind; only the fields of that kind
// are read. Outer and Inner are tube diameters.
type Shape struct {
	Kind   string     `yaml:"kind"` // box | ball | tube
	Center [3]float64 `yaml:"center"`
	Size   [3]float64 `yaml:"size"`
	Radius float64    `yaml:"radius"`
	Outer  float64    `yaml:"outer"`
	Inner  float64    `yaml:"inner"`
	Length float64    `yaml:"length"`
}

// Material names a constitutive law and its reference constants.
type Material struct {
	Law     string  `yaml:"law"` // linear_elastic | neo_hookean
	Density float64 `yaml:"density"`
	Youngs  float64 `yaml:"youngs"`
	Poisson float64 `yaml:"poisson"`
}

// Damping is the pairwise velocity damping of one body. Ratio below
// one turns on the random-choice variant.
type Damping struct {
	Viscosity float64 `yaml:"viscosity"`
	Ratio     float64 `yaml:"ratio"`
}

// Region is an axis-aligned box selector over reference positions.
type Region struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// Link couples a body, or a region of it, to an external rigid degree
// of freedom. Nil gravity inherits the scene's.
type Link struct {
	Body    string      `yaml:"body"`
	Kind    string      `yaml:"kind"` // free | slider
	Axis    [3]float64  `yaml:"axis"` // slider travel direction
	Gravity *[3]float64 `yaml:"gravity"`
	Region  *Region     `yaml:"region"`
}

// Default returns a scene skeleton with the global knobs filled in;
// bodies still have to be added.
func Default() *Scene {
	return &Scene{
		Name:               "scene",
		Dim:                3,
		EndTime:            1.0,
		OutputInterval:     DefaultOutputInterval,
		Safety:             DefaultSafety,
		MinDt:              DefaultMinDt,
		MaxInvalidFraction: DefaultMaxInvalidFraction,
		Seed:               DefaultSeed,
		Backend:            "cpu",
	}
}

// Load reads a scene file over the defaults.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Save writes the scene as yaml.
func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone copies the scene deeply enough that callers can mutate the
// result without touching the source.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Bodies = make([]Body, len(s.Bodies))
	for i, b := range s.Bodies {
		c.Bodies[i] = b
		if b.Damping != nil {
			d := *b.Damping
			c.Bodies[i].Damping = &d
		}
		if b.Holder != nil {
			h := *b.Holder
			c.Bodies[i].Holder = &h
		}
	}
	c.Contacts = make([][]string, len(s.Contacts))
	for i, pair := range s.Contacts {
		c.Contacts[i] = append([]string(nil), pair...)
	}
	c.Links = make([]Link, len(s.Links))
	for i, l := range s.Links {
		c.Links[i] = l
		if l.Gravity != nil {
			g := *l.Gravity
			c.Links[i].Gravity = &g
		}
		if l.Region != nil {
			r := *l.Region
			c.Links[i].Region = &r
		}
	}
	c.Observers = append([]string(nil), s.Observers...)
	return &c
}

// Validate checks the scene for assembly errors so they surface before
// a run starts.
func (s *Scene) Validate() error {
	if s.Dim != 2 && s.Dim != 3 {
		return fmt.Errorf("config: dim must be 2 or 3, got %d", s.Dim)
	}
	if s.EndTime <= 0 {
		return fmt.Errorf("config: end_time must be positive, got %g", s.EndTime)
	}
	if s.OutputInterval <= 0 || s.OutputInterval > s.EndTime {
		return fmt.Errorf("config: output_interval %g out of (0, end_time]", s.OutputInterval)
	}
	if s.Safety <= 0 || s.Safety > 1 {
		return fmt.Errorf("config: safety %g out of (0, 1]", s.Safety)
	}
	if s.MaxDt < 0 || s.MinDt < 0 {
		return fmt.Errorf("config: negative time step bound")
	}
	if s.MaxInvalidFraction < 0 || s.MaxInvalidFraction > 1 {
		return fmt.Errorf("config: max_invalid_fraction %g out of [0, 1]", s.MaxInvalidFraction)
	}
	if len(s.Bodies) == 0 {
		return fmt.Errorf("config: scene has no bodies")
	}

	names := make(map[string]bool, len(s.Bodies))
	for i := range s.Bodies {
		if err := s.Bodies[i].validate(); err != nil {
			return err
		}
		if names[s.Bodies[i].Name] {
			return fmt.Errorf("config: duplicate body name %q", s.Bodies[i].Name)
		}
		names[s.Bodies[i].Name] = true
	}

	for _, pair := range s.Contacts {
		if len(pair) != 2 {
			return fmt.Errorf("config: contact needs two body names, got %v", pair)
		}
		if pair[0] == pair[1] {
			return fmt.Errorf("config: contact pairs body %q with itself", pair[0])
		}
		for _, n := range pair {
			if !names[n] {
				return fmt.Errorf("config: contact references unknown body %q", n)
			}
		}
	}

	for _, l := range s.Links {
		if !names[l.Body] {
			return fmt.Errorf("config: link references unknown body %q", l.Body)
		}
		switch l.Kind {
		case "free", "":
		case "slider":
			if l.Axis == ([3]float64{}) {
				return fmt.Errorf("config: slider link on %q needs an axis", l.Body)
			}
		default:
			return fmt.Errorf("config: unknown link kind %q", l.Kind)
		}
	}
	return nil
}

func (b *Body) validate() error {
	if b.Name == "" {
		return fmt.Errorf("config: body without a name")
	}
	if b.Spacing <= 0 {
		return fmt.Errorf("config: body %q spacing must be positive, got %g", b.Name, b.Spacing)
	}
	switch b.Shape.Kind {
	case "box":
		if b.Shape.Size == ([3]float64{}) {
			return fmt.Errorf("config: body %q box has zero size", b.Name)
		}
	case "ball":
		if b.Shape.Radius <= 0 {
			return fmt.Errorf("config: body %q ball radius must be positive", b.Name)
		}
	case "tube":
		if b.Shape.Outer <= b.Shape.Inner || b.Shape.Inner < 0 || b.Shape.Length <= 0 {
			return fmt.Errorf("config: body %q tube diameters out of order", b.Name)
		}
	default:
		return fmt.Errorf("config: body %q has unknown shape kind %q", b.Name, b.Shape.Kind)
	}
	m := b.Material
	if m.Density <= 0 {
		return fmt.Errorf("config: body %q density must be positive", b.Name)
	}
	if m.Youngs <= 0 {
		return fmt.Errorf("config: body %q youngs modulus must be positive", b.Name)
	}
	if m.Poisson < 0 || m.Poisson >= 0.5 {
		return fmt.Errorf("config: body %q poisson ratio %g out of [0, 0.5)", b.Name, m.Poisson)
	}
	switch b.Kernel {
	case "", "cubic", "wendland":
	default:
		return fmt.Errorf("config: body %q has unknown kernel %q", b.Name, b.Kernel)
	}
	if b.Damping != nil && b.Damping.Viscosity <= 0 {
		return fmt.Errorf("config: body %q damping viscosity must be positive", b.Name)
	}
	return nil
}
