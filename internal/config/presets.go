package config

import "sort"

// Presets are the stock scenes. GetPreset hands out copies, so callers
// may override fields freely.
var Presets = map[string]*Scene{
	"collision": {
		Name:               "collision",
		Dim:                2,
		EndTime:            0.5,
		OutputInterval:     0.01,
		Safety:             DefaultSafety,
		MinDt:              DefaultMinDt,
		MaxInvalidFraction: DefaultMaxInvalidFraction,
		Seed:               DefaultSeed,
		Backend:            "cpu",
		Bodies: []Body{
			{
				Name:     "left",
				Shape:    Shape{Kind: "box", Center: [3]float64{-0.35, 0, 0}, Size: [3]float64{0.5, 0.5, 0}},
				Spacing:  0.05,
				Material: Material{Law: "neo_hookean", Density: 1000, Youngs: 5e4, Poisson: 0.45},
				Velocity: [3]float64{1, 0, 0},
				Damping:  &Damping{Viscosity: 50, Ratio: 0.5},
			},
			{
				Name:     "right",
				Shape:    Shape{Kind: "box", Center: [3]float64{0.35, 0, 0}, Size: [3]float64{0.5, 0.5, 0}},
				Spacing:  0.05,
				Material: Material{Law: "neo_hookean", Density: 1000, Youngs: 5e4, Poisson: 0.45},
				Velocity: [3]float64{-1, 0, 0},
				Damping:  &Damping{Viscosity: 50, Ratio: 0.5},
			},
		},
		Contacts:  [][]string{{"left", "right"}},
		Observers: []string{"kinetic_energy", "momentum", "max_velocity"},
	},

	"drop": {
		Name:               "drop",
		Dim:                2,
		Gravity:            [3]float64{0, -1, 0},
		EndTime:            1.5,
		OutputInterval:     0.01,
		Safety:             DefaultSafety,
		MinDt:              DefaultMinDt,
		MaxInvalidFraction: DefaultMaxInvalidFraction,
		Seed:               DefaultSeed,
		Backend:            "cpu",
		Bodies: []Body{
			{
				Name:     "ball",
				Shape:    Shape{Kind: "ball", Center: [3]float64{0, 0.5, 0}, Radius: 0.15},
				Spacing:  0.05,
				Material: Material{Law: "neo_hookean", Density: 1000, Youngs: 5e4, Poisson: 0.45},
				Rigid:    true,
			},
			{
				Name:     "floor",
				Shape:    Shape{Kind: "box", Center: [3]float64{0, 0, 0}, Size: [3]float64{2, 0.2, 0}},
				Spacing:  0.05,
				Material: Material{Law: "neo_hookean", Density: 1000, Youngs: 5e4, Poisson: 0.45},
				Damping:  &Damping{Viscosity: 50, Ratio: 0.5},
				Holder:   &Region{Min: [3]float64{-1.1, -0.11, -0.1}, Max: [3]float64{1.1, -0.05, 0.1}},
			},
		},
		Contacts: [][]string{{"ball", "floor"}},
		Links: []Link{
			{Body: "ball", Kind: "free", Gravity: &[3]float64{0, -1, 0}},
		},
		Observers: []string{"kinetic_energy", "max_velocity", "probe:ball:0:y"},
	},

	"plate": {
		Name:               "plate",
		Dim:                3,
		EndTime:            0.05,
		OutputInterval:     0.005,
		Safety:             DefaultSafety,
		MinDt:              DefaultMinDt,
		MaxInvalidFraction: DefaultMaxInvalidFraction,
		Seed:               DefaultSeed,
		Backend:            "cpu",
		Bodies: []Body{
			{
				Name:     "plate",
				Shape:    Shape{Kind: "box", Center: [3]float64{0, 0, 0}, Size: [3]float64{0.2, 0.2, 0.06}},
				Spacing:  0.02,
				Material: Material{Law: "linear_elastic", Density: 1000, Youngs: 5e4, Poisson: 0.3},
				Holder:   &Region{Min: [3]float64{-0.11, -0.11, -0.04}, Max: [3]float64{-0.08, 0.11, 0.04}},
			},
		},
		Observers: []string{"kinetic_energy", "max_velocity"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scene {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
