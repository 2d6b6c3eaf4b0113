package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		s := GetPreset(name)
		if s == nil {
			t.Fatalf("listed preset %q missing", name)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if s := GetPreset("nonexistent"); s != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("collision")
	a.EndTime = 99
	a.Bodies[0].Spacing = 42
	a.Bodies[0].Damping.Viscosity = 7

	b := GetPreset("collision")
	if b.EndTime == 99 || b.Bodies[0].Spacing == 42 || b.Bodies[0].Damping.Viscosity == 7 {
		t.Error("preset mutation leaked into the shared table")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	doc := `
name: custom
dim: 2
end_time: 0.25
bodies:
  - name: block
    spacing: 0.05
    shape: {kind: box, size: [0.5, 0.5, 0]}
    material: {law: linear_elastic, density: 1000, youngs: 5.0e4, poisson: 0.3}
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "custom" || s.Dim != 2 || s.EndTime != 0.25 {
		t.Errorf("file values not applied: %+v", s)
	}
	if s.Safety != DefaultSafety || s.Seed != DefaultSeed {
		t.Errorf("defaults not kept: safety %g seed %d", s.Safety, s.Seed)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("loaded scene invalid: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	s := GetPreset("drop")
	if err := Save(path, s); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Name != s.Name || len(back.Bodies) != len(s.Bodies) || len(back.Links) != len(s.Links) {
		t.Errorf("round trip lost structure: %+v", back)
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Scene { return GetPreset("collision") }
	cases := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"bad dim", func(s *Scene) { s.Dim = 4 }},
		{"zero end time", func(s *Scene) { s.EndTime = 0 }},
		{"output beyond end", func(s *Scene) { s.OutputInterval = 10 }},
		{"safety above one", func(s *Scene) { s.Safety = 1.5 }},
		{"no bodies", func(s *Scene) { s.Bodies = nil }},
		{"duplicate names", func(s *Scene) { s.Bodies[1].Name = s.Bodies[0].Name }},
		{"zero spacing", func(s *Scene) { s.Bodies[0].Spacing = 0 }},
		{"unknown shape", func(s *Scene) { s.Bodies[0].Shape.Kind = "cone" }},
		{"zero density", func(s *Scene) { s.Bodies[0].Material.Density = 0 }},
		{"poisson too high", func(s *Scene) { s.Bodies[0].Material.Poisson = 0.5 }},
		{"unknown kernel", func(s *Scene) { s.Bodies[0].Kernel = "gaussian" }},
		{"self contact", func(s *Scene) { s.Contacts = [][]string{{"left", "left"}} }},
		{"unknown contact body", func(s *Scene) { s.Contacts = [][]string{{"left", "ghost"}} }},
		{"unknown link body", func(s *Scene) { s.Links = []Link{{Body: "ghost"}} }},
		{"slider without axis", func(s *Scene) { s.Links = []Link{{Body: "left", Kind: "slider"}} }},
		{"unknown link kind", func(s *Scene) { s.Links = []Link{{Body: "left", Kind: "hinge"}} }},
	}
	for _, tc := range cases {
		s := base()
		tc.mutate(s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}
