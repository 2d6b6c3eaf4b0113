package storage

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/engine"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/material"
)

func testBody(t *testing.T) *body.Body {
	t.Helper()
	pos := []mgl64.Vec3{{0, 0, 0}, {0.1, 0, 0}, {0.2, 0, 0}}
	law := material.NewLinearElastic(1000, 5e4, 0.3)
	kern := kernel.NewCubicSpline(3, kernel.SmoothingLength(0.1))
	b, err := body.New("probe", 3, 0.1, law, kern, pos, nil)
	if err != nil {
		t.Fatal(err)
	}
	b.Vel[1] = mgl64.Vec3{0.5, -0.5, 0}
	return b
}

func testResult() *engine.Result {
	return &engine.Result{
		Times: []float64{0, 0.01, 0.02},
		Series: map[string][]float64{
			"kinetic_energy": {0, 1.25, 0.75},
			"max_velocity":   {0, 0.5, 0.25},
		},
		Metrics: map[string]float64{"kinetic_energy": 0.75, "max_velocity": 0.25},
		Steps:   120,
		Frames:  3,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run, err := st.Begin("collision")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if run.ID() == "" {
		t.Error("expected non-empty run id")
	}

	bodies := []*body.Body{testBody(t)}
	for frame := 0; frame < 3; frame++ {
		if err := run.WriteSnapshot(bodies, frame*40); err != nil {
			t.Fatalf("snapshot %d failed: %v", frame, err)
		}
	}

	result := testResult()
	meta := RunMetadata{
		Scene:          "collision",
		Seed:           42,
		EndTime:        0.02,
		OutputInterval: 0.01,
		Particles:      3,
		Bodies:         []string{"probe"},
	}
	if err := run.Finish(meta, result); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	back, err := st.Load(run.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if back.Scene != "collision" || back.Seed != 42 {
		t.Errorf("metadata mangled: %+v", back)
	}
	if back.Frames != 3 || back.Steps != 120 {
		t.Errorf("counters mangled: frames %d steps %d", back.Frames, back.Steps)
	}
	if back.Metrics["kinetic_energy"] != 0.75 {
		t.Errorf("metrics mangled: %v", back.Metrics)
	}

	times, series, err := st.LoadSeries(run.ID())
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(times) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(times))
	}
	ke := series["kinetic_energy"]
	if len(ke) != 3 || math.Abs(ke[1]-1.25) > 1e-9 {
		t.Errorf("kinetic energy series mangled: %v", ke)
	}
}

func TestSnapshotFiles(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	run, err := st.Begin("drop")
	if err != nil {
		t.Fatal(err)
	}
	bodies := []*body.Body{testBody(t)}
	if err := run.WriteSnapshot(bodies, 0); err != nil {
		t.Fatal(err)
	}
	if err := run.WriteSnapshot(bodies, 55); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"frame_0000.csv", "frame_0001.csv"} {
		if _, err := os.Stat(filepath.Join(st.baseDir, run.ID(), name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestListSkipsUnreadable(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	run, err := st.Begin("plate")
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(RunMetadata{Scene: "plate"}, testResult()); err != nil {
		t.Fatal(err)
	}
	// a directory without metadata must not break listing
	if err := os.MkdirAll(filepath.Join(st.baseDir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Scene != "plate" {
		t.Errorf("wrong run listed: %+v", runs[0])
	}
}

func TestListEmptyStore(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, "collision", testResult()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty export")
	}
	for _, want := range []string{`"scene": "collision"`, `"kinetic_energy"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("export missing %q", want)
		}
	}
}
