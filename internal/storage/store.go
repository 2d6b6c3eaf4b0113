package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/engine"
)

// Store keeps finished runs on disk, one directory per run with a
// metadata.json, the metric series and a particle snapshot per output
// frame.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID              string             `json:"id"`
	Scene           string             `json:"scene"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	EndTime         float64            `json:"end_time"`
	OutputInterval  float64            `json:"output_interval"`
	Particles       int                `json:"particles"`
	Bodies          []string           `json:"bodies"`
	Steps           int                `json:"steps"`
	Frames          int                `json:"frames"`
	InvalidContacts int64              `json:"invalid_contacts"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Run is an open recording. It satisfies the engine's Recorder, so it
// can be passed straight to Run.
type Run struct {
	id     string
	dir    string
	frames int
}

// Begin opens a run directory named after the scene and the start
// time.
func (s *Store) Begin(scene string) (*Run, error) {
	runID := fmt.Sprintf("%s_%d", scene, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	return &Run{id: runID, dir: runDir}, nil
}

func (r *Run) ID() string { return r.id }

// WriteSnapshot appends one frame file with every particle's position,
// velocity and contact density.
func (r *Run) WriteSnapshot(bodies []*body.Body, step int) error {
	path := filepath.Join(r.dir, fmt.Sprintf("frame_%04d.csv", r.frames))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"body", "id", "x", "y", "z", "vx", "vy", "vz", "contact_density"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, b := range bodies {
		for i := range b.Pos {
			row := []string{
				b.Name,
				strconv.Itoa(i),
				num(b.Pos[i].X()), num(b.Pos[i].Y()), num(b.Pos[i].Z()),
				num(b.Vel[i].X()), num(b.Vel[i].Y()), num(b.Vel[i].Z()),
				num(b.ContactDensity[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	r.frames++
	return nil
}

// Finish writes the metadata and metric series. The caller fills the
// scene fields; identity, frame count and final metrics come from the
// run itself.
func (r *Run) Finish(meta RunMetadata, result *engine.Result) error {
	meta.ID = r.id
	meta.Timestamp = time.Now()
	meta.Frames = r.frames
	meta.Steps = result.Steps
	meta.InvalidContacts = result.Invalid
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(r.dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	return writeSeries(filepath.Join(r.dir, "series.csv"), result)
}

func writeSeries(path string, result *engine.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	header := append([]string{"time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, t := range result.Times {
		row := []string{num(t)}
		for _, name := range names {
			samples := result.Series[name]
			if i < len(samples) {
				row = append(row, num(samples[i]))
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns the metadata of every readable run, in directory order.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads back the metric series of a run.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, map[string][]float64{}, nil
	}

	header := records[0]
	series := make(map[string][]float64, len(header)-1)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			series[header[j]] = append(series[header[j]], val)
		}
	}
	return times, series, nil
}
