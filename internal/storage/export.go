package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/sphsim/internal/engine"
)

// ExportData is the flat JSON view of a finished run, for piping into
// external plotting tools.
type ExportData struct {
	Scene   string               `json:"scene"`
	Steps   int                  `json:"steps"`
	Frames  int                  `json:"frames"`
	Times   []float64            `json:"times"`
	Series  map[string][]float64 `json:"series"`
	Metrics map[string]float64   `json:"metrics"`
}

// ExportJSON writes the run result as indented JSON to a file.
func ExportJSON(path, scene string, result *engine.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, scene, result)
}

// ExportJSONStdout writes the run result as indented JSON to stdout.
func ExportJSONStdout(scene string, result *engine.Result) error {
	return exportJSON(os.Stdout, scene, result)
}

func exportJSON(w io.Writer, scene string, result *engine.Result) error {
	data := ExportData{
		Scene:   scene,
		Steps:   result.Steps,
		Frames:  result.Frames,
		Times:   result.Times,
		Series:  result.Series,
		Metrics: result.Metrics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
