package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sphsim/internal/analysis"
	"github.com/san-kum/sphsim/internal/compute"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/discretize"
	"github.com/san-kum/sphsim/internal/engine"
	"github.com/san-kum/sphsim/internal/gui"
	"github.com/san-kum/sphsim/internal/metrics"
	"github.com/san-kum/sphsim/internal/storage"
	"github.com/san-kum/sphsim/internal/stream"
	"github.com/san-kum/sphsim/internal/tui"
)

var (
	dataDir        string
	configFile     string
	preset         string
	endTime        float64
	outputInterval float64
	maxDt          float64
	safety         float64
	seed           int64
	backend        string
	noStore        bool
	exportStdout   bool
	frameRate      int
	addr           string
	seriesName     string
	benchTime      float64
	benchScale     float64
	// discretize flags
	shapeKind string
	sizeX     float64
	sizeY     float64
	sizeZ     float64
	radius    float64
	outerD    float64
	innerD    float64
	length    float64
	spacing   float64
	shapeDim  int
	shell     bool
	dump      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sphsim",
		Short: "particle contact mechanics lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand opens the scene menu.
			m, err := tui.New(nil, frameRate)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m)
			_, err = p.Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sphsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and store the result",
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "skip writing the run directory")
	runCmd.Flags().BoolVar(&exportStdout, "export", false, "write the result as JSON to stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listScenePresets,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "print the resolved scene",
		RunE:  inspectScene,
	}
	addSceneFlags(inspectCmd)

	discretizeCmd := &cobra.Command{
		Use:   "discretize",
		Short: "sample a shape into particles",
		RunE:  discretizeShape,
	}
	discretizeCmd.Flags().StringVar(&shapeKind, "shape", "box", "shape kind (box|ball|tube)")
	discretizeCmd.Flags().Float64Var(&sizeX, "size-x", 1.0, "box extent along x")
	discretizeCmd.Flags().Float64Var(&sizeY, "size-y", 1.0, "box extent along y")
	discretizeCmd.Flags().Float64Var(&sizeZ, "size-z", 1.0, "box extent along z")
	discretizeCmd.Flags().Float64Var(&radius, "radius", 0.5, "ball radius")
	discretizeCmd.Flags().Float64Var(&outerD, "outer", 0.02, "tube outer diameter")
	discretizeCmd.Flags().Float64Var(&innerD, "inner", 0.012, "tube inner diameter")
	discretizeCmd.Flags().Float64Var(&length, "length", 0.1, "tube length")
	discretizeCmd.Flags().Float64Var(&spacing, "spacing", 0.05, "particle spacing")
	discretizeCmd.Flags().IntVar(&shapeDim, "dim", 3, "scene dimension (2 flattens the shape)")
	discretizeCmd.Flags().BoolVar(&shell, "shell", false, "sample the mid-surface instead of the volume")
	discretizeCmd.Flags().BoolVar(&dump, "dump", false, "print every particle position")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&seriesName, "series", "", "plot only this series")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&seriesName, "series", "kinetic_energy", "series to analyze")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a scene in the terminal",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "watch a scene in a window",
		RunE:  runGUI,
	}
	addSceneFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a scene over websockets",
		RunE:  serveScene,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 30, "broadcast rate")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "step-rate benchmark over the presets",
		RunE:  benchPresets,
	}
	benchCmd.Flags().Float64Var(&benchTime, "time", 0.02, "simulated seconds per preset")
	benchCmd.Flags().Float64Var(&benchScale, "scale", 1.0, "divide body spacing by this factor for more particles")
	benchCmd.Flags().StringVar(&backend, "backend", "cpu", "compute backend (cpu|serial)")

	rootCmd.AddCommand(runCmd, presetsCmd, inspectCmd, discretizeCmd, listCmd, plotCmd, analyzeCmd, liveCmd, guiCmd, serveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addSceneFlags registers the flags every scene-running command
// shares. resolveScene applies them over the preset or config file.
func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scene name")
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().Float64Var(&endTime, "end-time", 0, "simulated end time")
	cmd.Flags().Float64Var(&outputInterval, "output-interval", 0, "seconds between output frames")
	cmd.Flags().Float64Var(&maxDt, "max-dt", 0, "time step ceiling")
	cmd.Flags().Float64Var(&safety, "safety", 0, "time step safety factor")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&backend, "backend", "", "compute backend (cpu|serial)")
}

// resolveScene builds the scene a command will run: preset or config
// file as the base, explicit flags on top.
func resolveScene(cmd *cobra.Command) (*config.Scene, error) {
	var scene *config.Scene
	if preset != "" {
		scene = config.GetPreset(preset)
		if scene == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		scene = loaded
	}
	if scene == nil {
		return nil, fmt.Errorf("need --preset or --config (presets: %v)", config.ListPresets())
	}

	// Flags win over whatever the scene document says.
	if cmd.Flags().Changed("end-time") {
		scene.EndTime = endTime
	}
	if cmd.Flags().Changed("output-interval") {
		scene.OutputInterval = outputInterval
	}
	if cmd.Flags().Changed("max-dt") {
		scene.MaxDt = maxDt
	}
	if cmd.Flags().Changed("safety") {
		scene.Safety = safety
	}
	if cmd.Flags().Changed("seed") {
		scene.Seed = seed
	}
	if cmd.Flags().Changed("backend") {
		scene.Backend = backend
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

func selectBackend(scene *config.Scene) error {
	b, err := compute.Select(scene.Backend)
	if err != nil {
		return err
	}
	compute.SetBackend(b)
	return nil
}

func runScene(cmd *cobra.Command, args []string) error {
	scene, err := resolveScene(cmd)
	if err != nil {
		return err
	}
	if err := selectBackend(scene); err != nil {
		return err
	}

	eng, err := engine.FromScene(scene)
	if err != nil {
		return err
	}
	obs, err := metrics.Build(scene.Observers)
	if err != nil {
		return err
	}
	for _, m := range obs {
		eng.AddMetric(m)
	}

	var rec *storage.Run
	if !noStore {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		rec, err = st.Begin(scene.Name)
		if err != nil {
			return err
		}
	}

	particles := 0
	var bodyNames []string
	for _, b := range eng.Bodies() {
		particles += b.Len()
		bodyNames = append(bodyNames, b.Name)
	}

	fmt.Fprintf(os.Stderr, "running %s (%d particles)...\n", scene.Name, particles)
	start := time.Now()

	var result *engine.Result
	if rec != nil {
		result, err = eng.Run(rec)
	} else {
		result, err = eng.Run(nil)
	}
	elapsed := time.Since(start)

	if rec != nil {
		meta := storage.RunMetadata{
			Scene:          scene.Name,
			Seed:           scene.Seed,
			EndTime:        scene.EndTime,
			OutputInterval: scene.OutputInterval,
			Particles:      particles,
			Bodies:         bodyNames,
		}
		if ferr := rec.Finish(meta, result); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		// Keep what ran before the failure; the partial run is
		// already on disk.
		fmt.Fprintf(os.Stderr, "run failed after %d steps: %v\n", result.Steps, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "completed in %v\n", elapsed)
	if rec != nil {
		fmt.Fprintf(os.Stderr, "run id: %s\n", rec.ID())
	}
	fmt.Fprintf(os.Stderr, "steps: %d  frames: %d  rejected contacts: %d\n", result.Steps, result.Frames, result.Invalid)
	if len(result.Metrics) > 0 {
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(os.Stderr, "final metrics:")
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "  %s: %.6g\n", name, result.Metrics[name])
		}
	}

	if exportStdout {
		return storage.ExportJSONStdout(scene.Name, result)
	}
	return nil
}

func listScenePresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM\tBODIES\tEND\tOBSERVERS")
	for _, name := range config.ListPresets() {
		s := config.GetPreset(name)
		bodies := make([]string, len(s.Bodies))
		for i, b := range s.Bodies {
			bodies[i] = b.Name
		}
		fmt.Fprintf(w, "%s\t%dD\t%v\t%.3gs\t%d\n", name, s.Dim, bodies, s.EndTime, len(s.Observers))
	}
	return w.Flush()
}

func inspectScene(cmd *cobra.Command, args []string) error {
	scene, err := resolveScene(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(scene)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)

	// Assemble once so the printed counts match what run would do.
	eng, err := engine.FromScene(scene.Clone())
	if err != nil {
		return err
	}
	fmt.Println("---")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPARTICLES\tKIND\tSPACING")
	for _, b := range eng.Bodies() {
		kind := "elastic"
		if b.Rigid {
			kind = "rigid"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.4g\n", b.Name, b.Len(), kind, b.Spacing)
	}
	return w.Flush()
}

func discretizeShape(cmd *cobra.Command, args []string) error {
	var shape discretize.Shape
	switch shapeKind {
	case "box":
		shape = discretize.Box{Size: mgl64.Vec3{sizeX, sizeY, sizeZ}}
	case "ball":
		shape = discretize.Ball{Radius: radius}
	case "tube":
		shape = discretize.Tube{Outer: outerD, Inner: innerD, Length: length}
	default:
		return fmt.Errorf("unknown shape %q (box|ball|tube)", shapeKind)
	}
	if shapeDim == 2 {
		shape = discretize.Flatten(shape)
	}

	var (
		pts  []mgl64.Vec3
		vols []float64
		err  error
	)
	if shell {
		pts, vols, err = discretize.Shell(shape, spacing)
		if err != nil {
			return err
		}
	} else {
		pts = discretize.Lattice(shape, spacing)
		if len(pts) > 0 {
			vol := spacing * spacing * spacing
			if shapeDim == 2 {
				vol = spacing * spacing
			}
			vols = make([]float64, len(pts))
			for i := range vols {
				vols[i] = vol
			}
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("shape discretizes to no particles at spacing %g", spacing)
	}

	total := 0.0
	for _, v := range vols {
		total += v
	}
	fmt.Printf("shape: %s  spacing: %g  dim: %d\n", shapeKind, spacing, shapeDim)
	fmt.Printf("particles: %d\n", len(pts))
	fmt.Printf("shape volume: %.6g  sampled volume: %.6g\n", shape.Volume(), total)

	if dump {
		fmt.Println("id,x,y,z,volume")
		for i, p := range pts {
			fmt.Printf("%d,%.6g,%.6g,%.6g,%.6g\n", i, p.X(), p.Y(), p.Z(), vols[i])
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tPARTICLES\tSTEPS\tFRAMES\tREJECTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Frames,
			run.InvalidContacts,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	if seriesName != "" {
		if _, ok := series[seriesName]; !ok {
			return fmt.Errorf("no series %q in run %s (have: %v)", seriesName, runID, names)
		}
		names = []string{seriesName}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d over %.4gs\n\n", len(times), times[len(times)-1])

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	samples, ok := series[seriesName]
	if !ok {
		names := make([]string, 0, len(series))
		for name := range series {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("no series %q in run %s (have: %v)", seriesName, runID, names)
	}

	freqs, power := analysis.Spectrum(samples, meta.OutputInterval)
	if freqs == nil {
		return fmt.Errorf("series %q too short for a spectrum (%d samples)", seriesName, len(samples))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s  samples: %d  sample interval: %.4gs\n\n", seriesName, len(samples), meta.OutputInterval)

	plotData := power
	if len(power) > 4 {
		plotData = power[:len(power)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", seriesName)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, peak := analysis.Dominant(freqs, power)
	fmt.Printf("dominant frequency: %.4g hz (power %.3g)\n", freq, peak)
	if freq > 0 {
		fmt.Printf("period: %.4g s\n", 1.0/freq)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	var scene *config.Scene
	if preset != "" || configFile != "" {
		s, err := resolveScene(cmd)
		if err != nil {
			return err
		}
		if err := selectBackend(s); err != nil {
			return err
		}
		scene = s
	}

	m, err := tui.New(scene, frameRate)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		preset = "collision"
	}
	scene, err := resolveScene(cmd)
	if err != nil {
		return err
	}
	if err := selectBackend(scene); err != nil {
		return err
	}
	return gui.Run(scene)
}

func serveScene(cmd *cobra.Command, args []string) error {
	scene, err := resolveScene(cmd)
	if err != nil {
		return err
	}
	if err := selectBackend(scene); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "serving %q on %s (websocket endpoint /ws)\n", scene.Name, addr)
	return stream.NewServer(scene, frameRate).ListenAndServe(addr)
}

func benchPresets(cmd *cobra.Command, args []string) error {
	b, err := compute.Select(backend)
	if err != nil {
		return err
	}
	compute.SetBackend(b)

	fmt.Printf("backend: %s\n\n", b.Name())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, name := range config.ListPresets() {
		scene := config.GetPreset(name)
		if scene.EndTime > benchTime {
			scene.EndTime = benchTime
		}
		if benchScale > 0 && benchScale != 1 {
			for i := range scene.Bodies {
				scene.Bodies[i].Spacing /= benchScale
			}
		}

		eng, err := engine.FromScene(scene)
		if err != nil {
			return err
		}
		particles := 0
		for _, body := range eng.Bodies() {
			particles += body.Len()
		}

		start := time.Now()
		result, err := eng.Run(nil)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		elapsed := time.Since(start)

		stepsPerSec := float64(result.Steps) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", name, particles, result.Steps, elapsed.Round(time.Millisecond), stepsPerSec)
	}
	return w.Flush()
}
