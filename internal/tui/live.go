// Package tui is the terminal dashboard: a scene menu and a live
// particle view that advances an engine in real time.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/engine"
	"github.com/san-kum/sphsim/internal/metrics"
)

const historyCapacity = 240

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	label   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	value   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	chart   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	sidebar = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("240")).Padding(0, 2)
)

// one glyph per body, cycled
var bodyGlyphs = []rune{'o', '*', '#', '+', 'x', '%'}

type uiState int

const (
	stateMenu uiState = iota
	stateSim
)

type TickMsg time.Time

// Model runs one engine interactively. Constructed with a scene it
// jumps straight into the simulation; without one it opens on the
// preset menu.
type Model struct {
	state   uiState
	cursor  int
	presets []string

	scene *config.Scene
	eng   *engine.Engine
	err   error

	paused bool
	speed  int // output intervals advanced per tick
	fps    int

	ke        *metrics.KineticEnergy
	keHistory []float64

	// world window, fixed at scene start so the view does not jitter
	minX, maxX float64
	minY, maxY float64

	width, height int
}

// New builds the dashboard. A nil scene opens the preset menu.
func New(scene *config.Scene, fps int) (Model, error) {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		state:   stateMenu,
		presets: config.ListPresets(),
		speed:   1,
		fps:     fps,
		ke:      metrics.NewKineticEnergy(),
		width:   100,
		height:  30,
	}
	if scene != nil {
		if err := m.load(scene); err != nil {
			return Model{}, err
		}
	}
	return m, nil
}

func (m *Model) load(scene *config.Scene) error {
	eng, err := engine.FromScene(scene)
	if err != nil {
		return err
	}
	m.scene = scene
	m.eng = eng
	m.err = nil
	m.paused = false
	m.keHistory = m.keHistory[:0]
	m.state = stateSim
	m.window()
	return nil
}

// window fixes the view bounds to the initial extent plus a margin, so
// bodies have room to move without rescaling every frame.
func (m *Model) window() {
	m.minX, m.maxX = math.Inf(1), math.Inf(-1)
	m.minY, m.maxY = math.Inf(1), math.Inf(-1)
	for _, b := range m.eng.Bodies() {
		for _, p := range b.Pos {
			m.minX = math.Min(m.minX, p.X())
			m.maxX = math.Max(m.maxX, p.X())
			m.minY = math.Min(m.minY, p.Y())
			m.maxY = math.Max(m.maxY, p.Y())
		}
	}
	padX := 0.25 * (m.maxX - m.minX)
	padY := 0.25 * (m.maxY - m.minY)
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	m.minX, m.maxX = m.minX-padX, m.maxX+padX
	m.minY, m.maxY = m.minY-padY, m.maxY+padY
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case TickMsg:
		if m.state == stateSim {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	if m.paused || m.err != nil || m.eng.Done() {
		return
	}
	for i := 0; i < m.speed; i++ {
		if err := m.eng.Advance(m.scene.OutputInterval); err != nil {
			m.err = err
			return
		}
		if m.eng.Done() {
			break
		}
	}
	m.ke.Observe(m.eng.Time().Now, m.eng.Bodies())
	m.keHistory = append(m.keHistory, m.ke.Value())
	if len(m.keHistory) > historyCapacity {
		m.keHistory = m.keHistory[1:]
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.presets)-1 {
				m.cursor++
			}
		case "enter", " ":
			if err := m.load(config.GetPreset(m.presets[m.cursor])); err != nil {
				m.err = err
			}
			return m, tea.ClearScreen
		}
	case stateSim:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = stateMenu
			return m, tea.ClearScreen
		case " ", "p":
			m.paused = !m.paused
		case "r":
			if err := m.load(m.scene.Clone()); err != nil {
				m.err = err
			}
		case "+", "=":
			if m.speed < 16 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewSim()
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("s p h s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	for i, name := range m.presets {
		s := config.GetPreset(name)
		desc := fmt.Sprintf("%dd, %d bodies, %.2gs", s.Dim, len(s.Bodies), s.EndTime)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("      ↑↓ select   enter start   q quit") + "\n")
	return b.String()
}

func (m Model) viewSim() string {
	cw := m.width - 46
	ch := m.height - 4
	if cw < 40 {
		cw = 40
	}
	if ch < 14 {
		ch = 14
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	frame := m.eng.Frame()
	for k, bf := range frame.Bodies {
		glyph := bodyGlyphs[k%len(bodyGlyphs)]
		for _, p := range bf.Pos {
			x := int((p[0] - m.minX) / (m.maxX - m.minX) * float64(cw-1))
			y := ch - 1 - int((p[1]-m.minY)/(m.maxY-m.minY)*float64(ch-1))
			if x >= 0 && x < cw && y >= 0 && y < ch {
				canvas[y][x] = glyph
			}
		}
	}
	var cv strings.Builder
	for _, row := range canvas {
		cv.WriteString(string(row) + "\n")
	}

	var s strings.Builder
	s.WriteString(cyan.Render(strings.ToUpper(m.scene.Name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(red.Render("FAILED") + "\n")
	case m.eng.Done():
		s.WriteString(green.Render("DONE") + "\n")
	case m.paused:
		s.WriteString(yellow.Render("○ paused") + "\n")
	default:
		s.WriteString(green.Render("● running") + "\n")
	}
	s.WriteString("\n")

	if len(m.keHistory) > 1 {
		plot := asciigraph.Plot(m.keHistory,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.Caption("kinetic energy"))
		s.WriteString(chart.Render(plot) + "\n\n")
	}

	t := m.eng.Time()
	s.WriteString(label.Render("time") + value.Render(fmt.Sprintf("%.3fs / %.3gs", t.Now, m.scene.EndTime)) + "\n")
	s.WriteString(label.Render("step") + value.Render(fmt.Sprintf("%d", t.Step)) + "\n")
	s.WriteString(label.Render("dt") + value.Render(fmt.Sprintf("%.3g", m.eng.Dt())) + "\n")
	s.WriteString(label.Render("speed") + value.Render(fmt.Sprintf("%dx", m.speed)) + "\n\n")

	for k, bf := range frame.Bodies {
		glyph := string(bodyGlyphs[k%len(bodyGlyphs)])
		kind := "elastic"
		if bf.Rigid {
			kind = "rigid"
		}
		s.WriteString(label.Render(glyph+" "+bf.Name) +
			value.Render(fmt.Sprintf("%d particles, %s", len(bf.Pos), kind)) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + red.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + dim.Render("space pause  ± speed  r reset\nesc menu  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, cv.String(), sidebar.Render(s.String()))
}
