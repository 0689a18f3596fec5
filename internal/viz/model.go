package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/sim"
)

const (
	defaultWidth  = 100
	defaultHeight = 32
	panelWidth    = 40

	minSpeed = 0.125
	maxSpeed = 64
	probStep = 0.05
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(12)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// TickMsg advances the board with the matching id by one frame. Ticks for
// a replaced board are dropped.
type TickMsg struct {
	ID   int64
	Time time.Time
}

var nextModelID atomic.Int64

// Options configures a live board.
type Options struct {
	Params sim.Params
	Layout board.Layout
	Timing anim.Timing
	Frame  time.Duration
	Seed   int64
	Theme  string
	Logger zerolog.Logger
}

// Model is a Bubble Tea model for one live board. The simulation and scene
// are shared pointers so copies of Model made by Update stay in sync.
type Model struct {
	id            int64
	sim           *sim.Simulation
	scene         *Scene
	theme         Theme
	frame         time.Duration
	width, height int
	status        string
	showHelp      bool
	log           zerolog.Logger
}

func NewModel(opts Options) (Model, error) {
	if opts.Frame <= 0 {
		opts.Frame = time.Second / 60
	}
	if opts.Layout == (board.Layout{}) {
		opts.Layout = board.DefaultLayout()
	}
	if opts.Timing == (anim.Timing{}) {
		opts.Timing = anim.DefaultTiming()
	}

	theme := GetTheme(opts.Theme)
	scene := NewScene(NewPalette(theme), opts.Seed)
	s, err := sim.New(opts.Params,
		sim.WithLayout(opts.Layout),
		sim.WithTiming(opts.Timing),
		sim.WithSeed(opts.Seed),
		sim.WithSink(scene),
		sim.WithLogger(opts.Logger),
	)
	if err != nil {
		return Model{}, err
	}
	scene.Reset(s.Board())

	return Model{
		id:     nextModelID.Add(1),
		sim:    s,
		scene:  scene,
		theme:  theme,
		frame:  opts.Frame,
		width:  defaultWidth,
		height: defaultHeight,
		status: "ready",
		log:    opts.Logger,
	}, nil
}

func (m Model) Simulation() *sim.Simulation { return m.sim }
func (m Model) Scene() *Scene               { return m.scene }
func (m Model) Status() string              { return m.status }

func (m Model) tick() tea.Cmd {
	id := m.id
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg{ID: id, Time: t} })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the running batch by one frame
// per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sim.Destroy()
			return m, tea.Quit
		case " ", "d":
			m.drop()
		case "+", "=":
			m.adjust(func(p *sim.Params) { p.Levels++ })
		case "-", "_":
			m.adjust(func(p *sim.Params) { p.Levels-- })
		case "B":
			m.adjust(func(p *sim.Params) { p.Balls += ballStep(p.Balls, 1) })
		case "b":
			m.adjust(func(p *sim.Params) { p.Balls -= ballStep(p.Balls, -1) })
		case "P":
			m.adjust(func(p *sim.Params) { p.ProbRight = stepProb(p.ProbRight, probStep) })
		case "p":
			m.adjust(func(p *sim.Params) { p.ProbRight = stepProb(p.ProbRight, -probStep) })
		case "]":
			m.setSpeed(m.sim.Speed() * 2)
		case "[":
			m.setSpeed(m.sim.Speed() / 2)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.scene.SetPalette(NewPalette(m.theme))
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if msg.ID != m.id {
			return m, nil
		}
		wasRunning := m.sim.Running()
		m.sim.Advance(m.frame)
		if wasRunning && !m.sim.Running() {
			r := m.sim.Result()
			m.status = fmt.Sprintf("landed %d balls, chi² %.2f", r.Total(), r.ChiSquare)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) drop() {
	_, err := m.sim.Drop()
	switch {
	case errors.Is(err, sim.ErrBatchInProgress):
		m.status = "balls still dropping"
	case err != nil:
		m.status = err.Error()
	default:
		m.status = "dropping"
	}
}

// adjust applies a board parameter change. Changes are ignored while a batch
// is running and rejected values leave the board untouched.
func (m *Model) adjust(edit func(*sim.Params)) {
	if !m.sim.ControlsEnabled() {
		m.status = "controls locked"
		return
	}
	p := m.sim.Params()
	edit(&p)
	if err := m.sim.Configure(p); err != nil {
		m.log.Debug().Err(err).Msg("parameter change rejected")
		var ce *sim.ConfigurationError
		if errors.As(err, &ce) {
			m.status = fmt.Sprintf("%s %s", ce.Field, ce.Reason)
		} else {
			m.status = err.Error()
		}
		return
	}
	m.scene.Reset(m.sim.Board())
	m.status = "board rebuilt"
}

func (m *Model) setSpeed(speed float64) {
	speed = math.Max(minSpeed, math.Min(maxSpeed, speed))
	if err := m.sim.SetSpeed(speed); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("speed ×%g", speed)
}

// ballStep grows the step with the ball count so large batches are reachable.
func ballStep(n, dir int) int {
	switch {
	case n > 100 || (n == 100 && dir > 0):
		return 50
	case n > 10 || (n == 10 && dir > 0):
		return 10
	default:
		return 1
	}
}

func stepProb(p, d float64) float64 {
	p = math.Round((p+d)*100) / 100
	return math.Max(0, math.Min(1, p))
}

// View renders the TUI interface.
func (m Model) View() string {
	cw := m.width - panelWidth - 6
	ch := m.height - 2
	if cw < 10 {
		cw = 10
	}
	if ch < 5 {
		ch = 5
	}
	canvas := NewCanvas(cw, ch)
	m.scene.Draw(canvas, m.scene.FitScale(cw, ch))
	canvasView := canvasStyle.Render(canvas.Render())

	p := m.sim.Params()
	b := m.sim.Board()
	locked := !m.sim.ControlsEnabled()

	var s strings.Builder
	s.WriteString(headerStyle.Render("PROBABILITY BOARD") + "\n")
	state := "IDLE"
	if locked {
		state = "DROPPING"
	}
	s.WriteString(fmt.Sprintf("%s\n", state))
	s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.status) + "\n\n")

	label := labelStyle
	if locked {
		label = lockedStyle
	}
	s.WriteString(label.Render("Levels") + valueStyle.Render(fmt.Sprintf("%d", p.Levels)) + "\n")
	s.WriteString(label.Render("Balls") + valueStyle.Render(fmt.Sprintf("%d", p.Balls)) + "\n")
	s.WriteString(label.Render("P(right)") + valueStyle.Render(fmt.Sprintf("%.2f", p.ProbRight)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("×%g", m.sim.Speed())) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.theme.Name) + "\n")
	if b.Degenerate() {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render("bar scale clamped") + "\n")
	}

	if b.Total() > 0 && b.Levels() > 1 {
		counts := make([]float64, b.Levels())
		expected := make([]float64, b.Levels())
		for i, bin := range b.Bins() {
			counts[i] = float64(bin.Count)
			expected[i] = bin.Expected * float64(b.Total())
		}
		chart := asciigraph.PlotMany([][]float64{counts, expected},
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-12),
			asciigraph.Precision(0),
			asciigraph.Caption("actual vs expected"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Drop Q:Quit ?:Help\n+/-:Levels b/B:Balls\np/P:Prob [ ]:Speed"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space/D  - Drop a batch of balls    ║
║  + / -    - More / fewer levels      ║
║  B / b    - More / fewer balls       ║
║  P / p    - Raise / lower P(right)   ║
║  ] / [    - Faster / slower          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts a live board in the alternate screen and blocks until quit.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
