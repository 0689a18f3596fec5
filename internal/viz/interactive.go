package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/galtonsim/internal/config"
	"github.com/san-kum/galtonsim/internal/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDesc    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateSim
)

type entry struct {
	name   string
	params sim.Params
	speed  float64
}

// App is a preset picker in front of a live board. Choosing an entry builds
// a fresh Model; quitting the board returns to the menu.
type App struct {
	state, cursor int
	entries       []entry
	base          Options
	width, height int
	live          Model
	err           error
}

// NewApp lists the configured board first, then every preset.
func NewApp(base Options) *App {
	entries := []entry{{name: "custom", params: base.Params, speed: base.Timing.Speed}}
	for _, shape := range config.ListShapes() {
		for _, name := range config.ListPresets(shape) {
			p := config.GetPreset(shape, name)
			speed := p.Speed
			if speed <= 0 {
				speed = base.Timing.Speed
			}
			entries = append(entries, entry{
				name:   shape + "/" + name,
				params: sim.Params{Levels: p.Levels, Balls: p.Balls, ProbRight: p.ProbRight},
				speed:  speed,
			})
		}
	}
	return &App{state: stateMenu, entries: entries, base: base, width: defaultWidth, height: defaultHeight}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.state == stateSim {
			if s := msg.String(); s == "q" || s == "esc" {
				a.live.Simulation().Destroy()
				a.state = stateMenu
				return a, nil
			}
			return a.forward(msg)
		}
		return a.menuKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateSim {
			return a.forward(msg)
		}
	default:
		if a.state == stateSim {
			return a.forward(msg)
		}
	}
	return a, nil
}

func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.live.Update(msg)
	a.live = next.(Model)
	return a, cmd
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	e := a.entries[a.cursor]
	opts := a.base
	opts.Params = e.params
	opts.Timing.Speed = e.speed

	live, err := NewModel(opts)
	if err != nil {
		a.err = err
		return a, nil
	}
	live.width, live.height = a.width, a.height
	a.live, a.state, a.err = live, stateSim, nil
	return a, live.Init()
}

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("GALTON") + "\n    " + subStyle.Render("probability board") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, e := range a.entries {
		desc := fmt.Sprintf("L=%d n=%d p=%.2f", e.params.Levels, e.params.Balls, e.params.ProbRight)
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-16s", e.name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-16s", e.name)), idleDesc.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + subStyle.Render(" navigate  ") + keyStyle.Render("enter") + subStyle.Render(" select  ") + keyStyle.Render("q") + subStyle.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(base Options) error {
	_, err := tea.NewProgram(NewApp(base), tea.WithAltScreen()).Run()
	return err
}
