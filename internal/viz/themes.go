package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the board colours. PegEmpty and Ball are the two ends of the
// peg hit scale.
type Theme struct {
	Name       string
	PegEmpty   string
	Ball       string
	Background string
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Warning    lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:       "classic",
		PegEmpty:   "#FEFEFE",
		Ball:       "#2F65A7",
		Background: "#000000",
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#666688"),
		Accent:     lipgloss.Color("#00ccff"),
		Warning:    lipgloss.Color("#ffaa00"),
	}

	ThemeEmber = Theme{
		Name:       "ember",
		PegEmpty:   "#F5F0E6",
		Ball:       "#C4451C",
		Background: "#1a0d08",
		Text:       lipgloss.Color("#fff5f0"),
		Muted:      lipgloss.Color("#8b6b5c"),
		Accent:     lipgloss.Color("#ff9f43"),
		Warning:    lipgloss.Color("#ffc048"),
	}

	ThemeMoss = Theme{
		Name:       "moss",
		PegEmpty:   "#F2F5EE",
		Ball:       "#3F7D3A",
		Background: "#07120a",
		Text:       lipgloss.Color("#e8ffe8"),
		Muted:      lipgloss.Color("#4f7a55"),
		Accent:     lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
	}

	// All available themes
	Themes = []Theme{
		ThemeClassic,
		ThemeEmber,
		ThemeMoss,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeClassic
}
