package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the tree view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Checked   lipgloss.Color
	Partial   lipgloss.Color
	Unchecked lipgloss.Color
	Error     lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"), // Magenta
		Secondary: lipgloss.Color("#00ffff"), // Cyan
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Checked:   lipgloss.Color("#00ff00"),
		Partial:   lipgloss.Color("#ff8800"),
		Unchecked: lipgloss.Color("#888888"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Checked:   lipgloss.Color("#88ff88"),
		Partial:   lipgloss.Color("#ffff00"),
		Unchecked: lipgloss.Color("#007700"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Checked:   lipgloss.Color("#ffffff"),
		Partial:   lipgloss.Color("#cccccc"),
		Unchecked: lipgloss.Color("#888888"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"), // Ocean blue
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Checked:   lipgloss.Color("#00ff88"),
		Partial:   lipgloss.Color("#ffcc00"),
		Unchecked: lipgloss.Color("#4488aa"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"), // Coral
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Checked:   lipgloss.Color("#5fd068"),
		Partial:   lipgloss.Color("#ffc048"),
		Unchecked: lipgloss.Color("#8b6b8c"),
		Error:     lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	cursor    lipgloss.Style
	arrow     lipgloss.Style
	muted     lipgloss.Style
	hint      lipgloss.Style
	errText   lipgloss.Style
	checked   lipgloss.Style
	partial   lipgloss.Style
	unchecked lipgloss.Style
	pane      lipgloss.Style
}

func newStyles(th Theme) styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(th.Secondary),
		label:     lipgloss.NewStyle().Foreground(th.Text),
		cursor:    lipgloss.NewStyle().Bold(true).Foreground(th.Primary),
		arrow:     lipgloss.NewStyle().Foreground(th.Accent),
		muted:     lipgloss.NewStyle().Foreground(th.Muted),
		hint:      lipgloss.NewStyle().Foreground(th.Muted).Italic(true),
		errText:   lipgloss.NewStyle().Foreground(th.Error),
		checked:   lipgloss.NewStyle().Bold(true).Foreground(th.Checked),
		partial:   lipgloss.NewStyle().Foreground(th.Partial),
		unchecked: lipgloss.NewStyle().Foreground(th.Unchecked),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Muted).
			Padding(0, 1),
	}
}
