package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sidequest/internal/sidequest"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background, also badge text
	Surface    string // Main content panels

	// Selection colors
	SelectionBg   string
	SelectionText string

	Border string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Quest status colors
	StatusColors map[sidequest.Status]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		// Text styles
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		// Component styles
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Surface lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	// Components
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style

	statusColors map[sidequest.Status]string
	background   string
	muted        string
}

// StatusStyle returns a badge style for the given quest status.
func (s Styles) StatusStyle(status sidequest.Status) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// themeList is the cycle order for NextTheme; the first entry is the default.
var themeList = []Theme{
	{
		// https://draculatheme.com/contribute
		Name:          "Dracula",
		Background:    "#21222c",
		Surface:       "#282a36",
		SelectionBg:   "#44475a",
		SelectionText: "#f8f8f2",
		Border:        "#6272a4",
		Text:          "#f8f8f2",
		Muted:         "#6272a4",
		Faint:         "#565b73",
		Accent:        "#bd93f9",
		Success:       "#50fa7b",
		Warning:       "#f1fa8c",
		Danger:        "#ff5555",
		StatusColors: map[sidequest.Status]string{
			sidequest.StatusPotential: "#8be9fd",
			sidequest.StatusAccepted:  "#bd93f9",
			sidequest.StatusCompleted: "#50fa7b",
			sidequest.StatusFailed:    "#ff5555",
			sidequest.StatusAbandoned: "#ffb86c",
			sidequest.StatusDeclined:  "#6272a4",
		},
	},
	{
		// https://github.com/morhetz/gruvbox, dark medium contrast
		Name:          "Gruvbox",
		Background:    "#1d2021",
		Surface:       "#282828",
		SelectionBg:   "#504945",
		SelectionText: "#fbf1c7",
		Border:        "#665c54",
		Text:          "#ebdbb2",
		Muted:         "#a89984",
		Faint:         "#7c6f64",
		Accent:        "#fabd2f",
		Success:       "#b8bb26",
		Warning:       "#fe8019",
		Danger:        "#fb4934",
		StatusColors: map[sidequest.Status]string{
			sidequest.StatusPotential: "#83a598",
			sidequest.StatusAccepted:  "#fabd2f",
			sidequest.StatusCompleted: "#b8bb26",
			sidequest.StatusFailed:    "#fb4934",
			sidequest.StatusAbandoned: "#fe8019",
			sidequest.StatusDeclined:  "#928374",
		},
	},
	{
		// https://github.com/catppuccin/catppuccin, for light terminals
		Name:          "Latte",
		Background:    "#eff1f5",
		Surface:       "#e6e9ef",
		SelectionBg:   "#ccd0da",
		SelectionText: "#4c4f69",
		Border:        "#9ca0b0",
		Text:          "#4c4f69",
		Muted:         "#6c6f85",
		Faint:         "#8c8fa1",
		Accent:        "#8839ef",
		Success:       "#40a02b",
		Warning:       "#df8e1d",
		Danger:        "#d20f39",
		StatusColors: map[sidequest.Status]string{
			sidequest.StatusPotential: "#1e66f5",
			sidequest.StatusAccepted:  "#8839ef",
			sidequest.StatusCompleted: "#40a02b",
			sidequest.StatusFailed:    "#d20f39",
			sidequest.StatusAbandoned: "#fe640b",
			sidequest.StatusDeclined:  "#6c6f85",
		},
	},
}

// GetTheme returns a theme by name, defaulting to the first theme.
func GetTheme(name string) Theme {
	for _, t := range themeList {
		if t.Name == name {
			return t
		}
	}
	return themeList[0]
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themeList {
		if t.Name == current {
			return themeList[(i+1)%len(themeList)].Name
		}
	}
	return themeList[0].Name
}

// ThemeNames returns the available theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeList))
	for i, t := range themeList {
		names[i] = t.Name
	}
	return names
}
