package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []key.Binding
}

func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{
			title: "Navigation",
			items: []key.Binding{k.Tab, k.ViewBoard, k.ViewProfile, k.ViewHistory, k.Up, k.Down, k.Top, k.Bottom},
		},
		{
			title: "Board",
			items: []key.Binding{k.Accept, k.Decline, k.Complete, k.CompleteUp, k.CompleteDown, k.Fail, k.Abandon, k.Reload, k.NewBoard},
		},
		{
			title: "Profile",
			items: []key.Binding{k.Toggle, k.Confirm, k.Cancel, k.ResetProfile},
		},
		{
			title: "General",
			items: []key.Binding{k.CycleTheme, k.Compact, k.Help, k.Quit},
		},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	sections := m.keys.helpSections()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			h := item.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
