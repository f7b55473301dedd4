package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sidequest/internal/sidequest"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("sidequest")}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	case snap.LoadError != nil:
		parts = append(parts, styles.WarningText.Render("Retrying..."))
	case snap.Loaded():
		active := 0
		for range snap.Board.ByStatus(sidequest.StatusAccepted) {
			active++
		}
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf("%d quests · %d active", snap.Board.Len(), active)))
	default:
		parts = append(parts, styles.MutedText.Render("Connecting..."))
	}

	if n := len(m.pending); n > 0 {
		parts = append(parts, m.spinner.View()+styles.MutedText.Render(fmt.Sprintf(" %d syncing", n)))
	}

	if !snap.LastLoadedAt.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+agoLabel(time.Since(snap.LastLoadedAt))))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Render(strings.Join(parts, "  "))
}

// renderTabs renders the view switcher.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, int(viewCount))
	for v := range viewCount {
		label := fmt.Sprintf(" %d %s ", int(v)+1, v)
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Bold(true).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}
	return " " + strings.Join(tabs, " ")
}

// renderFooter renders the status line and key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var status string
	if m.flash != "" {
		if m.flashErr {
			status = styles.DangerText.Render(m.flash)
		} else {
			status = styles.SuccessText.Render(m.flash)
		}
	}

	hints := styles.FaintText.Render(footerHints(m.currentView, m.editing))
	if status == "" {
		return styles.Footer.Render(hints)
	}
	return styles.Footer.Render(status + "\n" + hints)
}

func footerHints(v View, editing bool) string {
	if editing {
		return "enter save · esc cancel"
	}
	switch v {
	case ViewBoard:
		return "a accept · x decline · c complete · f fail · b abandon · r reload · N new · v compact · ? help"
	case ViewProfile:
		return "space toggle · enter edit · R reset · r reload · ? help"
	case ViewHistory:
		return "r reload · tab next view · ? help"
	default:
		return "? help"
	}
}

func agoLabel(d time.Duration) string {
	if d < time.Second {
		return "just now"
	}
	return humanizeDuration(d) + " ago"
}
