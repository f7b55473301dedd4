package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sidequest/internal/sidequest"
)

// handleHistoryKey processes keyboard input for the history view.
func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quests == nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.Reload) && !m.historyLoading {
		m.historyLoading = true
		return m, loadHistoryCmd(m.ctx, m.quests)
	}
	return m, nil
}

// renderHistory renders past quests and the stats summary.
func (m Model) renderHistory() string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.historyLoading {
		b.WriteString(m.spinner.View() + styles.MutedText.Render(" Loading history..."))
		b.WriteString("\n\n")
	}
	if m.historyErr != nil {
		b.WriteString(styles.DangerText.Render("History unavailable: " + describeError(m.historyErr)))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Press r to retry."))
		return b.String()
	}

	if m.stats != nil {
		b.WriteString(styles.Panel.Render(formatStats(*m.stats)))
		b.WriteString("\n\n")
	}

	if len(m.history) == 0 {
		if !m.historyLoading {
			b.WriteString(styles.MutedText.Render("No past quests yet."))
		}
		return b.String()
	}

	textWidth := max(m.width-34, 20)
	limit := min(len(m.history), max(m.height-14, 1))
	for _, q := range m.history[:limit] {
		badge := styles.StatusStyle(q.Status).Render(padRight(string(q.Status), 9))
		b.WriteString(styles.FaintText.Render(historyDate(q)) + "  " + badge + " " + styles.Text.Render(truncate(q.Text, textWidth)))
		b.WriteString("\n")
	}
	if rest := len(m.history) - limit; rest > 0 {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("... and %d more", rest)))
	}
	return b.String()
}

// formatStats renders the stats summary lines.
func formatStats(s sidequest.HistoryStats) string {
	lines := []string{
		fmt.Sprintf("Streak: %d %s", s.Streak, plural(s.Streak, "day", "days")),
		fmt.Sprintf("Completed: %d of %d accepted (%.0f%%)", s.TotalCompleted, s.TotalAccepted, s.SuccessRate),
	}
	if s.MostCompletedCategory != nil && *s.MostCompletedCategory != "" {
		lines = append(lines, "Favourite category: "+titleCase(*s.MostCompletedCategory))
	}
	if len(s.TopTags) > 0 {
		tags := make([]string, 0, len(s.TopTags))
		for _, t := range s.TopTags {
			tags = append(tags, fmt.Sprintf("%s (%d)", t.Tag, t.Count))
		}
		lines = append(lines, "Top tags: "+strings.Join(tags, ", "))
	}
	return strings.Join(lines, "\n")
}

// historyDate picks the most meaningful timestamp for a past quest.
func historyDate(q sidequest.Quest) string {
	at := q.CreatedAt
	if q.CompletedAt != nil {
		at = *q.CompletedAt
	}
	if at.IsZero() {
		return padRight("", len(time.DateOnly))
	}
	return at.Local().Format(time.DateOnly)
}
