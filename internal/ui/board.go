package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

// Board sections, in display order.
const (
	sectionAvailable   = "Available"
	sectionActive      = "Active"
	sectionDone        = "Done today"
	sectionSuggestions = "Suggestions"
)

// boardRow is one selectable quest line.
type boardRow struct {
	quest    sidequest.Quest
	section  string
	pending  bool
	readOnly bool
}

// buildBoardRows flattens the snapshot into display rows. When the board
// could not be loaded the fallback quests are shown read-only.
func buildBoardRows(snap state.Snapshot, pending map[string]bool) []boardRow {
	if snap.LoadError != nil {
		rows := make([]boardRow, 0, len(snap.Fallback))
		for _, q := range snap.Fallback {
			rows = append(rows, boardRow{quest: q, section: sectionSuggestions, readOnly: true})
		}
		return rows
	}

	groups := []struct {
		section  string
		statuses []sidequest.Status
	}{
		{sectionAvailable, []sidequest.Status{sidequest.StatusPotential}},
		{sectionActive, []sidequest.Status{sidequest.StatusAccepted}},
		{sectionDone, []sidequest.Status{sidequest.StatusCompleted, sidequest.StatusFailed, sidequest.StatusAbandoned}},
	}

	var rows []boardRow
	for _, g := range groups {
		for q := range snap.Board.ByStatus(g.statuses...) {
			rows = append(rows, boardRow{quest: q, section: g.section, pending: pending[q.ID]})
		}
	}
	return rows
}

// visibleWindow returns the [start, end) slice of rows that fits in height
// lines while keeping selected in view.
func visibleWindow(total, selected, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := selected - height/2
	start = max(start, 0)
	start = min(start, total-height)
	return start, start + height
}

func (m Model) boardRows() []boardRow {
	return buildBoardRows(m.snapshot, m.pending)
}

func (m *Model) clampSelection() {
	n := len(m.boardRows())
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// selectedQuest returns the quest under the cursor, if it can be acted on.
func (m Model) selectedQuest() (sidequest.Quest, bool) {
	rows := m.boardRows()
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return sidequest.Quest{}, false
	}
	row := rows[m.selectedRow]
	if row.readOnly {
		return sidequest.Quest{}, false
	}
	return row.quest, true
}

// handleBoardKey processes keyboard input for the board view.
func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quests == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, loadBoardCmd(m.ctx, m.quests, opReload)
	case key.Matches(msg, m.keys.NewBoard):
		m.loading = true
		return m, loadBoardCmd(m.ctx, m.quests, opRefresh)
	}

	rowCount := len(m.boardRows())
	if rowCount == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < rowCount-1 {
			m.selectedRow++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = rowCount - 1
		return m, nil
	}

	var (
		status   sidequest.Status
		feedback *sidequest.Feedback
	)
	switch {
	case key.Matches(msg, m.keys.Accept):
		status = sidequest.StatusAccepted
	case key.Matches(msg, m.keys.Decline):
		status = sidequest.StatusDeclined
	case key.Matches(msg, m.keys.Complete):
		status = sidequest.StatusCompleted
		feedback = &sidequest.Feedback{Completed: true}
	case key.Matches(msg, m.keys.CompleteUp):
		status = sidequest.StatusCompleted
		feedback = &sidequest.Feedback{Completed: true, Rating: sidequest.RatingThumbsUp}
	case key.Matches(msg, m.keys.CompleteDown):
		status = sidequest.StatusCompleted
		feedback = &sidequest.Feedback{Completed: true, Rating: sidequest.RatingThumbsDown}
	case key.Matches(msg, m.keys.Fail):
		status = sidequest.StatusFailed
	case key.Matches(msg, m.keys.Abandon):
		status = sidequest.StatusAbandoned
	default:
		return m, nil
	}

	quest, ok := m.selectedQuest()
	if !ok {
		m.setFlash("Suggestions are read-only until the board loads", true)
		return m, nil
	}
	m.pending = maps.Clone(m.pending)
	m.pending[quest.ID] = true
	return m, tea.Batch(
		transitionCmd(m.ctx, m.quests, quest.ID, status, feedback),
		fetchSnapshotCmd(m.quests),
	)
}

// renderBoard renders the quest board.
func (m Model) renderBoard() string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.loading {
		b.WriteString(m.spinner.View() + styles.MutedText.Render(" Loading quests..."))
		b.WriteString("\n\n")
	}

	snap := m.snapshot
	if snap.LoadError != nil {
		b.WriteString(styles.DangerText.Render("Board unavailable: " + describeError(snap.LoadError)))
		b.WriteString("\n")
		if n := len(snap.Fallback); n > 0 {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("Showing %d %s from %s. Press r to retry.", n, plural(n, "suggestion", "suggestions"), snap.FallbackSource)))
		} else {
			b.WriteString(styles.MutedText.Render("Press r to retry."))
		}
		b.WriteString("\n\n")
	} else if snap.TransitionError != nil {
		b.WriteString(styles.WarningText.Render("Last change was undone: " + describeError(snap.TransitionError)))
		b.WriteString("\n\n")
	}

	rows := m.boardRows()
	if len(rows) == 0 {
		if snap.Loaded() {
			b.WriteString(styles.MutedText.Render("No quests on the board. Press N to generate new ones."))
		} else if snap.LoadError == nil && !m.loading {
			b.WriteString(styles.MutedText.Render("Waiting for the board..."))
		}
		return b.String()
	}

	textWidth := max(m.width-28, 20)
	start, end := visibleWindow(len(rows), m.selectedRow, m.contentHeight())
	section := ""
	for i := start; i < end; i++ {
		row := rows[i]
		if row.section != section {
			section = row.section
			if i > start {
				b.WriteString("\n")
			}
			b.WriteString(styles.AccentText.Bold(true).Render(section))
			b.WriteString("\n")
		}
		b.WriteString(m.renderBoardRow(row, i == m.selectedRow, textWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderBoardRow(row boardRow, selected bool, textWidth int) string {
	styles := m.theme.Styles()

	cursor := "  "
	if selected {
		cursor = styles.AccentText.Render("> ")
	}

	marker := "  "
	if row.pending {
		marker = m.spinner.View() + " "
	}

	badge := styles.StatusStyle(row.quest.Status).Render(padRight(string(row.quest.Status), 9))
	text := truncate(row.quest.Text, textWidth)
	if selected {
		text = styles.Selected.Render(text)
	} else if row.readOnly {
		text = styles.MutedText.Render(text)
	} else {
		text = styles.Text.Render(text)
	}

	line := cursor + marker + badge + " " + text
	meta := questMeta(row.quest)
	if row.quest.Status == sidequest.StatusPotential && !row.readOnly {
		if exp := expiryLabel(row.quest.ExpiresAt, time.Now()); exp != "" {
			meta = strings.TrimPrefix(meta+" · "+exp, " · ")
		}
	}
	if meta != "" && !m.compact {
		line += "\n" + strings.Repeat(" ", 15) + styles.FaintText.Render(meta)
	}
	return line
}

// questMeta formats the secondary line under a quest.
func questMeta(q sidequest.Quest) string {
	parts := slices.DeleteFunc([]string{
		string(q.Category),
		q.EstimatedTime,
		q.Difficulty,
	}, func(s string) bool { return strings.TrimSpace(s) == "" })
	if q.Feedback != nil && q.Feedback.Rating != sidequest.RatingNone {
		parts = append(parts, ratingLabel(q.Feedback.Rating))
	}
	return strings.Join(parts, " · ")
}

func ratingLabel(r sidequest.Rating) string {
	switch r {
	case sidequest.RatingThumbsUp:
		return "liked"
	case sidequest.RatingThumbsDown:
		return "disliked"
	default:
		return ""
	}
}

// contentHeight is the number of quest rows that fit in the active view.
func (m Model) contentHeight() int {
	// header, tabs, blank line and footer take six lines
	lines := m.height - 6
	if !m.compact {
		lines /= 2
	}
	return max(lines, 1)
}
