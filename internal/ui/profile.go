package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sidequest/internal/autosave"
	"github.com/five82/sidequest/internal/profile"
	"github.com/five82/sidequest/internal/sidequest"
)

// Profile form fields that follow the category toggles.
const (
	fieldNotifications = iota
	fieldNotificationTime
	fieldNotes
	trailingFields
)

func profileFieldCount() int {
	return len(sidequest.Categories) + trailingFields
}

// categoryAt returns the category for a form row, if the row is one.
func categoryAt(field int) (sidequest.Category, bool) {
	if field < 0 || field >= len(sidequest.Categories) {
		return "", false
	}
	return sidequest.Categories[field], true
}

// trailingField maps a form row past the categories to its field constant.
func trailingField(field int) int {
	return field - len(sidequest.Categories)
}

// handleProfileKey processes keyboard input for the profile view.
func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.profile == nil {
		return m, nil
	}
	if _, ok := m.profile.Canonical(); !ok {
		if key.Matches(msg, m.keys.Reload) {
			return m, loadProfileCmd(m.ctx, m.profile)
		}
		return m, nil
	}

	count := profileFieldCount()
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.profileField < count-1 {
			m.profileField++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.profileField > 0 {
			m.profileField--
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.profileField = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.profileField = count - 1
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, loadProfileCmd(m.ctx, m.profile)
	case key.Matches(msg, m.keys.ResetProfile):
		return m, resetProfileCmd(m.ctx, m.profile)
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Confirm):
		return m.activateProfileField()
	}
	return m, nil
}

func (m Model) activateProfileField() (tea.Model, tea.Cmd) {
	if c, ok := categoryAt(m.profileField); ok {
		m.applyEdit(func(d *profile.Draft) { d.ToggleCategory(c) })
		return m, nil
	}

	draft := m.profile.Draft()
	switch trailingField(m.profileField) {
	case fieldNotifications:
		m.applyEdit(func(d *profile.Draft) { d.NotificationsEnabled = !d.NotificationsEnabled })
		return m, nil
	case fieldNotificationTime:
		return m.startEditing(draft.NotificationTime, "HH:MM", 5)
	case fieldNotes:
		return m.startEditing(draft.AdditionalNotes, "Anything the quest generator should know", profile.MaxNotesLength)
	}
	return m, nil
}

func (m *Model) applyEdit(fn func(*profile.Draft)) {
	if err := m.profile.Edit(fn); err != nil {
		m.setFlash(describeError(err), true)
		return
	}
	m.flash = ""
}

func (m Model) startEditing(value, placeholder string, limit int) (tea.Model, tea.Cmd) {
	m.editing = true
	m.inputErr = ""
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CharLimit = limit
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// handleEditKey routes input to the text field until it is confirmed or cancelled.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.inputErr = ""
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		field := trailingField(m.profileField)
		err := m.profile.Edit(func(d *profile.Draft) {
			switch field {
			case fieldNotificationTime:
				d.NotificationTime = strings.TrimSpace(value)
			case fieldNotes:
				d.AdditionalNotes = value
			}
		})
		if err != nil {
			m.inputErr = describeError(err)
			return m, nil
		}
		m.editing = false
		m.inputErr = ""
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func resetProfileCmd(ctx context.Context, p *profile.Adapter) tea.Cmd {
	return func() tea.Msg {
		_, err := p.Reset(ctx)
		return profileLoadedMsg{err: err}
	}
}

// renderProfile renders the preferences form.
func (m Model) renderProfile() string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.profile == nil {
		return styles.MutedText.Render("Profile is not available.")
	}
	if _, ok := m.profile.Canonical(); !ok {
		b.WriteString(styles.DangerText.Render("Profile not loaded."))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Press r to retry."))
		return b.String()
	}
	if m.profile.Stale() {
		b.WriteString(styles.WarningText.Render("Offline: showing the cached profile."))
		b.WriteString("\n\n")
	}

	draft := m.profile.Draft()

	b.WriteString(styles.AccentText.Bold(true).Render("Categories"))
	b.WriteString("\n")
	for i, c := range sidequest.Categories {
		b.WriteString(m.renderProfileRow(i, checkbox(draft.HasCategory(c))+" "+titleCase(string(c))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Notifications"))
	b.WriteString("\n")
	base := len(sidequest.Categories)
	b.WriteString(m.renderProfileRow(base+fieldNotifications, checkbox(draft.NotificationsEnabled)+" Daily reminder"))
	b.WriteString("\n")
	b.WriteString(m.renderProfileRow(base+fieldNotificationTime, "Time   "+m.fieldValue(fieldNotificationTime, draft.NotificationTime)))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Notes"))
	b.WriteString("\n")
	notes := draft.AdditionalNotes
	if notes == "" && !(m.editing && trailingField(m.profileField) == fieldNotes) {
		notes = styles.FaintText.Render("(none)")
	}
	b.WriteString(m.renderProfileRow(base+fieldNotes, m.fieldValue(fieldNotes, truncate(notes, max(m.width-10, 20)))))
	b.WriteString("\n")

	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(m.inputErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderSaveState())
	return b.String()
}

func (m Model) renderProfileRow(field int, content string) string {
	styles := m.theme.Styles()
	if field == m.profileField {
		return styles.AccentText.Render("> ") + styles.Selected.Render(content)
	}
	return "  " + styles.Text.Render(content)
}

// fieldValue shows the text input in place of the value being edited.
func (m Model) fieldValue(field int, value string) string {
	if m.editing && trailingField(m.profileField) == field {
		return m.input.View()
	}
	return value
}

// renderSaveState renders the autosave indicator.
func (m Model) renderSaveState() string {
	styles := m.theme.Styles()
	if err := m.profile.LastError(); err != nil && m.profile.HasUnsavedChanges() {
		return styles.DangerText.Render("Not saved: " + describeError(err))
	}
	switch m.profile.State() {
	case autosave.Saving:
		return m.spinner.View() + styles.MutedText.Render(" Saving...")
	case autosave.Dirty:
		return styles.WarningText.Render("Unsaved changes")
	default:
		if at := m.profile.SavedAt(); !at.IsZero() {
			return styles.SuccessText.Render("All changes saved") +
				styles.FaintText.Render(" · "+agoLabel(time.Since(at)))
		}
		return styles.SuccessText.Render("All changes saved")
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
