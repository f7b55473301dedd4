package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/five82/sidequest/internal/sidequest"
)

var statusColors = map[sidequest.Status]*color.Color{
	sidequest.StatusPotential: color.New(color.FgCyan),
	sidequest.StatusAccepted:  color.New(color.FgHiMagenta),
	sidequest.StatusCompleted: color.New(color.FgHiGreen),
	sidequest.StatusFailed:    color.New(color.FgRed),
	sidequest.StatusAbandoned: color.New(color.FgYellow),
	sidequest.StatusDeclined:  color.New(color.FgHiBlack),
}

func statusLabel(s sidequest.Status) string {
	label := fmt.Sprintf("%-9s", s)
	if c, ok := statusColors[s]; ok {
		return c.Sprint(label)
	}
	return label
}

// formatQuest renders one quest as "id  status  text (details)".
func formatQuest(q sidequest.Quest) string {
	var details []string
	for _, d := range []string{string(q.Category), q.EstimatedTime, q.Difficulty} {
		if strings.TrimSpace(d) != "" {
			details = append(details, d)
		}
	}
	line := fmt.Sprintf("%s  %s  %s", color.New(color.FgHiBlue).Sprint(q.ID), statusLabel(q.Status), q.Text)
	if len(details) > 0 {
		line += color.New(color.Faint).Sprintf(" (%s)", strings.Join(details, ", "))
	}
	return line
}

func printQuests(w io.Writer, title string, quests []sidequest.Quest) {
	if len(quests) == 0 {
		return
	}
	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
	for _, q := range quests {
		fmt.Fprintf(w, "  %s\n", formatQuest(q))
	}
	fmt.Fprintln(w)
}

func printProfile(w io.Writer, p sidequest.Profile, stale bool) {
	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, string(c))
	}
	notify := "off"
	if p.NotificationsEnabled {
		notify = "on at " + p.NotificationTime
	}
	fmt.Fprintf(w, "Categories:    %s\n", strings.Join(cats, ", "))
	fmt.Fprintf(w, "Reminders:     %s (%s)\n", notify, p.Timezone)
	if p.AdditionalNotes != "" {
		fmt.Fprintf(w, "Notes:         %s\n", p.AdditionalNotes)
	}
	fmt.Fprintf(w, "Onboarded:     %t\n", p.OnboardingCompleted)
	if stale {
		fmt.Fprintln(w, color.New(color.FgYellow).Sprint("(offline: cached profile)"))
	}
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.New(color.FgHiGreen).Sprint("✓ ")+fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.New(color.FgYellow).Sprint("! ")+fmt.Sprintf(format, args...))
}
