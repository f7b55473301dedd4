package ui

import (
	"strings"

	"github.com/five82/sidequest/internal/sidequest"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// titleCase converts an underscore-separated string to title case.
func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// transitionVerb names a status change for the status line.
func transitionVerb(status sidequest.Status) string {
	switch status {
	case sidequest.StatusAccepted:
		return "Accepted"
	case sidequest.StatusDeclined:
		return "Declined"
	case sidequest.StatusCompleted:
		return "Completed"
	case sidequest.StatusFailed:
		return "Marked failed"
	case sidequest.StatusAbandoned:
		return "Abandoned"
	default:
		return "Updated"
	}
}

// describeError turns a client error into a short user-facing message.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	switch sidequest.Kind(err) {
	case sidequest.KindTransport:
		if sidequest.Retryable(err) {
			return "cannot reach the server, try again"
		}
		return "server error: " + err.Error()
	case sidequest.KindAuth:
		return "not signed in"
	case sidequest.KindNotFound:
		return "quest is no longer on the board"
	default:
		return err.Error()
	}
}
