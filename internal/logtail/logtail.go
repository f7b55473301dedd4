package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Query selects which lines Read returns.
type Query struct {
	Limit     int        // last N matching lines; zero or less means all
	MinLevel  slog.Level // lines below this level are skipped; the zero value is Info
	Component string     // only lines with component=<value>, when set
}

// Read returns the last matching lines of the slog text log at path, oldest
// first. A missing file yields no lines.
func Read(path string, q Query) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !q.matches(line) {
			continue
		}
		lines = append(lines, line)
		if q.Limit > 0 && len(lines) > 2*q.Limit {
			// Drop the oldest half; only the tail is returned.
			lines = append(lines[:0], lines[len(lines)-q.Limit:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if q.Limit > 0 && len(lines) > q.Limit {
		lines = lines[len(lines)-q.Limit:]
	}
	return lines, nil
}

func (q Query) matches(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if level, ok := LineLevel(line); ok && level < q.MinLevel {
		return false
	}
	if q.Component != "" && field(line, "component") != q.Component {
		return false
	}
	return true
}

// LineLevel extracts the level=... attribute from a slog text line.
func LineLevel(line string) (slog.Level, bool) {
	raw := field(line, "level")
	if raw == "" {
		return 0, false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, false
	}
	return level, true
}

// field returns the unquoted value of key=value in a slog text line.
func field(line, key string) string {
	prefix := key + "="
	for _, tok := range strings.Fields(line) {
		if v, ok := strings.CutPrefix(tok, prefix); ok {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

// ColorizeLine colours a line by its level for terminal display.
func ColorizeLine(line string) string {
	level, ok := LineLevel(line)
	if !ok {
		return line
	}
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed).Sprint(line)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow).Sprint(line)
	case level < slog.LevelInfo:
		return color.New(color.Faint).Sprint(line)
	default:
		return line
	}
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
