package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sidequest.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		expectedAll = append(expectedAll, fmt.Sprintf("time=2025-03-01T10:00:0%dZ level=INFO msg=\"line %d\"", i%10, i))
	}
	logPath := writeLog(t, expectedAll)

	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read partial (2)", 2, expectedAll[8:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, Query{Limit: tt.limit})
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), Query{Limit: 5})
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestRead_Filters(t *testing.T) {
	lines := []string{
		`time=t level=DEBUG msg="board load succeeded" component=questsync`,
		`time=t level=WARN msg="board load failed" component=questsync error="dial tcp"`,
		`time=t level=INFO msg="session established"`,
		`time=t level=WARN msg="update profile failed" component=profile`,
		`panic: something without a level`,
		``,
		`time=t level=ERROR msg="built-in quests unavailable" component=questsync`,
	}
	path := writeLog(t, lines)

	got, err := Read(path, Query{MinLevel: slog.LevelWarn})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{lines[1], lines[3], lines[4], lines[6]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Read(warn) = %v, want %v", got, want)
	}

	got, err = Read(path, Query{MinLevel: slog.LevelDebug, Component: "questsync", Limit: 2})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want = []string{lines[1], lines[6]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Read(questsync) = %v, want %v", got, want)
	}
}

func TestLineLevel(t *testing.T) {
	tests := []struct {
		line string
		want slog.Level
		ok   bool
	}{
		{`level=INFO msg=x`, slog.LevelInfo, true},
		{`time=t level=WARN msg=x`, slog.LevelWarn, true},
		{`level=ERROR+2 msg=x`, slog.LevelError + 2, true},
		{`msg="no level here"`, 0, false},
		{`level=LOUD msg=x`, 0, false},
	}
	for _, tt := range tests {
		got, ok := LineLevel(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LineLevel(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestColorizeLine(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	plain := `level=INFO msg=ok`
	if got := ColorizeLine(plain); got != plain {
		t.Errorf("ColorizeLine(info) = %q, want unchanged", got)
	}
	if got := ColorizeLine("no level"); got != "no level" {
		t.Errorf("ColorizeLine(no level) = %q, want unchanged", got)
	}

	errLine := `level=ERROR msg=boom`
	if got := ColorizeLine(errLine); got == errLine || !strings.Contains(got, errLine) {
		t.Errorf("ColorizeLine(error) = %q, want coloured %q", got, errLine)
	}
}

func TestColorizeLines(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	in := []string{"level=WARN msg=a", "level=INFO msg=b"}
	got := ColorizeLines(in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("ColorizeLines with colour disabled = %v, want %v", got, in)
	}
}
