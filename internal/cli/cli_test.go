package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

func init() {
	color.NoColor = true
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := RootCmd("test")

	want := []string{"board", "accept", "decline", "complete", "fail", "abandon", "profile", "history", "health", "logs"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, name := range []string{"show", "set", "reset", "onboard"} {
		cmd, _, err := root.Find([]string{"profile", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestTransitionCmds_RequireQuestID(t *testing.T) {
	root := RootCmd("test")
	root.SetArgs([]string{"accept"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestProfileSet_RequiresAChange(t *testing.T) {
	root := RootCmd("test")
	root.SetArgs([]string{"profile", "set"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestHistory_RejectsUnknownStatus(t *testing.T) {
	root := RootCmd("test")
	root.SetArgs([]string{"history", "--status", "sleeping"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	var verr *sidequest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want sidequest.Rating
	}{
		{"", sidequest.RatingNone},
		{"up", sidequest.RatingThumbsUp},
		{"thumbs_down", sidequest.RatingThumbsDown},
	}
	for _, tt := range tests {
		got, err := parseRating(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseRating("meh")
	var verr *sidequest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)
}

func TestParseCategories(t *testing.T) {
	got := parseCategories([]string{" Fitness", "", "social "})
	assert.Equal(t, []sidequest.Category{sidequest.CategoryFitness, sidequest.CategorySocial}, got)
}

func TestFormatQuest(t *testing.T) {
	q := sidequest.Quest{
		ID:            "q1",
		Text:          "Walk around the block",
		Status:        sidequest.StatusAccepted,
		Category:      sidequest.CategoryOutdoors,
		EstimatedTime: "10 min",
	}
	assert.Equal(t, "q1  accepted   Walk around the block (outdoors, 10 min)", formatQuest(q))
}

func TestPrintBoard_Fallback(t *testing.T) {
	root := RootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)

	printBoard(root, state.Snapshot{
		LoadError:      assert.AnError,
		Fallback:       []sidequest.Quest{{ID: "fallback-1", Text: "Stretch", Status: sidequest.StatusPotential}},
		FallbackSource: "builtin",
	})

	assert.Contains(t, out.String(), "showing 1 suggestions from builtin")
	assert.Contains(t, out.String(), "fallback-1")
}

func TestLogsCmd_ReadsLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sidequest.log")
	require.NoError(t, os.WriteFile(path, []byte(
		"level=INFO msg=started\nlevel=WARN msg=\"board load failed\" component=questsync\n"), 0o644))

	root := RootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"logs", "--log", path, "--level", "warn"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "level=WARN msg=\"board load failed\" component=questsync\n", out.String())
}

func TestLogsCmd_RejectsBadLevel(t *testing.T) {
	root := RootCmd("test")
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"logs", "--level", "loud"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --level")
}
