package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/app"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

// BoardCmd returns the board command.
func BoardCmd(flags *globalFlags) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show today's quest board",
		Long: `Show today's quests grouped by status.

If the board cannot be loaded, the last cached board or the built-in
suggestions are shown instead and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				load := s.Quests.LoadBoard
				if regenerate {
					load = s.Quests.RefreshBoard
				}
				err := load(ctx)
				printBoard(cmd, s.Store.Snapshot())
				if err != nil {
					return fmt.Errorf("load board: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&regenerate, "new", false, "generate a new set of quests first")
	return cmd
}

func printBoard(cmd *cobra.Command, snap state.Snapshot) {
	w := cmd.OutOrStdout()
	if snap.LoadError != nil {
		if len(snap.Fallback) > 0 {
			warn(w, "board unavailable; showing %d suggestions from %s", len(snap.Fallback), snap.FallbackSource)
			printQuests(w, "Suggestions", snap.Fallback)
		}
		return
	}
	if snap.Board.Len() == 0 {
		fmt.Fprintln(w, "No quests on the board. Run `sidequest board --new` to generate some.")
		return
	}
	printQuests(w, "Available", collect(snap.Board, sidequest.StatusPotential))
	printQuests(w, "Active", collect(snap.Board, sidequest.StatusAccepted))
	printQuests(w, "Done today", collect(snap.Board, sidequest.StatusCompleted, sidequest.StatusFailed, sidequest.StatusAbandoned))
}

func collect(b state.Board, statuses ...sidequest.Status) []sidequest.Quest {
	var out []sidequest.Quest
	for q := range b.ByStatus(statuses...) {
		out = append(out, q)
	}
	return out
}
