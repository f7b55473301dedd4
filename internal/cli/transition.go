package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/app"
	"github.com/five82/sidequest/internal/sidequest"
)

// TransitionCmds returns one command per quest status change.
func TransitionCmds(flags *globalFlags) []*cobra.Command {
	return []*cobra.Command{
		transitionCmd(flags, "accept", "Take on a quest from the board", sidequest.StatusAccepted),
		transitionCmd(flags, "decline", "Remove a quest from the board", sidequest.StatusDeclined),
		completeCmd(flags),
		transitionCmd(flags, "fail", "Mark an accepted quest as failed", sidequest.StatusFailed),
		transitionCmd(flags, "abandon", "Give up on an accepted quest", sidequest.StatusAbandoned),
	}
}

func transitionCmd(flags *globalFlags, use, short string, status sidequest.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <quest-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, flags, args[0], status, nil)
		},
	}
}

func completeCmd(flags *globalFlags) *cobra.Command {
	var (
		rating  string
		comment string
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "complete <quest-id>",
		Short: "Mark an accepted quest as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRating(rating)
			if err != nil {
				return err
			}
			feedback := &sidequest.Feedback{
				Completed: true,
				Rating:    r,
				Comment:   comment,
				TimeSpent: minutes,
			}
			return runTransition(cmd, flags, args[0], sidequest.StatusCompleted, feedback)
		},
	}

	cmd.Flags().StringVar(&rating, "rating", "", "rate the quest: up or down")
	cmd.Flags().StringVar(&comment, "comment", "", "free-form feedback")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "time spent, in minutes")
	return cmd
}

func parseRating(v string) (sidequest.Rating, error) {
	switch v {
	case "":
		return sidequest.RatingNone, nil
	case "up", "thumbs_up":
		return sidequest.RatingThumbsUp, nil
	case "down", "thumbs_down":
		return sidequest.RatingThumbsDown, nil
	default:
		return "", &sidequest.ValidationError{Field: "rating", Reason: fmt.Sprintf("%q is not up or down", v)}
	}
}

func runTransition(cmd *cobra.Command, flags *globalFlags, id string, status sidequest.Status, feedback *sidequest.Feedback) error {
	return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
		if err := s.Quests.LoadBoard(ctx); err != nil {
			return fmt.Errorf("load board: %w", err)
		}
		q, err := s.Quests.Transition(ctx, id, status, feedback)
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s", formatQuest(q))
		return nil
	})
}
