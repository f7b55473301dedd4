package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/app"
	"github.com/five82/sidequest/internal/config"
	"github.com/five82/sidequest/internal/sidequest"
)

// HistoryCmd returns the history command.
func HistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		limit    int
		offset   int
		status   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past quests and streak stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := sidequest.HistoryQuery{
				Limit:    limit,
				Offset:   offset,
				Status:   sidequest.Status(status),
				Category: sidequest.Category(category),
			}
			if query.Status != "" && !query.Status.Valid() {
				return &sidequest.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
			}
			if query.Category != "" && !query.Category.Valid() {
				return &sidequest.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
			}

			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				w := cmd.OutOrStdout()
				stats, err := s.Quests.Stats(ctx)
				if err != nil {
					return fmt.Errorf("history stats: %w", err)
				}
				fmt.Fprintf(w, "Streak %s  ·  %d/%d completed (%.0f%%)\n\n",
					color.New(color.FgHiGreen, color.Bold).Sprintf("%d", stats.Streak),
					stats.TotalCompleted, stats.TotalAccepted, stats.SuccessRate)

				page, err := s.Quests.History(ctx, query)
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
				printQuests(w, "History", page.Quests)
				if shown := page.Pagination.Offset + len(page.Quests); shown < page.Pagination.Total {
					fmt.Fprintf(w, "%d of %d shown; use --offset %d for more\n", shown, page.Pagination.Total, shown)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of quests to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of quests to skip")
	cmd.Flags().StringVar(&status, "status", "", "only show quests with this status")
	cmd.Flags().StringVar(&category, "category", "", "only show quests in this category")
	return cmd
}

// HealthCmd returns the health command. It needs no session.
func HealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if flags.apiURL != "" {
				cfg.APIURL = flags.apiURL
			}
			client, err := sidequest.NewClient(cfg.APIURL, sidequest.WithTimeout(cfg.RequestTimeout))
			if err != nil {
				return err
			}
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%s unreachable: %w", cfg.APIURL, err)
			}
			success(cmd.OutOrStdout(), "%s is healthy", cfg.APIURL)
			return nil
		},
	}
}
