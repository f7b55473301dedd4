package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/app"
	"github.com/five82/sidequest/internal/profile"
	"github.com/five82/sidequest/internal/sidequest"
)

// ProfileCmd returns the profile command
func ProfileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change quest preferences",
	}
	cmd.AddCommand(profileShowCmd(flags))
	cmd.AddCommand(profileSetCmd(flags))
	cmd.AddCommand(profileResetCmd(flags))
	cmd.AddCommand(profileOnboardCmd(flags))
	return cmd
}

func profileShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				p, err := s.Profile.Load(ctx)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), p, s.Profile.Stale())
				return nil
			})
		},
	}
}

func profileSetCmd(flags *globalFlags) *cobra.Command {
	var (
		categories []string
		notify     bool
		notifyAt   string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change profile fields",
		Long: `Change one or more profile fields. Unset flags keep their current value.

Categories: ` + categoryList(),
		Example: `  sidequest profile set --categories fitness,social --notify --at 08:30
  sidequest profile set --notes "no equipment at home"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			if !changed("categories") && !changed("notify") && !changed("at") && !changed("notes") {
				return fmt.Errorf("nothing to change; see --help")
			}
			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				if _, err := s.Profile.Load(ctx); err != nil {
					return err
				}
				err := s.Profile.Edit(func(d *profile.Draft) {
					if changed("categories") {
						d.Categories = parseCategories(categories)
					}
					if changed("notify") {
						d.NotificationsEnabled = notify
					}
					if changed("at") {
						d.NotificationTime = strings.TrimSpace(notifyAt)
					}
					if changed("notes") {
						d.AdditionalNotes = notes
					}
				})
				if err != nil {
					return err
				}
				// Close saves immediately instead of waiting out the debounce.
				if err := s.Profile.Close(ctx); err != nil {
					return err
				}
				p, _ := s.Profile.Canonical()
				success(cmd.OutOrStdout(), "profile saved")
				printProfile(cmd.OutOrStdout(), p, false)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", nil, "comma-separated quest categories")
	cmd.Flags().BoolVar(&notify, "notify", false, "enable the daily reminder (--notify=false disables it)")
	cmd.Flags().StringVar(&notifyAt, "at", "", "reminder time as HH:MM")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the quest generator")
	return cmd
}

func profileResetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				p, err := s.Profile.Reset(ctx)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "profile reset")
				printProfile(cmd.OutOrStdout(), p, false)
				return nil
			})
		},
	}
}

func profileOnboardCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Mark onboarding as complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				if _, err := s.Profile.Load(ctx); err != nil {
					return err
				}
				res, err := s.Profile.CompleteOnboarding(ctx)
				if err != nil {
					return err
				}
				msg := res.Message
				if msg == "" {
					msg = "onboarding complete"
				}
				success(cmd.OutOrStdout(), "%s", msg)
				return nil
			})
		},
	}
}

func parseCategories(values []string) []sidequest.Category {
	out := make([]sidequest.Category, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, sidequest.Category(v))
		}
	}
	return out
}

func categoryList() string {
	names := make([]string, 0, len(sidequest.Categories))
	for _, c := range sidequest.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
