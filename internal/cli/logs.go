package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/config"
	"github.com/five82/sidequest/internal/logtail"
)

// LogsCmd returns the logs command. It reads the client log without
// signing in.
func LogsCmd(flags *globalFlags) *cobra.Command {
	var (
		lines     int
		level     string
		component string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the client log",
		Example: `  sidequest logs -n 100
  sidequest logs --level warn --component questsync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var min slog.Level
			if err := min.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("invalid --level %q: %w", level, err)
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path := cfg.LogPath
			if flags.logPath != "" {
				path = flags.logPath
			}
			out, err := logtail.Read(path, logtail.Query{Limit: lines, MinLevel: min, Component: component})
			if err != nil {
				return err
			}
			for _, line := range logtail.ColorizeLines(out) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "info", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&component, "component", "", "only show one component (questsync, profile, poller, ui)")
	return cmd
}
