package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/five82/sidequest/internal/app"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
	apiURL     string
	logPath    string
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		APIURL:     g.apiURL,
		LogPath:    g.logPath,
	}
}

// withSession opens a session for one command and closes it afterwards,
// saving any profile draft the command left behind.
func (g *globalFlags) withSession(ctx context.Context, fn func(context.Context, *app.Session) error) (err error) {
	s, err := app.NewSession(ctx, g.options())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, s)
}

// RootCmd returns the sidequest command tree. Without a subcommand it runs
// the terminal UI.
func RootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "sidequest",
		Short:   "SideQuest - small daily quests from your terminal",
		Version: version,
		Long: `SideQuest suggests a handful of short real-world quests each day.
Run without arguments to open the board, or use a subcommand for one-off actions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/sidequest/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "UI preferences file (default ~/.config/sidequest/prefs.toml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "override the API base URL")
	pf.StringVar(&flags.logPath, "log", "", "override the log file")

	root.AddCommand(BoardCmd(flags))
	for _, cmd := range TransitionCmds(flags) {
		root.AddCommand(cmd)
	}
	root.AddCommand(ProfileCmd(flags))
	root.AddCommand(HistoryCmd(flags))
	root.AddCommand(HealthCmd(flags))
	root.AddCommand(LogsCmd(flags))

	return root
}
