// Package logtail reads the tail of the SideQuest client log.
//
// The TUI owns the terminal, so the client writes slog text records to a
// file instead (log_path in the config). This package reads that file back
// for the `sidequest logs` command.
//
// # Reading
//
// Read scans the file once and keeps only the newest matching lines, so
// memory stays proportional to the requested limit rather than the file
// size. Lines can be filtered by minimum level and by the component
// attribute each coordinator adds to its logger:
//
//	lines, err := logtail.Read(cfg.LogPath, logtail.Query{
//		Limit:     200,
//		MinLevel:  slog.LevelWarn,
//		Component: "questsync",
//	})
//
// Lines without a level attribute are kept regardless of MinLevel.
//
// # Colorizing
//
// ColorizeLine colours a record by level with fatih/color: errors red,
// warnings yellow, debug faint. Colour is disabled automatically when
// stdout is not a terminal.
package logtail
