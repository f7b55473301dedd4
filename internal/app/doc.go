// Package app provides the orchestration layer for the SideQuest client.
//
// # Overview
//
// This package wires together configuration, logging, the session, the
// local cache, the board and profile coordinators, polling, and the UI. It
// is the composition root: NewSession builds a signed-in Session that both
// the TUI (Run) and the one-shot CLI commands use.
//
// # Startup
//
//  1. Load config from ~/.config/sidequest/config.toml (defaults when missing)
//  2. Open the slog log file; the TUI owns the terminal
//  3. Sign in anonymously under the bootstrap timeout (default 10s)
//  4. Open the SQLite cache; without it the client still runs, minus the
//     offline copy
//  5. Build state.Store, questsync.Coordinator and profile.Adapter
//  6. Run: load the board and profile, start the poller, start the TUI
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> NewSession()        config, log, sign-in, cache, coordinators
//	       ├─────> LoadBoard()         populate the store (fallback on failure)
//	       ├─────> Profile.Load()      seed the autosave draft
//	       ├─────> StartPoller()       keep the board current
//	       └─────> ui.Run()            TUI (blocks)
//
// # Polling Behavior
//
// While the board is loaded the poller asks the backend every poll_interval
// (default 5m) whether a new board is due, and refreshes when it is. When a
// poll fails, or the board never loaded, it retries after 2s, doubling up to
// 30s, until a poll succeeds. A poll rejected with an auth error renews the
// anonymous session and is retried once straight away.
//
// # Error Handling
//
// Fatal (returned from NewSession or Run):
//   - Invalid configuration
//   - Unwritable log file
//   - Sign-in failure or bootstrap timeout
//
// Recoverable (logged):
//   - Cache open failure
//   - Initial board or profile load failure
//   - Poll failures
//
// Session.Close saves any outstanding profile draft before releasing the
// cache and the log file.
package app
