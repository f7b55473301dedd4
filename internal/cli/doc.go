// Package cli defines the sidequest command tree.
//
// The root command opens the terminal UI. Subcommands open a session, do one
// thing against the board or profile, and close the session again; closing
// saves any profile edit the command made.
package cli
