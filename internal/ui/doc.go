// Package ui provides the SideQuest terminal interface, built on Bubble Tea.
//
// # Views
//
// Three views share one Model:
//
//   - Board: today's quests grouped as available, active, and done. Status
//     changes go through questsync, so they appear immediately and are
//     undone if the server rejects them.
//   - Profile: category toggles, reminder settings, and notes. Edits go to
//     the profile adapter, which saves them after a quiet period.
//   - History: past quests and the streak summary.
//
// # Event Flow
//
//  1. Run builds the Model and starts the Bubble Tea program
//  2. A tick re-reads the board snapshot and pending transitions
//  3. Key presses become commands; commands run off the UI goroutine and
//     report back with a message
//  4. Leaving the profile view blurs the adapter, which flushes the draft;
//     quitting closes it, which saves anything still outstanding
//
// While the board cannot be loaded, fallback quests are listed read-only
// together with the load error.
package ui
