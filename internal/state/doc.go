// Package state holds the client's local view of the quest board.
//
// # Overview
//
// The package has two layers:
//
//   - Board: an immutable, ordered set of quests keyed by id. Replace,
//     ApplyLocal and ApplyCanonical are pure functions that return a new Board.
//     ByStatus, Filter and All are lazy iter.Seq views that yield copies.
//   - Store: a thread-safe holder for the current Board plus the board
//     subsystem's bookkeeping (load error, transition error, generation,
//     consecutive failures, fallback quests).
//
// Guards (guards.go) are pure functions that decide which status moves the
// client may request; they do no I/O.
//
// # Concurrency Model
//
// Store uses a readers-writer lock:
//
//   - Replace, Fail, ApplyLocal, ApplyCanonical, Rollback: write lock
//   - Snapshot, Board: read lock
//
// The lock is never held during network I/O. Because Board values are never
// modified after construction, Snapshot can hand out the current Board without
// copying it; quests leave the package only as deep copies.
//
// # Atomic Error Slots
//
// Every method that changes the board in response to a network outcome records
// the matching error under the same lock:
//
//	store.Replace(board)               → board replaced, both errors cleared
//	store.Fail(err, fallback, source)  → board cleared, LoadError = err, TransitionError = nil
//	store.ApplyCanonical(q)            → quest replaced, TransitionError = nil
//	store.Rollback(prev, gen, err)     → quest restored, TransitionError = err
//
// LastError always holds the most recently recorded of the two, so a newer
// load failure is never hidden behind an older transition failure.
//
// A reader that takes a Snapshot after an await therefore always sees a board
// and an error that describe the same moment.
//
// # Generations
//
// Generation is bumped by Replace and Fail. ApplyLocal reports the generation a
// change was made against; Rollback only restores the previous quest if the
// generation is unchanged. When a board load lands while a transition is in
// flight the loaded board wins, and a later failure of that transition must not
// resurrect the pre-transition record on top of it.
//
// # Fallback
//
// When a load fails the board is cleared rather than left stale. Quests from the
// local cache (or the built-in list) are exposed separately in
// Snapshot.Fallback so the UI can show an explicit offline/retry state that is
// distinct from an empty board.
package state
