// Package autosave implements a debounced, lifecycle-aware save engine for a
// single draft value.
//
// # Lifecycle
//
// A Coordinator is owned by one editing surface. The owner reports edits with
// NotifyChanged and forwards its lifecycle:
//
//   - Blur when the surface loses focus: pending edits are saved immediately.
//   - Focus when it regains focus: the debounce resumes if anything is unsaved.
//   - Close when it is torn down: a final save is attempted from values read
//     inside Close, never from the owner's state.
//
// # Saves
//
// At most one Save call runs at a time. Flush while a save is in flight
// returns nil without calling Save; when the in-flight save settles and the
// draft has moved on, the debounce is re-armed. A failed save leaves the
// draft dirty and is not retried; the next NotifyChanged or Flush tries again.
//
// Debounce timers are stopped before they are replaced and carry a generation
// number, so a timer that fired while losing a race with NotifyChanged or Close
// does nothing.
package autosave
