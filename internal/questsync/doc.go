// Package questsync keeps the local quest board consistent with the backend.
//
// Transitions are optimistic: the requested status is written to the
// state.Store before the request is sent, then replaced by the backend's
// record on success or restored from a snapshot on failure. Each quest has at
// most one transition in flight; a second request for the same quest fails
// with *sidequest.ConflictError until the first settles.
//
// Board loads go through a singleflight group, so LoadBoard and RefreshBoard
// never run concurrently and a caller that arrives mid-load receives that
// load's result. A failed load clears the board and exposes the last cached
// board (or the built-in quest list) as read-only fallback data.
//
// When a load and a transition overlap, the last write from the server wins:
// a successful transition response is applied to whatever board is current,
// and a failed transition does not roll back over a board loaded after it
// started.
package questsync
