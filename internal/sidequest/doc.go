// Package sidequest provides an HTTP client for the SideQuest backend API.
//
// # Overview
//
// This package is the remote gateway of the client: stateless request/response
// calls for the quest board, quest status transitions, the user profile, and the
// quest history. It handles HTTP communication, JSON (de)serialization, and maps
// failures onto a small error taxonomy the sync layer can act on.
//
// # Architecture
//
//   - client.go: Gateway interface, Client implementation, request plumbing
//   - types.go: Data structures mirroring the SideQuest API schema
//   - errors.go: Typed errors and the Kind classifier
//
// # Client Usage
//
//	client, err := sidequest.NewClient("https://api.example.com/api",
//		sidequest.WithTokenSource(sess),
//		sidequest.WithTimeout(30*time.Second))
//	if err != nil {
//		return err
//	}
//	board, err := client.GetBoard(ctx)
//
// # API Endpoints
//
//   - POST /sidequest/quests/board: current board (backend refreshes/tops up as needed)
//   - POST /sidequest/quests/refresh: force a new board
//   - GET  /sidequest/quests/needs-refresh: staleness probe
//   - PUT  /sidequest/quests/{id}/status: status transition, returns the canonical quest
//   - GET/PUT /sidequest/me: profile read and partial update
//   - POST /sidequest/me/reset, POST /sidequest/onboarding/complete
//   - GET  /sidequest/quests/history, GET /sidequest/history/stats
//   - GET  /sidequest/health (unauthenticated)
//   - POST /sidequest/auth/anonymous/signin (unauthenticated)
//
// Responses may be bare JSON or wrapped as {"success": true, "data": ...}; both
// decode into the same types.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept, User-Agent (sidequest/0.1) and a fresh X-Request-ID
//   - Carry "Authorization: Bearer <token>" from the TokenSource when authenticated
//   - Have a 30-second timeout unless overridden with WithTimeout
//
// # Error Handling
//
// Every failure is one of:
//
//   - *TransportError: network failure, timeout, 5xx, undecodable body
//   - *AuthError: 401/403, or no session yet (wraps ErrNoSession)
//   - *NotFoundError: 404 on a quest-scoped call
//   - *ConflictError: 409
//   - *ValidationError: 400/422, or local argument checks
//
// Kind(err) classifies any wrapped error; Retryable(err) tells the UI whether to
// offer a retry affordance.
//
// # Design Rationale
//
// The client deliberately has no retries and no caching. The coordinators in
// questsync and profile own retry, rollback and fallback policy; keeping the
// transport thin keeps that policy in one place.
package sidequest
