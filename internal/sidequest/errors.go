package sidequest

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned by a TokenSource before the session bootstrap has
// produced a credential.
var ErrNoSession = errors.New("session not established")

// NotFoundError reports a quest id that is absent from the board or backend.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("quest %s not found", e.ID)
}

// ConflictError reports a transition that cannot start: one is already pending
// for the quest, or its current status forbids the requested one.
type ConflictError struct {
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("quest %s: conflicting transition", e.ID)
	}
	return fmt.Sprintf("quest %s: %s", e.ID, e.Reason)
}

// TransportError reports a request that did not produce a usable response.
type TransportError struct {
	Op     string
	Status int // zero when the request never got a response
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 && e.Err != nil {
		return fmt.Sprintf("%s: api returned status %d: %v", e.Op, e.Status, e.Err)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: api returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Temporary reports whether retrying later may succeed.
func (e *TransportError) Temporary() bool {
	return e.Status == 0 || e.Status >= 500 || e.Status == 429
}

// AuthError reports a missing, invalid, or expired session.
type AuthError struct {
	Status int
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Reason != "" {
		return "auth: " + e.Reason
	}
	return fmt.Sprintf("auth: api returned status %d", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports input rejected before (or by) the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrorKind classifies an error into the taxonomy above.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotFound
	KindConflict
	KindTransport
	KindAuth
	KindValidation
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Kind returns the taxonomy kind of err, unwrapping as needed.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		notFound   *NotFoundError
		conflict   *ConflictError
		transport  *TransportError
		auth       *AuthError
		validation *ValidationError
	)
	switch {
	case errors.As(err, &auth), errors.Is(err, ErrNoSession):
		return KindAuth
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conflict):
		return KindConflict
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &transport):
		return KindTransport
	}
	return KindUnknown
}

// Retryable reports whether the UI should offer a retry affordance for err.
func Retryable(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport) && transport.Temporary()
}
