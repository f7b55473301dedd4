package state

import (
	"fmt"

	"github.com/five82/sidequest/internal/sidequest"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a ConflictError for id if not allowed.
func (r GuardResult) Error(id string) error {
	if r.Allowed {
		return nil
	}
	return &sidequest.ConflictError{ID: id, Reason: r.Reason}
}

// clientTransitions lists the moves the client may request. Terminal statuses
// have no entry: only the backend may move a quest out of them.
var clientTransitions = map[sidequest.Status][]sidequest.Status{
	sidequest.StatusPotential: {sidequest.StatusAccepted, sidequest.StatusDeclined},
	sidequest.StatusAccepted:  {sidequest.StatusCompleted, sidequest.StatusFailed, sidequest.StatusAbandoned},
}

// CanTransition evaluates whether the client may request from -> to.
// Rules:
// - Target must be a known status
// - Terminal statuses are never transitioned further by the client
// - Only potential -> accepted|declined and accepted -> completed|failed|abandoned
func CanTransition(from, to sidequest.Status) GuardResult {
	if !to.Valid() {
		return GuardResult{Reason: fmt.Sprintf("unknown status %q", to)}
	}
	if from.Terminal() {
		return GuardResult{Reason: fmt.Sprintf("quest is %s and cannot change", from)}
	}
	for _, allowed := range clientTransitions[from] {
		if allowed == to {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{Reason: fmt.Sprintf("cannot move from %s to %s", from, to)}
}

// CanAttachFeedback evaluates whether feedback may accompany a transition to status.
func CanAttachFeedback(status sidequest.Status, feedback *sidequest.Feedback) GuardResult {
	if feedback != nil && status != sidequest.StatusCompleted {
		return GuardResult{Reason: fmt.Sprintf("feedback only accompanies completed, not %s", status)}
	}
	return GuardResult{Allowed: true}
}
