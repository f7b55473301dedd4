package sidequest

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		status   Status
		valid    bool
		terminal bool
	}{
		{StatusPotential, true, false},
		{StatusAccepted, true, false},
		{StatusCompleted, true, true},
		{StatusFailed, true, true},
		{StatusAbandoned, true, true},
		{StatusDeclined, true, true},
		{Status("snoozed"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestQuestCloneIsDeep(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	q := Quest{
		ID:          "q1",
		Tags:        []string{"outdoors"},
		CompletedAt: &at,
		Feedback:    &Feedback{Rating: RatingThumbsUp, Completed: true},
	}
	dup := q.Clone()
	dup.Tags[0] = "mutated"
	dup.Feedback.Comment = "mutated"
	*dup.CompletedAt = at.Add(time.Hour)

	if q.Tags[0] != "outdoors" {
		t.Fatalf("Clone shares Tags backing array")
	}
	if q.Feedback.Comment != "" {
		t.Fatalf("Clone shares Feedback pointer")
	}
	if !q.CompletedAt.Equal(at) {
		t.Fatalf("Clone shares CompletedAt pointer")
	}
}

func TestQuestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if (Quest{}).Expired(now) {
		t.Fatalf("quest without expiry should not be expired")
	}
	if !(Quest{ExpiresAt: now.Add(-time.Minute)}).Expired(now) {
		t.Fatalf("quest past expiry should be expired")
	}
	if (Quest{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("quest before expiry should not be expired")
	}
}

func TestQuestDecodesBackendPayload(t *testing.T) {
	raw := []byte(`{
  "id": "q-42",
  "text": "Take a 10-minute walk",
  "category": "outdoors",
  "estimatedTime": "10 min",
  "difficulty": "easy",
  "tags": ["nature"],
  "status": "completed",
  "completedAt": "2025-06-01T10:00:00Z",
  "feedback": {"rating": "thumbs_up", "completed": true, "timeSpent": 11},
  "createdAt": "2025-06-01T06:00:00Z",
  "expiresAt": "2025-06-02T06:00:00Z"
}`)
	var q Quest
	if err := json.Unmarshal(raw, &q); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if q.Status != StatusCompleted || q.Category != CategoryOutdoors {
		t.Fatalf("quest = %#v, want completed outdoors", q)
	}
	if q.Feedback == nil || q.Feedback.Rating != RatingThumbsUp || q.Feedback.TimeSpent != 11 {
		t.Fatalf("feedback = %#v, want thumbs up, 11 min", q.Feedback)
	}
	if q.CompletedAt == nil || q.CompletedAt.Hour() != 10 {
		t.Fatalf("completedAt = %v, want 10:00", q.CompletedAt)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13 10:11:12")
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime should return zero for garbage")
	}
	b := Board{LastRefreshed: "2025-12-13T06:00:00Z"}
	if b.ParsedLastRefreshed().Hour() != 6 {
		t.Fatalf("ParsedLastRefreshed = %v, want 06:00", b.ParsedLastRefreshed())
	}
}

func TestKindClassifiesWrappedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"not found", fmt.Errorf("load: %w", &NotFoundError{ID: "q1"}), KindNotFound},
		{"conflict", &ConflictError{ID: "q1"}, KindConflict},
		{"transport", &TransportError{Op: "GET /x", Status: 502}, KindTransport},
		{"auth", &AuthError{Status: 401}, KindAuth},
		{"no session", fmt.Errorf("bootstrap: %w", ErrNoSession), KindAuth},
		{"validation", &ValidationError{Field: "categories", Reason: "empty"}, KindValidation},
		{"other", fmt.Errorf("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransportErrorTemporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{503, true},
		{418, false},
	}
	for _, tt := range tests {
		e := &TransportError{Op: "GET /x", Status: tt.status}
		if got := e.Temporary(); got != tt.want {
			t.Errorf("Temporary() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTransportErrorMessage(t *testing.T) {
	tests := []struct {
		err  *TransportError
		want string
	}{
		{&TransportError{Op: "get board", Status: 502}, "get board: api returned status 502"},
		{&TransportError{Op: "get board", Status: 500, Err: errors.New("database is down")}, "get board: api returned status 500: database is down"},
		{&TransportError{Op: "get board", Err: errors.New("connection refused")}, "get board: connection refused"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
