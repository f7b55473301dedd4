package sidequest

import (
	"encoding/json"
	"slices"
	"time"
)

const sidequestTimestampLayout = "2006-01-02 15:04:05"

// Status is a quest lifecycle status as reported by the backend.
type Status string

const (
	StatusPotential Status = "potential"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
	StatusDeclined  Status = "declined"
)

// Statuses lists every known status in board display order.
var Statuses = []Status{
	StatusPotential,
	StatusAccepted,
	StatusCompleted,
	StatusFailed,
	StatusAbandoned,
	StatusDeclined,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Terminal reports whether the client must never transition s further.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusAbandoned, StatusDeclined:
		return true
	}
	return false
}

// Category is a quest/profile interest category.
type Category string

const (
	CategoryFitness     Category = "fitness"
	CategorySocial      Category = "social"
	CategoryMindfulness Category = "mindfulness"
	CategoryChores      Category = "chores"
	CategoryHobbies     Category = "hobbies"
	CategoryOutdoors    Category = "outdoors"
	CategoryLearning    Category = "learning"
	CategoryCreativity  Category = "creativity"
)

// Categories lists every category the backend understands.
var Categories = []Category{
	CategoryFitness,
	CategorySocial,
	CategoryMindfulness,
	CategoryChores,
	CategoryHobbies,
	CategoryOutdoors,
	CategoryLearning,
	CategoryCreativity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Rating is the thumbs rating attached to completion feedback.
type Rating string

const (
	RatingNone       Rating = ""
	RatingThumbsUp   Rating = "thumbs_up"
	RatingThumbsDown Rating = "thumbs_down"
)

// Feedback is attached to a quest when it is completed.
type Feedback struct {
	Rating    Rating `json:"rating,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Completed bool   `json:"completed"`
	TimeSpent int    `json:"timeSpent,omitempty"` // minutes
}

// Quest mirrors a quest record returned by the backend.
type Quest struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Category      Category   `json:"category"`
	EstimatedTime string     `json:"estimatedTime"`
	Difficulty    string     `json:"difficulty"`
	Tags          []string   `json:"tags"`
	Status        Status     `json:"status"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Feedback      *Feedback  `json:"feedback,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
}

// Clone returns a deep copy so snapshots never alias mutable fields.
func (q Quest) Clone() Quest {
	dup := q
	dup.Tags = slices.Clone(q.Tags)
	if q.CompletedAt != nil {
		at := *q.CompletedAt
		dup.CompletedAt = &at
	}
	if q.Feedback != nil {
		fb := *q.Feedback
		dup.Feedback = &fb
	}
	return dup
}

// Expired reports whether the quest has passed its expiry at now.
func (q Quest) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}

// Board mirrors the quest board payload.
type Board struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	LastRefreshed string  `json:"lastRefreshed"`
	IsActive      bool    `json:"isActive"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
	Quests        []Quest `json:"quests"`
}

// ParsedLastRefreshed returns LastRefreshed as time.Time when possible.
func (b Board) ParsedLastRefreshed() time.Time {
	return parseTime(b.LastRefreshed)
}

// TransitionRequest is the body of PUT /quests/{id}/status.
type TransitionRequest struct {
	Status   Status    `json:"status"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Profile is the canonical user profile.
type Profile struct {
	ID                   string     `json:"id"`
	Categories           []Category `json:"categories"`
	Difficulty           string     `json:"difficulty"`
	MaxTime              int        `json:"maxTime"`
	AdditionalNotes      string     `json:"additionalNotes,omitempty"`
	IncludeCompleted     bool       `json:"includeCompleted"`
	IncludeSkipped       bool       `json:"includeSkipped"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	NotificationTime     string     `json:"notificationTime"`
	Timezone             string     `json:"timezone"`
	OnboardingCompleted  bool       `json:"onboardingCompleted"`
	LastQuestGeneration  string     `json:"lastQuestGeneration,omitempty"`
	CreatedAt            string     `json:"createdAt"`
	UpdatedAt            string     `json:"updatedAt"`
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (p Profile) ParsedUpdatedAt() time.Time {
	return parseTime(p.UpdatedAt)
}

// ProfileUpdate is a partial profile; nil fields are left untouched by the backend.
type ProfileUpdate struct {
	Categories           []Category `json:"categories,omitempty"`
	AdditionalNotes      *string    `json:"additionalNotes,omitempty"`
	NotificationsEnabled *bool      `json:"notificationsEnabled,omitempty"`
	NotificationTime     *string    `json:"notificationTime,omitempty"`
	Timezone             string     `json:"timezone,omitempty"`
}

// NeedsRefreshResponse mirrors /quests/needs-refresh.
type NeedsRefreshResponse struct {
	NeedsRefresh bool `json:"needsRefresh"`
}

// HistoryQuery configures /quests/history requests.
type HistoryQuery struct {
	Limit    int
	Offset   int
	Status   Status
	Category Category
}

// HistoryPage is a page of past quests.
type HistoryPage struct {
	Quests     []Quest    `json:"quests"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes a HistoryPage window.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// HistoryStats summarises the user's quest history.
type HistoryStats struct {
	Streak                int        `json:"streak"`
	SuccessRate           float64    `json:"successRate"`
	MostCompletedCategory *string    `json:"mostCompletedCategory"`
	TopTags               []TagCount `json:"topTags"`
	TotalCompleted        int        `json:"totalCompleted"`
	TotalAccepted         int        `json:"totalAccepted"`
}

// TagCount is a tag frequency entry in HistoryStats.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// OnboardingResult mirrors /onboarding/complete.
type OnboardingResult struct {
	Message             string `json:"message"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
	UserID              int64  `json:"user_id"`
}

// SignInResponse mirrors /auth/anonymous/signin.
type SignInResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// envelope is the optional {"success":..,"data":..,"error":..} wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(sidequestTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
