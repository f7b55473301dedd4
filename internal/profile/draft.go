package profile

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/five82/sidequest/internal/sidequest"
)

// MaxNotesLength is the longest AdditionalNotes the backend accepts, in runes.
const MaxNotesLength = 500

var notificationTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Draft is the editable part of a profile.
type Draft struct {
	Categories           []sidequest.Category
	NotificationsEnabled bool
	NotificationTime     string // HH:MM, 24-hour
	AdditionalNotes      string
}

// DraftFromProfile extracts the editable fields of p.
func DraftFromProfile(p sidequest.Profile) Draft {
	return Draft{
		Categories:           slices.Clone(p.Categories),
		NotificationsEnabled: p.NotificationsEnabled,
		NotificationTime:     p.NotificationTime,
		AdditionalNotes:      p.AdditionalNotes,
	}
}

// Clone returns a copy that shares no memory with d.
func (d Draft) Clone() Draft {
	d.Categories = slices.Clone(d.Categories)
	return d
}

// Equal reports field-by-field equality. Category order is significant; a nil
// and an empty category list are equal.
func (d Draft) Equal(o Draft) bool {
	return slices.Equal(d.Categories, o.Categories) &&
		d.NotificationsEnabled == o.NotificationsEnabled &&
		d.NotificationTime == o.NotificationTime &&
		d.AdditionalNotes == o.AdditionalNotes
}

// HasCategory reports whether c is selected.
func (d Draft) HasCategory(c sidequest.Category) bool {
	return slices.Contains(d.Categories, c)
}

// ToggleCategory selects c if absent and deselects it otherwise.
func (d *Draft) ToggleCategory(c sidequest.Category) {
	if i := slices.Index(d.Categories, c); i >= 0 {
		d.Categories = slices.Delete(slices.Clone(d.Categories), i, i+1)
		return
	}
	d.Categories = append(slices.Clone(d.Categories), c)
}

// Validate checks d against the rules the backend enforces.
func (d Draft) Validate() error {
	if len(d.Categories) == 0 {
		return &sidequest.ValidationError{Field: "categories", Reason: "select at least one category"}
	}
	for _, c := range d.Categories {
		if !c.Valid() {
			return &sidequest.ValidationError{Field: "categories", Reason: fmt.Sprintf("unknown category %q", c)}
		}
	}
	if !notificationTimePattern.MatchString(d.NotificationTime) {
		return &sidequest.ValidationError{Field: "notificationTime", Reason: fmt.Sprintf("%q is not HH:MM", d.NotificationTime)}
	}
	if n := utf8.RuneCountInString(d.AdditionalNotes); n > MaxNotesLength {
		return &sidequest.ValidationError{
			Field:  "additionalNotes",
			Reason: fmt.Sprintf("%d characters exceeds the %d limit", n, MaxNotesLength),
		}
	}
	return nil
}

func (d Draft) update(timezone string) sidequest.ProfileUpdate {
	notes := d.AdditionalNotes
	enabled := d.NotificationsEnabled
	at := d.NotificationTime
	return sidequest.ProfileUpdate{
		Categories:           slices.Clone(d.Categories),
		AdditionalNotes:      &notes,
		NotificationsEnabled: &enabled,
		NotificationTime:     &at,
		Timezone:             timezone,
	}
}

// LocalTimezone returns the IANA name of the local zone, or "UTC" when it
// cannot be determined.
func LocalTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, name, ok := strings.Cut(target, "zoneinfo/"); ok && name != "" {
			return name
		}
	}
	return "UTC"
}
