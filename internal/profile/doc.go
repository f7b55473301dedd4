// Package profile adapts the autosave engine to the user profile: it owns the
// editable Draft, validates edits before they are recorded, and turns each
// save into a partial profile update stamped with the local timezone.
package profile
