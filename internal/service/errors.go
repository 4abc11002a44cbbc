package service

import "errors"

// Sentinel errors surfaced to the caller layer, which maps them to
// user-facing responses. Zero query results are never reported as ErrNotFound;
// the sentinel means the specific entity is absent or owned by someone else.
var (
	ErrNotFound        = errors.New("not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrReminderInPast  = errors.New("reminder time must be in the future")
	ErrReminderLimit   = errors.New("maximum 3 reminders per task allowed")
	ErrInvalidInterval = errors.New("interval must be at least 1")
)
