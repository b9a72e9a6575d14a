package domain

import (
	"errors"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrDueDateFormat = errors.New("due date must be in YYYY-MM-DD format")
	ErrDueDateValue  = errors.New("due date is not a valid calendar date")
)

var dueDateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDueDate checks shape first, then that the date exists in the calendar.
// time.Parse rejects 2026-02-29 and 2026-04-31 instead of normalizing them.
func ParseDueDate(s string) (time.Time, error) {
	if !dueDateShape.MatchString(s) {
		return time.Time{}, ErrDueDateFormat
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrDueDateValue
	}
	return d, nil
}

// FormatDueDate is the inverse of ParseDueDate for values read back from a store.
func FormatDueDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
