// Package schedule implements the training-schedule navigation and
// rescheduling engine: default week/day selection, overdue detection and the
// schedule-shift transformation. Everything here is a pure function over an
// in-memory plan snapshot plus a "now" timestamp; persistence of shifted
// schedules is owned by the repository layer.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// KeyLayout is the canonical calendar-date key format.
const KeyLayout = "2006-01-02"

var (
	// ErrInvalidTimezone reports a malformed or unknown IANA timezone identifier.
	ErrInvalidTimezone = errors.New("invalid timezone identifier")
	// ErrInvalidDateKey reports a date key that does not parse as YYYY-MM-DD.
	ErrInvalidDateKey = errors.New("invalid date key")
)

// LoadLocation resolves an IANA timezone name, mapping failures to
// ErrInvalidTimezone.
func LoadLocation(timezone string) (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}
	return loc, nil
}

// DateToKey projects an absolute instant into the given timezone and formats
// the local calendar date as YYYY-MM-DD.
func DateToKey(instant time.Time, timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(KeyLayout), nil
}

// KeyToInstant interprets a YYYY-MM-DD key as local midnight in the given
// timezone and returns the corresponding absolute instant. Inverse of
// DateToKey: DateToKey(KeyToInstant(k, tz), tz) == k for all valid keys.
func KeyToInstant(key string, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	instant, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return instant, nil
}

// dayKey formats a day's anchor in the given location. Shared by the overdue
// counter so day comparisons happen at calendar-day granularity.
func dayKey(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(KeyLayout)
}
