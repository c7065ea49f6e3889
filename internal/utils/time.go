package utils

import (
	"fmt"
	"time"

	"github.com/tmeadows/sitebudget/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WithinWindow reports whether now's time of day falls inside the
// half-open daily window [start, stop). Windows that cross midnight
// (e.g. 22:00-06:00) are supported.
func WithinWindow(now time.Time, start, stop string) (bool, error) {
	startMin, err := ParseTimeToMinutes(start)
	if err != nil {
		return false, fmt.Errorf("invalid window start: %w", err)
	}
	stopMin, err := ParseTimeToMinutes(stop)
	if err != nil {
		return false, fmt.Errorf("invalid window stop: %w", err)
	}

	nowMin := now.Hour()*60 + now.Minute()
	if startMin <= stopMin {
		return nowMin >= startMin && nowMin < stopMin, nil
	}
	// Wraps past midnight.
	return nowMin >= startMin || nowMin < stopMin, nil
}

// NextOccurrence returns the next wall-clock instant at or after now
// whose time of day equals the given HH:MM value.
func NextOccurrence(now time.Time, timeStr string) (time.Time, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// FormatDurationMs renders an accumulated millisecond count as
// "1h 23m 45s" for display surfaces.
func FormatDurationMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
