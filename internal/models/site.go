package models

import (
	"fmt"
	"time"

	"github.com/tmeadows/sitebudget/internal/constants"
)

// Site is the per-hostname tracking record. Exactly one exists per
// tracked hostname; it is the unit of persistence and of enforcement.
type Site struct {
	Hostname          string     `json:"hostname"`
	IsTracking        bool       `json:"is_tracking"`
	IsPaused          bool       `json:"is_paused"`
	AccumulatedTimeMs int64      `json:"accumulated_time_ms"`
	BaseLimitMinutes  int        `json:"base_limit_minutes"`
	ExtensionMinutes  int        `json:"extension_minutes"`
	Reminder          *Reminder  `json:"reminder,omitempty"`
	Schedule          *Schedule  `json:"schedule,omitempty"`
	Category          string     `json:"category,omitempty"`
	DismissedUntil    *time.Time `json:"dismissed_until,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Reminder is a single informational threshold, expressed as a
// percentage of the effective limit.
type Reminder struct {
	Text       string `json:"text"`
	Percentage int    `json:"percentage"` // 1..99
}

// Schedule is a daily window during which tracking is permitted.
type Schedule struct {
	StartTime string `json:"start_time"` // HH:MM
	StopTime  string `json:"stop_time"`  // HH:MM
}

// EffectiveLimitMs returns the current budget in milliseconds. It is
// always derived from the base limit plus granted extensions, never
// cached.
func (s *Site) EffectiveLimitMs() int64 {
	return constants.MinutesToMs(s.BaseLimitMinutes + s.ExtensionMinutes)
}

// RemainingMs returns how much of the effective budget is left. May be
// negative once the limit has been exceeded.
func (s *Site) RemainingMs() int64 {
	return s.EffectiveLimitMs() - s.AccumulatedTimeMs
}

// DismissedAt reports whether a limit-reached notification is currently
// suppressed by an active dismissal.
func (s *Site) DismissedAt(now time.Time) bool {
	return s.DismissedUntil != nil && now.Before(*s.DismissedUntil)
}

func (s *Site) Validate() error {
	if s.Hostname == "" {
		return fmt.Errorf("site hostname cannot be empty")
	}

	if s.BaseLimitMinutes <= 0 && s.Schedule == nil {
		return fmt.Errorf("site must have a positive time limit or a schedule")
	}
	if s.BaseLimitMinutes < 0 {
		return fmt.Errorf("time limit cannot be negative")
	}
	if s.ExtensionMinutes < 0 {
		return fmt.Errorf("extended time cannot be negative")
	}
	if s.AccumulatedTimeMs < 0 {
		return fmt.Errorf("accumulated time cannot be negative")
	}

	if s.Reminder != nil {
		if s.Reminder.Percentage < 1 || s.Reminder.Percentage > 99 {
			return fmt.Errorf("reminder percentage must be between 1 and 99")
		}
		if s.Reminder.Text == "" {
			return fmt.Errorf("reminder text cannot be empty")
		}
	}

	if s.Schedule != nil {
		if _, err := time.Parse(constants.TimeFormat, s.Schedule.StartTime); err != nil {
			return fmt.Errorf("invalid schedule start time (expected HH:MM): %w", err)
		}
		if _, err := time.Parse(constants.TimeFormat, s.Schedule.StopTime); err != nil {
			return fmt.Errorf("invalid schedule stop time (expected HH:MM): %w", err)
		}
		if s.Schedule.StartTime == s.Schedule.StopTime {
			return fmt.Errorf("schedule start and stop times cannot be equal")
		}
	}

	return nil
}
