package validation

import (
	"fmt"
	"time"

	"github.com/tmeadows/sitebudget/internal/constants"
	"github.com/tmeadows/sitebudget/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidSchedule       ConflictType = "invalid_schedule"
	ConflictNoEnforcement         ConflictType = "no_enforcement"
	ConflictReminderOutOfRange    ConflictType = "reminder_out_of_range"
	ConflictNegativeTime          ConflictType = "negative_time"
	ConflictUnknownCategory       ConflictType = "unknown_category"
	ConflictDuplicateCategoryName ConflictType = "duplicate_category_name"
	ConflictStaleDismissal        ConflictType = "stale_dismissal"
	ConflictPausedWhileStopped    ConflictType = "paused_while_stopped"
)

// Conflict represents a detected inconsistency in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Hostname    string   // affected site (if applicable)
	Items       []string // names involved (categories etc.)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks stored sites and categories for inconsistencies
// that the engine would otherwise silently work around.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSites checks site records against the known category set.
// now is used to classify dismissals; stale ones are auto-fixable.
func (v *Validator) ValidateSites(sites []models.Site, categories []models.Category, now time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Name] = true
	}

	for _, site := range sites {
		if site.BaseLimitMinutes <= 0 && site.Schedule == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictNoEnforcement,
				Description: fmt.Sprintf("Site %q has neither a time limit nor a schedule", site.Hostname),
				Hostname:    site.Hostname,
			})
		}

		if site.AccumulatedTimeMs < 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictNegativeTime,
				Description: fmt.Sprintf("Site %q has negative accumulated time (%d ms)", site.Hostname, site.AccumulatedTimeMs),
				Hostname:    site.Hostname,
			})
		}

		if site.Reminder != nil && (site.Reminder.Percentage < 1 || site.Reminder.Percentage > 99) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictReminderOutOfRange,
				Description: fmt.Sprintf("Site %q reminder percentage %d is outside 1-99", site.Hostname, site.Reminder.Percentage),
				Hostname:    site.Hostname,
			})
		}

		if site.Schedule != nil {
			if err := validateScheduleTimes(site.Schedule); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidSchedule,
					Description: fmt.Sprintf("Site %q has an invalid schedule: %v", site.Hostname, err),
					Hostname:    site.Hostname,
				})
			}
		}

		if site.Category != "" && !known[site.Category] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownCategory,
				Description: fmt.Sprintf("Site %q references unknown category %q", site.Hostname, site.Category),
				Hostname:    site.Hostname,
				Items:       []string{site.Category},
			})
		}

		if site.IsPaused && !site.IsTracking {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictPausedWhileStopped,
				Description: fmt.Sprintf("Site %q is paused but not tracking; pause has no meaning once tracking stops", site.Hostname),
				Hostname:    site.Hostname,
			})
		}

		if site.DismissedUntil != nil && !now.Before(*site.DismissedUntil) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStaleDismissal,
				Description: fmt.Sprintf("Site %q carries a lapsed dismissal (expired %s)", site.Hostname, site.DismissedUntil.Format(time.RFC3339)),
				Hostname:    site.Hostname,
			})
		}
	}

	return result
}

// ValidateCategories checks the category list for duplicate names.
func (v *Validator) ValidateCategories(categories []models.Category) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	seen := make(map[string][]string)
	for _, c := range categories {
		if c.Name == "" {
			continue
		}
		seen[c.Name] = append(seen[c.Name], c.ID)
	}

	for name, ids := range seen {
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateCategoryName,
				Description: fmt.Sprintf("Duplicate category name: %q (IDs: %v)", name, ids),
				Items:       []string{name},
			})
		}
	}

	return result
}

func validateScheduleTimes(schedule *models.Schedule) error {
	if _, err := time.Parse(constants.TimeFormat, schedule.StartTime); err != nil {
		return fmt.Errorf("invalid start time %q", schedule.StartTime)
	}
	if _, err := time.Parse(constants.TimeFormat, schedule.StopTime); err != nil {
		return fmt.Errorf("invalid stop time %q", schedule.StopTime)
	}
	if schedule.StartTime == schedule.StopTime {
		return fmt.Errorf("start and stop times are equal (%s)", schedule.StartTime)
	}
	return nil
}

// AutoFixStaleDismissals clears lapsed dismissals via clearFunc and
// returns a description of each fix. Other conflict types need user
// judgement and are never auto-fixed.
func AutoFixStaleDismissals(conflicts []Conflict, clearFunc func(hostname string) error) []FixAction {
	actions := []FixAction{}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictStaleDismissal {
			continue
		}
		if err := clearFunc(conflict.Hostname); err != nil {
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to clear lapsed dismissal for %q: %v", conflict.Hostname, err),
				SourceConflict: conflict,
			})
			continue
		}
		actions = append(actions, FixAction{
			Action:         fmt.Sprintf("Cleared lapsed dismissal for %q", conflict.Hostname),
			SourceConflict: conflict,
		})
	}

	return actions
}
