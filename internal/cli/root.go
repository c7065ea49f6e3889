package cli

import (
	"fmt"
	"strings"

	"github.com/tmeadows/sitebudget/internal/bridge"
	"github.com/tmeadows/sitebudget/internal/constants"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
	"github.com/tmeadows/sitebudget/internal/utils"
)

type Context struct {
	Store storage.Provider
	// ConfigDir is where the bridge lockfile lives.
	ConfigDir string
}

// Engine returns a client for the running engine, or nil when none is
// running. Commands prefer the engine so a live session picks up the
// change immediately; otherwise they edit the store directly.
func (c *Context) Engine() *bridge.Client {
	client, err := bridge.FindRunning(c.ConfigDir)
	if err != nil {
		return nil
	}
	return client
}

// ParseScheduleFlag parses a "HH:MM-HH:MM" daily window.
func ParseScheduleFlag(s string) (*models.Schedule, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid schedule %q (expected HH:MM-HH:MM)", s)
	}
	start, stop := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !utils.ValidateTimeFormat(start) {
		return nil, fmt.Errorf("invalid schedule start time %q (expected HH:MM)", start)
	}
	if !utils.ValidateTimeFormat(stop) {
		return nil, fmt.Errorf("invalid schedule stop time %q (expected HH:MM)", stop)
	}
	if start == stop {
		return nil, fmt.Errorf("schedule start and stop times cannot be equal")
	}
	return &models.Schedule{StartTime: start, StopTime: stop}, nil
}

// FormatSiteStatus renders the record's state the way every listing
// surface shows it.
func FormatSiteStatus(site models.Site) string {
	switch {
	case !site.IsTracking:
		return "stopped"
	case site.IsPaused:
		return "paused"
	default:
		return "tracking"
	}
}

// FormatBudget renders accrued time against the effective limit, or
// the schedule window for schedule-only sites.
func FormatBudget(site models.Site) string {
	if site.BaseLimitMinutes > 0 {
		budget := fmt.Sprintf("%s / %s", utils.FormatDurationMs(site.AccumulatedTimeMs), utils.FormatDurationMs(site.EffectiveLimitMs()))
		if site.ExtensionMinutes > 0 {
			budget += fmt.Sprintf(" (+%dm extended)", site.ExtensionMinutes)
		}
		return budget
	}
	if site.Schedule != nil {
		return fmt.Sprintf("%s, window %s-%s", utils.FormatDurationMs(site.AccumulatedTimeMs), site.Schedule.StartTime, site.Schedule.StopTime)
	}
	return utils.FormatDurationMs(site.AccumulatedTimeMs)
}

// DefaultDismissMinutes resolves the dismissal duration from saved
// settings, falling back to the built-in default.
func (c *Context) DefaultDismissMinutes() int {
	settings, err := c.Store.GetSettings()
	if err != nil || settings.DismissMinutes <= 0 {
		return constants.DefaultDismissMinutes
	}
	return settings.DismissMinutes
}
