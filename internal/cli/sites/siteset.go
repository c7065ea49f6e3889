package sites

import (
	"fmt"

	"github.com/tmeadows/sitebudget/internal/bridge"
	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
)

type SiteSetCmd struct {
	Hostname        string  `arg:"" help:"Hostname of the tracked site."`
	Limit           *int    `short:"l" help:"New time limit in minutes."`
	Extension       *int    `help:"Set granted extension minutes directly."`
	ReminderText    string  `help:"Reminder message shown at the threshold."`
	ReminderPercent int     `help:"Reminder threshold as a percentage of the limit (1-99)."`
	ClearReminder   bool    `help:"Remove the reminder."`
	Schedule        string  `short:"s" help:"Daily tracking window (HH:MM-HH:MM)."`
	ClearSchedule   bool    `help:"Remove the schedule."`
	Category        *string `short:"c" help:"Category label (empty string clears it)."`
}

func (c *SiteSetCmd) Validate() error {
	if c.ClearReminder && c.ReminderText != "" {
		return fmt.Errorf("--clear-reminder conflicts with --reminder-text")
	}
	if c.ClearSchedule && c.Schedule != "" {
		return fmt.Errorf("--clear-schedule conflicts with --schedule")
	}
	if (c.ReminderText == "") != (c.ReminderPercent == 0) {
		return fmt.Errorf("--reminder-text and --reminder-percent must be set together")
	}
	if c.Limit == nil && c.Extension == nil && c.ReminderText == "" && !c.ClearReminder &&
		c.Schedule == "" && !c.ClearSchedule && c.Category == nil {
		return fmt.Errorf("nothing to change")
	}
	return nil
}

func (c *SiteSetCmd) Run(ctx *cli.Context) error {
	patch := bridge.SettingsPatch{
		BaseLimitMinutes: c.Limit,
		ExtensionMinutes: c.Extension,
		ClearReminder:    c.ClearReminder,
		ClearSchedule:    c.ClearSchedule,
		Category:         c.Category,
	}
	if c.ReminderText != "" {
		patch.Reminder = &bridge.ReminderSpec{Text: c.ReminderText, Percentage: c.ReminderPercent}
	}
	if c.Schedule != "" {
		parsed, err := cli.ParseScheduleFlag(c.Schedule)
		if err != nil {
			return err
		}
		patch.Schedule = &bridge.ScheduleSpec{StartTime: parsed.StartTime, StopTime: parsed.StopTime}
	}

	if engine := ctx.Engine(); engine != nil {
		if err := engine.UpdateSite(c.Hostname, patch); err != nil {
			return err
		}
		fmt.Printf("Updated %s (applied to running engine)\n", c.Hostname)
		return nil
	}

	// Offline: merge into the stored record. Accumulated time is never
	// part of an edit.
	site, err := ctx.Store.GetSite(c.Hostname)
	if err != nil {
		return err
	}
	if patch.BaseLimitMinutes != nil {
		site.BaseLimitMinutes = *patch.BaseLimitMinutes
	}
	if patch.ExtensionMinutes != nil {
		site.ExtensionMinutes = *patch.ExtensionMinutes
	}
	if patch.ClearReminder {
		site.Reminder = nil
	} else if patch.Reminder != nil {
		site.Reminder = &models.Reminder{Text: patch.Reminder.Text, Percentage: patch.Reminder.Percentage}
	}
	if patch.ClearSchedule {
		site.Schedule = nil
	} else if patch.Schedule != nil {
		site.Schedule = &models.Schedule{StartTime: patch.Schedule.StartTime, StopTime: patch.Schedule.StopTime}
	}
	if patch.Category != nil {
		site.Category = *patch.Category
	}

	if err := site.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.UpdateSite(site); err != nil {
		return err
	}

	fmt.Printf("Updated %s\n", c.Hostname)
	return nil
}
