package sites

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/tmeadows/sitebudget/internal/bridge"
	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
)

type SiteAddCmd struct {
	Hostname        string `arg:"" optional:"" help:"Hostname to track (e.g. example.com)."`
	Limit           int    `short:"l" help:"Time limit in minutes."`
	Schedule        string `short:"s" help:"Daily tracking window (HH:MM-HH:MM), alternative to a limit."`
	ReminderText    string `help:"Reminder message shown at the threshold."`
	ReminderPercent int    `help:"Reminder threshold as a percentage of the limit (1-99)."`
	Category        string `short:"c" help:"Category label."`
	Interactive     bool   `short:"i" help:"Prompt for the site details interactively."`
}

func (c *SiteAddCmd) Validate() error {
	if c.Interactive {
		return nil
	}
	if c.Hostname == "" {
		return fmt.Errorf("hostname is required (or use --interactive)")
	}
	if c.Limit <= 0 && c.Schedule == "" {
		return fmt.Errorf("either --limit or --schedule is required")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be a positive number of minutes")
	}
	if (c.ReminderText == "") != (c.ReminderPercent == 0) {
		return fmt.Errorf("--reminder-text and --reminder-percent must be set together")
	}
	return nil
}

func (c *SiteAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.promptForm(ctx); err != nil {
			return err
		}
	}

	var schedule *bridge.ScheduleSpec
	if c.Schedule != "" {
		parsed, err := cli.ParseScheduleFlag(c.Schedule)
		if err != nil {
			return err
		}
		schedule = &bridge.ScheduleSpec{StartTime: parsed.StartTime, StopTime: parsed.StopTime}
	}

	var reminder *bridge.ReminderSpec
	if c.ReminderText != "" {
		reminder = &bridge.ReminderSpec{Text: c.ReminderText, Percentage: c.ReminderPercent}
	}

	if engine := ctx.Engine(); engine != nil {
		if err := engine.AddSite(bridge.AddSitePayload{
			Hostname: c.Hostname,
			Limit:    c.Limit,
			Schedule: schedule,
			Reminder: reminder,
			Category: c.Category,
		}); err != nil {
			return err
		}
		fmt.Printf("Tracking %s (applied to running engine)\n", c.Hostname)
		return nil
	}

	site := models.Site{
		Hostname:         c.Hostname,
		IsTracking:       true,
		BaseLimitMinutes: c.Limit,
		Category:         c.Category,
		CreatedAt:        time.Now(),
	}
	if schedule != nil {
		site.Schedule = &models.Schedule{StartTime: schedule.StartTime, StopTime: schedule.StopTime}
	}
	if reminder != nil {
		site.Reminder = &models.Reminder{Text: reminder.Text, Percentage: reminder.Percentage}
	}
	if err := site.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddSite(site); err != nil {
		return err
	}

	fmt.Printf("Tracking %s\n", c.Hostname)
	return nil
}

// promptForm fills the command fields from an interactive form,
// offering the stored categories with their suggested limits.
func (c *SiteAddCmd) promptForm(ctx *cli.Context) error {
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return err
	}

	options := []huh.Option[string]{huh.NewOption("(none)", "")}
	suggested := make(map[string]int, len(categories))
	for _, cat := range categories {
		label := cat.Name
		if cat.SuggestedLimitMinutes > 0 {
			label = fmt.Sprintf("%s (suggested %dm)", cat.Name, cat.SuggestedLimitMinutes)
			suggested[cat.Name] = cat.SuggestedLimitMinutes
		}
		options = append(options, huh.NewOption(label, cat.Name))
	}

	limitStr := ""
	if c.Limit > 0 {
		limitStr = strconv.Itoa(c.Limit)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hostname").
				Value(&c.Hostname).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("hostname cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&c.Category),
			huh.NewInput().
				Title("Time limit (minutes, empty for schedule-only)").
				Value(&limitStr),
			huh.NewInput().
				Title("Daily window (HH:MM-HH:MM, optional)").
				Value(&c.Schedule),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return fmt.Errorf("limit must be a positive number of minutes")
		}
		c.Limit = limit
	} else if c.Schedule == "" {
		if s, ok := suggested[c.Category]; ok {
			c.Limit = s
		} else {
			return fmt.Errorf("either a limit or a schedule is required")
		}
	}

	return nil
}
