package sites

import (
	"fmt"

	"github.com/tmeadows/sitebudget/internal/cli"
)

type SiteListCmd struct {
	Category string `short:"c" help:"Show only sites in this category."`
}

func (c *SiteListCmd) Run(ctx *cli.Context) error {
	sites, err := ctx.Store.GetAllSites()
	if err != nil {
		return fmt.Errorf("failed to get sites: %w", err)
	}
	if len(sites) == 0 {
		fmt.Println("No tracked sites")
		return nil
	}

	fmt.Println("Tracked sites:")
	shown := 0
	for _, site := range sites {
		if c.Category != "" && site.Category != c.Category {
			continue
		}
		shown++

		catStr := ""
		if site.Category != "" {
			catStr = fmt.Sprintf(" [%s]", site.Category)
		}
		fmt.Printf("  [%s] %s%s - %s\n", cli.FormatSiteStatus(site), site.Hostname, catStr, cli.FormatBudget(site))

		if site.Reminder != nil {
			fmt.Printf("      Reminder at %d%%: %s\n", site.Reminder.Percentage, site.Reminder.Text)
		}
		if site.DismissedUntil != nil {
			fmt.Printf("      Dismissed until %s\n", site.DismissedUntil.Format("15:04:05"))
		}
	}

	if shown == 0 {
		fmt.Printf("  (no sites in category %q)\n", c.Category)
	}
	return nil
}
