package sites

import (
	"fmt"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/utils"
)

type SiteStopCmd struct {
	Hostname string `arg:"" help:"Hostname to stop tracking."`
}

func (c *SiteStopCmd) Run(ctx *cli.Context) error {
	if engine := ctx.Engine(); engine != nil {
		if err := engine.StopTracking(c.Hostname); err != nil {
			return err
		}
		fmt.Printf("Stopped tracking %s (applied to running engine)\n", c.Hostname)
		return nil
	}

	site, err := ctx.Store.GetSite(c.Hostname)
	if err != nil {
		return err
	}
	site.IsTracking = false
	site.IsPaused = false
	if err := ctx.Store.UpdateSite(site); err != nil {
		return err
	}

	fmt.Printf("Stopped tracking %s (accumulated %s kept)\n", c.Hostname, utils.FormatDurationMs(site.AccumulatedTimeMs))
	return nil
}

type SiteRerunCmd struct {
	Hostname string `arg:"" help:"Hostname to restart tracking for."`
	Preserve bool   `short:"p" help:"Keep granted extensions instead of revoking them."`
}

func (c *SiteRerunCmd) Run(ctx *cli.Context) error {
	if engine := ctx.Engine(); engine != nil {
		if err := engine.RerunTracking(c.Hostname, c.Preserve); err != nil {
			return err
		}
		fmt.Printf("Restarted tracking %s (applied to running engine)\n", c.Hostname)
		return nil
	}

	site, err := ctx.Store.GetSite(c.Hostname)
	if err != nil {
		return err
	}
	site.IsTracking = true
	site.IsPaused = false
	site.AccumulatedTimeMs = 0
	site.DismissedUntil = nil
	if !c.Preserve {
		site.ExtensionMinutes = 0
	}
	if err := ctx.Store.UpdateSite(site); err != nil {
		return err
	}

	fmt.Printf("Restarted tracking %s\n", c.Hostname)
	return nil
}

type SiteExtendCmd struct {
	Hostname string `arg:"" help:"Hostname to grant time to."`
	Minutes  int    `arg:"" help:"Additional minutes to grant."`
}

func (c *SiteExtendCmd) Validate() error {
	if c.Minutes <= 0 {
		return fmt.Errorf("minutes must be a positive number")
	}
	return nil
}

func (c *SiteExtendCmd) Run(ctx *cli.Context) error {
	if engine := ctx.Engine(); engine != nil {
		if err := engine.ExtendTime(c.Hostname, c.Minutes); err != nil {
			return err
		}
		fmt.Printf("Extended %s by %dm (applied to running engine)\n", c.Hostname, c.Minutes)
		return nil
	}

	site, err := ctx.Store.GetSite(c.Hostname)
	if err != nil {
		return err
	}
	site.ExtensionMinutes += c.Minutes
	site.IsPaused = false
	site.DismissedUntil = nil
	if err := ctx.Store.UpdateSite(site); err != nil {
		return err
	}

	fmt.Printf("Extended %s by %dm (%s remaining)\n", c.Hostname, c.Minutes, utils.FormatDurationMs(site.RemainingMs()))
	return nil
}

type SiteDismissCmd struct {
	Hostname string `arg:"" help:"Hostname whose limit notification to dismiss."`
	Minutes  int    `short:"m" help:"How long to suppress the notification (defaults to the configured dismissal duration)."`
}

func (c *SiteDismissCmd) Run(ctx *cli.Context) error {
	minutes := c.Minutes
	if minutes <= 0 {
		minutes = ctx.DefaultDismissMinutes()
	}

	engine := ctx.Engine()
	if engine == nil {
		// Re-delivery scheduling lives in the engine; a dismissal
		// written while it is down would never lapse into a
		// notification.
		return fmt.Errorf("dismiss requires a running engine (start one with 'sitebudget serve')")
	}
	if err := engine.DismissNotification(c.Hostname, minutes); err != nil {
		return err
	}

	fmt.Printf("Dismissed notification for %s for %dm\n", c.Hostname, minutes)
	return nil
}

type SiteIgnoreCmd struct {
	Hostname string `arg:"" help:"Hostname to stop prompting about."`
}

func (c *SiteIgnoreCmd) Run(ctx *cli.Context) error {
	engine := ctx.Engine()
	if engine == nil {
		// The ignore list is in-memory engine state; nothing to do
		// offline.
		return fmt.Errorf("ignore requires a running engine (start one with 'sitebudget serve')")
	}
	if err := engine.IgnoreSite(c.Hostname); err != nil {
		return err
	}

	fmt.Printf("Ignoring %s until the engine restarts\n", c.Hostname)
	return nil
}

type SiteDeleteCmd struct {
	Hostname string `arg:"" help:"Hostname to remove entirely."`
}

func (c *SiteDeleteCmd) Run(ctx *cli.Context) error {
	if engine := ctx.Engine(); engine != nil {
		if err := engine.DeleteSite(c.Hostname); err != nil {
			return err
		}
		fmt.Printf("Deleted %s (applied to running engine)\n", c.Hostname)
		return nil
	}

	if err := ctx.Store.DeleteSite(c.Hostname); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", c.Hostname)
	return nil
}
