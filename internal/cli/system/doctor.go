package system

import (
	"fmt"
	"time"

	"github.com/tmeadows/sitebudget/internal/bridge"
	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/keyring"
	"github.com/tmeadows/sitebudget/internal/validation"
)

type DoctorCmd struct {
	Fix bool `help:"Automatically repair fixable conflicts (stale dismissals)."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: storage reachable
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		dbReachable = true
	}

	// Check 2: clock/timezone sanity
	if err := checkClockTimezone(ctx, dbReachable); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 3: keyring availability (warning only)
	if !keyring.IsAvailable() {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   keyring unavailable; bridge secrets and database credentials cannot be stored\n")
	} else {
		fmt.Printf("✓ OS keyring: OK\n")
	}

	// Check 4: engine running (informational)
	if client, err := bridge.FindRunning(ctx.ConfigDir); err == nil && client != nil {
		fmt.Printf("✓ Engine: running\n")
	} else {
		fmt.Printf("⊘ Engine: not running (start one with 'sitebudget serve')\n")
	}

	// Check 5: data validation
	if dbReachable {
		if err := cmd.checkData(ctx); err != nil {
			fmt.Printf("❌ Data validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Data validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (storage not reachable)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context, dbReachable bool) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if dbReachable {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		if settings.Timezone != "" && settings.Timezone != "Local" {
			if _, err := time.LoadLocation(settings.Timezone); err != nil {
				return fmt.Errorf("configured timezone %q is not recognized", settings.Timezone)
			}
		}
	}

	return nil
}

func (cmd *DoctorCmd) checkData(ctx *cli.Context) error {
	sites, err := ctx.Store.GetAllSites()
	if err != nil {
		return fmt.Errorf("failed to read sites: %w", err)
	}
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}

	v := validation.New()
	result := v.ValidateSites(sites, categories, time.Now())
	catResult := v.ValidateCategories(categories)
	result.Conflicts = append(result.Conflicts, catResult.Conflicts...)

	if !result.HasConflicts() {
		return nil
	}

	if cmd.Fix {
		fixes := validation.AutoFixStaleDismissals(result.Conflicts, func(hostname string) error {
			site, err := ctx.Store.GetSite(hostname)
			if err != nil {
				return err
			}
			site.DismissedUntil = nil
			if site.RemainingMs() > 0 {
				site.IsPaused = false
			}
			return ctx.Store.UpdateSite(site)
		})
		for _, fix := range fixes {
			fmt.Printf("   fixed: %s\n", fix.Action)
		}

		// Re-run to see what the fixes left behind.
		sites, err = ctx.Store.GetAllSites()
		if err != nil {
			return fmt.Errorf("failed to re-read sites: %w", err)
		}
		result = v.ValidateSites(sites, categories, time.Now())
		result.Conflicts = append(result.Conflicts, catResult.Conflicts...)
		if !result.HasConflicts() {
			return nil
		}
	}

	return fmt.Errorf("%s", result.FormatReport())
}
