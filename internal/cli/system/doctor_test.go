package system

import (
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, func()) {
	gokeyring.MockInit()

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{
		Store:     store,
		ConfigDir: tempDir,
	}

	cleanup := func() {
		store.Close()
	}

	return ctx, cleanup
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_DetectsConflicts(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	// A record over its limit with a long-lapsed dismissal and still
	// paused is exactly what a crashed engine leaves behind.
	past := time.Now().Add(-2 * time.Hour)
	site := models.Site{
		Hostname:          "reddit.com",
		IsTracking:        true,
		IsPaused:          true,
		BaseLimitMinutes:  30,
		AccumulatedTimeMs: 40 * 60 * 1000,
		DismissedUntil:    &past,
	}
	if err := ctx.Store.AddSite(site); err != nil {
		t.Fatalf("failed to add site: %v", err)
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Errorf("doctor command should fail on stale dismissal")
	}
}

func TestDoctorCmd_FixRepairsStaleDismissal(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	past := time.Now().Add(-2 * time.Hour)
	site := models.Site{
		Hostname:          "reddit.com",
		IsTracking:        true,
		IsPaused:          true,
		BaseLimitMinutes:  30,
		AccumulatedTimeMs: 40 * 60 * 1000,
		DismissedUntil:    &past,
	}
	if err := ctx.Store.AddSite(site); err != nil {
		t.Fatalf("failed to add site: %v", err)
	}

	cmd := &DoctorCmd{Fix: true}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor --fix failed: %v", err)
	}

	fixed, err := ctx.Store.GetSite("reddit.com")
	if err != nil {
		t.Fatalf("failed to re-read site: %v", err)
	}
	if fixed.DismissedUntil != nil {
		t.Errorf("stale dismissal was not cleared")
	}
	// Over the limit, so the pause itself is correct and must survive.
	if !fixed.IsPaused {
		t.Errorf("over-limit site should stay paused after fix")
	}
}
