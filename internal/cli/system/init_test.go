package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := storage.NewSQLiteStore(dbPath)

	ctx := &cli.Context{
		Store:     store,
		ConfigDir: tempDir,
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, dbPath, cleanup
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_SeedsPresetCategories(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		t.Fatalf("failed to read categories: %v", err)
	}
	if len(categories) != len(models.PresetCategories) {
		t.Errorf("expected %d seeded categories, got %d", len(models.PresetCategories), len(categories))
	}
	for _, c := range categories {
		if c.ID == "" {
			t.Errorf("seeded category %q has no ID", c.Name)
		}
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}

	// Seeding must not duplicate on re-init.
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		t.Fatalf("failed to read categories: %v", err)
	}
	if len(categories) != len(models.PresetCategories) {
		t.Errorf("expected %d categories after re-init, got %d", len(models.PresetCategories), len(categories))
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not created")
	}

	site := models.Site{
		Hostname:         "reddit.com",
		IsTracking:       true,
		BaseLimitMinutes: 30,
	}
	if err := ctx.Store.AddSite(site); err != nil {
		t.Fatalf("failed to add site: %v", err)
	}

	forceCmd := &InitCmd{Force: true}
	if err := forceCmd.Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}

	sites, err := ctx.Store.GetAllSites()
	if err != nil {
		t.Fatalf("failed to read sites after reset: %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("expected empty site list after force init, got %d sites", len(sites))
	}
}

func TestInitCmd_ImportsExtensionExport(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	export := `{
		"reddit.com": {"initialLimit": 30, "totalExtendedTime": 5, "time": 120000, "isTracking": true},
		"news.ycombinator.com": {"limit": 45, "time": 0},
		"dismissedNotifications": {"reddit.com": 123},
		"categories": [{"name": "Forums", "suggestedLimit": 25}]
	}`
	exportPath := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(exportPath, []byte(export), 0600); err != nil {
		t.Fatalf("failed to write export fixture: %v", err)
	}

	cmd := &InitCmd{Source: exportPath}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	site, err := ctx.Store.GetSite("reddit.com")
	if err != nil {
		t.Fatalf("imported site missing: %v", err)
	}
	if site.BaseLimitMinutes != 30 || site.ExtensionMinutes != 5 || site.AccumulatedTimeMs != 120000 {
		t.Errorf("imported site not upgraded correctly: %+v", site)
	}

	if _, err := ctx.Store.GetSite("news.ycombinator.com"); err != nil {
		t.Errorf("legacy-shape site was not imported: %v", err)
	}

	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		t.Fatalf("failed to read categories: %v", err)
	}
	found := false
	for _, c := range categories {
		if c.Name == "Forums" && c.SuggestedLimitMinutes == 25 {
			found = true
		}
	}
	if !found {
		t.Errorf("exported category was not imported")
	}
}
