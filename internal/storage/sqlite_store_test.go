package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/tmeadows/sitebudget/internal/errors"
	"github.com/tmeadows/sitebudget/internal/models"
)

func setupTestSQLiteStore(t *testing.T) Provider {
	t.Helper()

	store := NewSQLiteStore(filepath.Join(t.TempDir(), "sitebudget.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSiteCRUD(t *testing.T) {
	store := setupTestSQLiteStore(t)

	until := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	site := models.Site{
		Hostname:          "example.com",
		IsTracking:        true,
		AccumulatedTimeMs: 90_000,
		BaseLimitMinutes:  30,
		ExtensionMinutes:  5,
		Reminder:          &models.Reminder{Text: "almost there", Percentage: 80},
		Schedule:          &models.Schedule{StartTime: "09:00", StopTime: "17:00"},
		Category:          "News",
		DismissedUntil:    &until,
		CreatedAt:         time.Now(),
	}

	if err := store.AddSite(site); err != nil {
		t.Fatalf("failed to add site: %v", err)
	}

	retrieved, err := store.GetSite("example.com")
	if err != nil {
		t.Fatalf("failed to get site: %v", err)
	}
	if retrieved.BaseLimitMinutes != 30 || retrieved.ExtensionMinutes != 5 {
		t.Errorf("limit = %d+%d, want 30+5", retrieved.BaseLimitMinutes, retrieved.ExtensionMinutes)
	}
	if retrieved.AccumulatedTimeMs != 90_000 {
		t.Errorf("accumulated = %d, want 90000", retrieved.AccumulatedTimeMs)
	}
	if retrieved.Reminder == nil || retrieved.Reminder.Percentage != 80 {
		t.Errorf("reminder not round-tripped: %+v", retrieved.Reminder)
	}
	if retrieved.Schedule == nil || retrieved.Schedule.StartTime != "09:00" {
		t.Errorf("schedule not round-tripped: %+v", retrieved.Schedule)
	}
	if retrieved.DismissedUntil == nil || !retrieved.DismissedUntil.Equal(until) {
		t.Errorf("dismissed_until not round-tripped: %v", retrieved.DismissedUntil)
	}
	if retrieved.Category != "News" {
		t.Errorf("category = %q, want News", retrieved.Category)
	}

	// Update
	retrieved.IsPaused = true
	retrieved.AccumulatedTimeMs = 120_000
	retrieved.Reminder = nil
	if err := store.UpdateSite(retrieved); err != nil {
		t.Fatalf("failed to update site: %v", err)
	}

	updated, err := store.GetSite("example.com")
	if err != nil {
		t.Fatalf("failed to get updated site: %v", err)
	}
	if !updated.IsPaused {
		t.Error("expected is_paused=true")
	}
	if updated.AccumulatedTimeMs != 120_000 {
		t.Errorf("accumulated = %d, want 120000", updated.AccumulatedTimeMs)
	}
	if updated.Reminder != nil {
		t.Errorf("reminder should have been cleared, got %+v", updated.Reminder)
	}

	// Delete
	if err := store.DeleteSite("example.com"); err != nil {
		t.Fatalf("failed to delete site: %v", err)
	}
	if _, err := store.GetSite("example.com"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}

func TestSiteNotFound(t *testing.T) {
	store := setupTestSQLiteStore(t)

	if _, err := store.GetSite("missing.example.com"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
	err := store.UpdateSite(models.Site{Hostname: "missing.example.com", BaseLimitMinutes: 10, CreatedAt: time.Now()})
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found on update, got %v", err)
	}
	if err := store.DeleteSite("missing.example.com"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found on delete, got %v", err)
	}
}

func TestGetAllSites(t *testing.T) {
	store := setupTestSQLiteStore(t)

	for _, hostname := range []string{"b.example.com", "a.example.com"} {
		site := models.Site{
			Hostname:         hostname,
			IsTracking:       true,
			BaseLimitMinutes: 30,
			CreatedAt:        time.Now(),
		}
		if err := store.AddSite(site); err != nil {
			t.Fatalf("failed to add %s: %v", hostname, err)
		}
	}

	sites, err := store.GetAllSites()
	if err != nil {
		t.Fatalf("failed to list sites: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(sites))
	}
	if sites[0].Hostname != "a.example.com" || sites[1].Hostname != "b.example.com" {
		t.Errorf("sites not ordered by hostname: %s, %s", sites[0].Hostname, sites[1].Hostname)
	}
}

func TestCategoryCRUD(t *testing.T) {
	store := setupTestSQLiteStore(t)

	category := models.Category{
		ID:                    uuid.New().String(),
		Name:                  "Gaming",
		SuggestedLimitMinutes: 60,
	}
	if err := store.AddCategory(category); err != nil {
		t.Fatalf("failed to add category: %v", err)
	}

	categories, err := store.GetAllCategories()
	if err != nil {
		t.Fatalf("failed to list categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Gaming" {
		t.Fatalf("unexpected categories: %+v", categories)
	}

	if err := store.DeleteCategory(category.ID); err != nil {
		t.Fatalf("failed to delete category: %v", err)
	}
	if err := store.DeleteCategory(category.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found on double delete, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := setupTestSQLiteStore(t)

	// Init seeds defaults.
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get default settings: %v", err)
	}
	if !settings.NotificationsEnabled {
		t.Error("default notifications_enabled should be true")
	}
	if settings.DismissMinutes != 5 {
		t.Errorf("default dismiss_minutes = %d, want 5", settings.DismissMinutes)
	}

	settings.NotificationsEnabled = false
	settings.DismissMinutes = 10
	settings.Timezone = "Europe/Berlin"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	reloaded, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to reload settings: %v", err)
	}
	if reloaded.NotificationsEnabled {
		t.Error("notifications_enabled not persisted")
	}
	if reloaded.DismissMinutes != 10 || reloaded.Timezone != "Europe/Berlin" {
		t.Errorf("settings not persisted: %+v", reloaded)
	}
}
