package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing storage before initialization."`
	Source string `help:"Import data from an existing database or a browser extension export (.json)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing storage: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing storage: %w", err)
			}
			fmt.Printf("Deleted existing storage at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing storage: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized sitebudget storage at: %s\n", ctx.Store.GetConfigPath())

	if err := seedPresetCategories(ctx); err != nil {
		return err
	}

	if c.Source != "" {
		fmt.Printf("Importing data from: %s\n", c.Source)
		if err := c.importData(ctx, c.Source); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Println("Import completed successfully!")
	}

	return nil
}

// seedPresetCategories installs the fixed category presets on a fresh
// store, skipping any the user already has.
func seedPresetCategories(ctx *cli.Context) error {
	existing, err := ctx.Store.GetAllCategories()
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, preset := range models.PresetCategories {
		category := preset
		category.ID = uuid.New().String()
		if err := ctx.Store.AddCategory(category); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", category.Name, err)
		}
	}
	fmt.Printf("Seeded %d preset categories\n", len(models.PresetCategories))
	return nil
}

func (c *InitCmd) importData(ctx *cli.Context, sourcePath string) error {
	// A .json source is a raw browser extension export; anything else
	// is another sitebudget database.
	if strings.HasSuffix(sourcePath, ".json") {
		return c.importSnapshot(ctx, sourcePath)
	}

	var sourceStore storage.Provider
	if storage.IsPostgresConnString(sourcePath) {
		if storage.HasEmbeddedCredentials(sourcePath) {
			return fmt.Errorf("source connection string contains embedded credentials; use the OS keyring, environment variables, or .pgpass instead")
		}
		sourceStore = storage.NewPostgresStore(sourcePath)
	} else {
		sourceStore = storage.NewSQLiteStore(sourcePath)
	}

	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Importing settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Importing sites...")
	sites, err := sourceStore.GetAllSites()
	if err != nil {
		return fmt.Errorf("failed to get sites from source: %w", err)
	}
	for _, site := range sites {
		if err := ctx.Store.AddSite(site); err != nil {
			return fmt.Errorf("failed to add site %s: %w", site.Hostname, err)
		}
	}
	fmt.Printf("    Imported %d sites\n", len(sites))

	fmt.Println("  Importing categories...")
	categories, err := sourceStore.GetAllCategories()
	if err != nil {
		return fmt.Errorf("failed to get categories from source: %w", err)
	}
	imported := 0
	for _, category := range categories {
		if err := ctx.Store.AddCategory(category); err != nil {
			// Seeded presets collide with their imported twins.
			continue
		}
		imported++
	}
	fmt.Printf("    Imported %d categories\n", imported)

	return nil
}

// importSnapshot ingests a raw extension storage export, upgrading
// legacy record shapes along the way.
func (c *InitCmd) importSnapshot(ctx *cli.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	sites, categories, err := storage.ParseSnapshot(data)
	if err != nil {
		return err
	}

	for _, category := range categories {
		if err := ctx.Store.AddCategory(category); err != nil {
			continue
		}
	}
	for _, site := range sites {
		if err := ctx.Store.AddSite(site); err != nil {
			return fmt.Errorf("failed to add site %s: %w", site.Hostname, err)
		}
	}
	fmt.Printf("    Imported %d sites\n", len(sites))

	return nil
}
