package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/tmeadows/sitebudget/internal/constants"
	apperrors "github.com/tmeadows/sitebudget/internal/errors"
	"github.com/tmeadows/sitebudget/internal/models"
)

// fileStore is the on-disk layout. Site records are kept as raw JSON so
// that Load can route each through models.DecodeSite, which upgrades
// legacy extension-era record shapes transparently.
type fileStore struct {
	Version    int                        `json:"version"`
	Settings   models.Settings            `json:"settings"`
	Sites      map[string]json.RawMessage `json:"sites"`
	Categories []models.Category          `json:"categories"`
}

// JSONStore is a single-file Provider. It exists to interoperate with
// exports of the browser extension this engine grew out of; sqlite is
// the default backend.
type JSONStore struct {
	path       string
	settings   models.Settings
	sites      map[string]models.Site
	categories []models.Category
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.settings = models.Settings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DismissMinutes:       constants.DefaultDismissMinutes,
		Timezone:             constants.DefaultTimezone,
	}
	s.sites = make(map[string]models.Site)
	s.categories = nil

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'sitebudget init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var file fileStore
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	s.settings = file.Settings
	s.categories = file.Categories
	s.sites = make(map[string]models.Site, len(file.Sites))
	for hostname, raw := range file.Sites {
		site, err := models.DecodeSite(hostname, raw)
		if err != nil {
			return err
		}
		s.sites[hostname] = site
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	file := fileStore{
		Version:    1,
		Settings:   s.settings,
		Sites:      make(map[string]json.RawMessage, len(s.sites)),
		Categories: s.categories,
	}
	for hostname, site := range s.sites {
		raw, err := json.Marshal(site)
		if err != nil {
			return fmt.Errorf("failed to serialize site %q: %w", hostname, err)
		}
		file.Sites[hostname] = raw
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	return s.settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.settings = settings
	return s.save()
}

func (s *JSONStore) AddSite(site models.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	if _, exists := s.sites[site.Hostname]; exists {
		return fmt.Errorf("site %q already exists", site.Hostname)
	}
	s.sites[site.Hostname] = site
	return s.save()
}

func (s *JSONStore) GetSite(hostname string) (models.Site, error) {
	site, ok := s.sites[hostname]
	if !ok {
		return models.Site{}, fmt.Errorf("site %q: %w", hostname, apperrors.ErrNotFound)
	}
	return site, nil
}

func (s *JSONStore) GetAllSites() ([]models.Site, error) {
	sites := make([]models.Site, 0, len(s.sites))
	for _, site := range s.sites {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Hostname < sites[j].Hostname
	})
	return sites, nil
}

func (s *JSONStore) UpdateSite(site models.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	if _, ok := s.sites[site.Hostname]; !ok {
		return fmt.Errorf("site %q: %w", site.Hostname, apperrors.ErrNotFound)
	}
	s.sites[site.Hostname] = site
	return s.save()
}

func (s *JSONStore) DeleteSite(hostname string) error {
	if _, ok := s.sites[hostname]; !ok {
		return fmt.Errorf("site %q: %w", hostname, apperrors.ErrNotFound)
	}
	delete(s.sites, hostname)
	return s.save()
}

func (s *JSONStore) AddCategory(category models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return fmt.Errorf("category %q already exists", category.Name)
		}
	}
	s.categories = append(s.categories, category)
	return s.save()
}

func (s *JSONStore) GetAllCategories() ([]models.Category, error) {
	return s.categories, nil
}

func (s *JSONStore) DeleteCategory(id string) error {
	for i, existing := range s.categories {
		if existing.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("category %q: %w", id, apperrors.ErrNotFound)
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// ImportSnapshot merges a raw extension storage export into the store.
func (s *JSONStore) ImportSnapshot(data []byte) (int, error) {
	sites, categories, err := ParseSnapshot(data)
	if err != nil {
		return 0, err
	}

	for _, category := range categories {
		if err := s.AddCategory(category); err != nil {
			// Duplicate names are expected when re-importing.
			continue
		}
	}
	for _, site := range sites {
		s.sites[site.Hostname] = site
	}

	return len(sites), s.save()
}

// ParseSnapshot decodes a raw extension storage export: one top-level
// key per hostname plus a few well-known non-site keys; site records
// may be in any historical shape.
func ParseSnapshot(data []byte) ([]models.Site, []models.Category, error) {
	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	var sites []models.Site
	var categories []models.Category
	for key, raw := range snapshot {
		switch key {
		case "categories":
			var legacy []struct {
				Name           string `json:"name"`
				SuggestedLimit int    `json:"suggestedLimit"`
			}
			if err := json.Unmarshal(raw, &legacy); err != nil {
				return nil, nil, fmt.Errorf("failed to parse snapshot categories: %w", err)
			}
			for _, c := range legacy {
				categories = append(categories, models.Category{
					ID:                    uuid.New().String(),
					Name:                  c.Name,
					SuggestedLimitMinutes: c.SuggestedLimit,
				})
			}
		case "dismissedNotifications", "reminders", "schedule":
			// Global-scope keys from superseded extension variants.
			continue
		default:
			site, err := models.DecodeSite(key, raw)
			if err != nil {
				return nil, nil, err
			}
			sites = append(sites, site)
		}
	}

	sort.Slice(sites, func(i, j int) bool { return sites[i].Hostname < sites[j].Hostname })
	return sites, categories, nil
}
