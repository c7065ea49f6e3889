package storage

import "github.com/tmeadows/sitebudget/internal/models"

// Provider is the durable key-value collaborator behind the engine:
// one record per tracked hostname plus global settings and categories.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Sites
	AddSite(models.Site) error
	GetSite(hostname string) (models.Site, error)
	GetAllSites() ([]models.Site, error)
	UpdateSite(models.Site) error
	DeleteSite(hostname string) error

	// Categories
	AddCategory(models.Category) error
	GetAllCategories() ([]models.Category, error)
	DeleteCategory(id string) error

	// Utils
	GetConfigPath() string
}
