package storage

import "github.com/tmeadows/sitebudget/internal/storage/sqlite"

// NewSQLiteStore returns the default sqlite-backed Provider rooted at
// the given database path.
func NewSQLiteStore(path string) Provider {
	return sqlite.NewStore(path)
}
