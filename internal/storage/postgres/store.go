package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/tmeadows/sitebudget/internal/constants"
	"github.com/tmeadows/sitebudget/internal/models"
)

type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{
		connStr: connStr,
	}
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}

	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		defaultSettings := models.Settings{
			NotificationsEnabled: constants.DefaultNotificationsEnabled,
			DismissMinutes:       constants.DefaultDismissMinutes,
			Timezone:             constants.DefaultTimezone,
		}
		if err := s.SaveSettings(defaultSettings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	return s.open()
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sites (
			hostname TEXT PRIMARY KEY,
			is_tracking BOOLEAN NOT NULL DEFAULT TRUE,
			is_paused BOOLEAN NOT NULL DEFAULT FALSE,
			accumulated_time_ms BIGINT NOT NULL DEFAULT 0,
			base_limit_minutes INTEGER NOT NULL DEFAULT 0,
			extension_minutes INTEGER NOT NULL DEFAULT 0,
			reminder TEXT,
			schedule TEXT,
			category TEXT NOT NULL DEFAULT '',
			dismissed_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			seq SERIAL,
			name TEXT NOT NULL UNIQUE,
			suggested_limit_minutes INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) GetConfigPath() string {
	return s.connStr
}
