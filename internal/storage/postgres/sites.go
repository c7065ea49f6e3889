package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/tmeadows/sitebudget/internal/errors"
	"github.com/tmeadows/sitebudget/internal/models"
)

func (s *Store) AddSite(site models.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	reminderJSON, scheduleJSON, err := encodeSiteJSON(site)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO sites (
			hostname, is_tracking, is_paused, accumulated_time_ms,
			base_limit_minutes, extension_minutes,
			reminder, schedule, category, dismissed_until, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		site.Hostname, site.IsTracking, site.IsPaused, site.AccumulatedTimeMs,
		site.BaseLimitMinutes, site.ExtensionMinutes,
		reminderJSON, scheduleJSON, site.Category, site.DismissedUntil, site.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert site: %w", err)
	}

	return nil
}

func (s *Store) GetSite(hostname string) (models.Site, error) {
	row := s.db.QueryRow(`
		SELECT hostname, is_tracking, is_paused, accumulated_time_ms,
			base_limit_minutes, extension_minutes,
			reminder, schedule, category, dismissed_until, created_at
		FROM sites
		WHERE hostname = $1
	`, hostname)

	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return models.Site{}, fmt.Errorf("site %q: %w", hostname, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

func (s *Store) GetAllSites() ([]models.Site, error) {
	rows, err := s.db.Query(`
		SELECT hostname, is_tracking, is_paused, accumulated_time_ms,
			base_limit_minutes, extension_minutes,
			reminder, schedule, category, dismissed_until, created_at
		FROM sites
		ORDER BY hostname ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sites: %w", err)
	}

	return sites, nil
}

func (s *Store) UpdateSite(site models.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	reminderJSON, scheduleJSON, err := encodeSiteJSON(site)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(`
		UPDATE sites SET
			is_tracking = $1, is_paused = $2, accumulated_time_ms = $3,
			base_limit_minutes = $4, extension_minutes = $5,
			reminder = $6, schedule = $7, category = $8, dismissed_until = $9
		WHERE hostname = $10
	`,
		site.IsTracking, site.IsPaused, site.AccumulatedTimeMs,
		site.BaseLimitMinutes, site.ExtensionMinutes,
		reminderJSON, scheduleJSON, site.Category, site.DismissedUntil,
		site.Hostname,
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("site %q: %w", site.Hostname, apperrors.ErrNotFound)
	}

	return nil
}

func (s *Store) DeleteSite(hostname string) error {
	result, err := s.db.Exec(`DELETE FROM sites WHERE hostname = $1`, hostname)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("site %q: %w", hostname, apperrors.ErrNotFound)
	}

	return nil
}

func encodeSiteJSON(site models.Site) (reminder, schedule *string, err error) {
	if site.Reminder != nil {
		data, err := json.Marshal(site.Reminder)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal reminder: %w", err)
		}
		str := string(data)
		reminder = &str
	}
	if site.Schedule != nil {
		data, err := json.Marshal(site.Schedule)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal schedule: %w", err)
		}
		str := string(data)
		schedule = &str
	}
	return reminder, schedule, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (models.Site, error) {
	var site models.Site
	var reminderJSON, scheduleJSON *string
	var dismissed *time.Time

	err := row.Scan(
		&site.Hostname, &site.IsTracking, &site.IsPaused, &site.AccumulatedTimeMs,
		&site.BaseLimitMinutes, &site.ExtensionMinutes,
		&reminderJSON, &scheduleJSON, &site.Category, &dismissed, &site.CreatedAt,
	)
	if err != nil {
		return models.Site{}, err
	}

	if reminderJSON != nil {
		site.Reminder = &models.Reminder{}
		if err := json.Unmarshal([]byte(*reminderJSON), site.Reminder); err != nil {
			return models.Site{}, fmt.Errorf("failed to unmarshal reminder: %w", err)
		}
	}
	if scheduleJSON != nil {
		site.Schedule = &models.Schedule{}
		if err := json.Unmarshal([]byte(*scheduleJSON), site.Schedule); err != nil {
			return models.Site{}, fmt.Errorf("failed to unmarshal schedule: %w", err)
		}
	}
	site.DismissedUntil = dismissed

	return site, nil
}
