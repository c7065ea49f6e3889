package postgres

import (
	"fmt"

	apperrors "github.com/tmeadows/sitebudget/internal/errors"
	"github.com/tmeadows/sitebudget/internal/models"
)

func (s *Store) AddCategory(category models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, suggested_limit_minutes)
		VALUES ($1, $2, $3)
	`, category.ID, category.Name, category.SuggestedLimitMinutes)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

func (s *Store) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, suggested_limit_minutes
		FROM categories
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SuggestedLimitMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) DeleteCategory(id string) error {
	result, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category %q: %w", id, apperrors.ErrNotFound)
	}

	return nil
}
