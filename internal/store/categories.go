package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fjacquet/rabbit/internal/models"

	"github.com/shopspring/decimal"
)

// ListCategories returns the categories of a profile sorted by name.
// A profile without categories yields an empty slice.
func (s *SQLStore) ListCategories(ctx context.Context, profile string) ([]models.Category, error) {
	id, err := profileID(ctx, s.db, profile)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, budget FROM categories WHERE profile_id = ? ORDER BY name ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []models.Category{}
	for rows.Next() {
		var name, budget string
		if err := rows.Scan(&name, &budget); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(budget)
		if err != nil {
			s.logger.WithError(err).Warn("Ignoring unreadable category budget",
				logFieldCategory(name))
			amount = decimal.Zero
		}
		categories = append(categories, models.Category{Name: name, Budget: amount})
	}
	return categories, rows.Err()
}

func validateCategory(name string, budget decimal.Decimal) (string, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return "", fmt.Errorf("category name is required: %w", ErrInvalid)
	}
	if budget.IsNegative() {
		return "", fmt.Errorf("category budget must not be negative: %w", ErrInvalid)
	}
	return normalized, nil
}

// CreateCategory adds a category. Names are unique per profile, ignoring case.
func (s *SQLStore) CreateCategory(ctx context.Context, profile, name string, budget decimal.Decimal) (models.Category, error) {
	normalized, err := validateCategory(name, budget)
	if err != nil {
		return models.Category{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories(profile_id, name, budget) VALUES(?, ?, ?)`,
			id, normalized, budget.String())
		if isUniqueViolation(err) {
			return fmt.Errorf("category '%s': %w", normalized, ErrConflict)
		}
		return err
	})
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Name: normalized, Budget: budget}, nil
}

// UpdateCategory renames a category and sets its budget.
// Rules pointing at the old name are not rewritten.
func (s *SQLStore) UpdateCategory(ctx context.Context, profile, originalName, newName string, budget decimal.Decimal) (models.Category, error) {
	normalized, err := validateCategory(newName, budget)
	if err != nil {
		return models.Category{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		var categoryID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE profile_id = ? AND name = ?`,
			id, strings.TrimSpace(originalName)).Scan(&categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("category '%s': %w", originalName, ErrNotFound)
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, budget = ? WHERE id = ?`,
			normalized, budget.String(), categoryID)
		if isUniqueViolation(err) {
			return fmt.Errorf("category '%s': %w", normalized, ErrConflict)
		}
		return err
	})
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Name: normalized, Budget: budget}, nil
}

// DeleteCategory removes a category.
func (s *SQLStore) DeleteCategory(ctx context.Context, profile, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM categories WHERE profile_id = ? AND name = ?`, id, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("category '%s': %w", name, ErrNotFound)
		}
		return nil
	})
}
