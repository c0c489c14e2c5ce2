package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
)

func logFieldCategory(name string) logging.Field {
	return logging.Field{Key: logging.FieldCategory, Value: name}
}

// ListRules returns the rules of a profile in insertion order, which is the
// order the matcher tries them in. Updating a rule keeps its position.
func (s *SQLStore) ListRules(ctx context.Context, profile string) ([]models.Rule, error) {
	id, err := profileID(ctx, s.db, profile)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, category FROM rules WHERE profile_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules := []models.Rule{}
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.Keyword, &r.Category); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func validateRule(keyword, category string) (models.Rule, error) {
	r := models.Rule{Keyword: models.NormalizeKeyword(keyword), Category: strings.TrimSpace(category)}
	if r.Keyword == "" {
		return r, fmt.Errorf("rule keyword is required: %w", ErrInvalid)
	}
	if r.Category == "" {
		return r, fmt.Errorf("rule category is required: %w", ErrInvalid)
	}
	return r, nil
}

// CreateRule adds a rule; the keyword must not exist yet.
func (s *SQLStore) CreateRule(ctx context.Context, profile, keyword, category string) (models.Rule, error) {
	r, err := validateRule(keyword, category)
	if err != nil {
		return models.Rule{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO rules(profile_id, keyword, category) VALUES(?, ?, ?)`, id, r.Keyword, r.Category)
		if isUniqueViolation(err) {
			return fmt.Errorf("rule '%s': %w", r.Keyword, ErrConflict)
		}
		return err
	})
	if err != nil {
		return models.Rule{}, err
	}
	return r, nil
}

// UpdateRule changes the keyword and category of an existing rule.
func (s *SQLStore) UpdateRule(ctx context.Context, profile, keyword, newKeyword, category string) (models.Rule, error) {
	r, err := validateRule(newKeyword, category)
	if err != nil {
		return models.Rule{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		var ruleID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM rules WHERE profile_id = ? AND keyword = ?`,
			id, models.NormalizeKeyword(keyword)).Scan(&ruleID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("rule '%s': %w", keyword, ErrNotFound)
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE rules SET keyword = ?, category = ? WHERE id = ?`, r.Keyword, r.Category, ruleID)
		if isUniqueViolation(err) {
			return fmt.Errorf("rule '%s': %w", r.Keyword, ErrConflict)
		}
		return err
	})
	if err != nil {
		return models.Rule{}, err
	}
	return r, nil
}

// DeleteRule removes a rule.
func (s *SQLStore) DeleteRule(ctx context.Context, profile, keyword string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM rules WHERE profile_id = ? AND keyword = ?`, id, models.NormalizeKeyword(keyword))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("rule '%s': %w", keyword, ErrNotFound)
		}
		return nil
	})
}

// UpsertRule inserts the rule or replaces the category of the existing keyword in place.
// An empty category is stored as Uncategorized. Concurrent writers are last-write-wins.
func (s *SQLStore) UpsertRule(ctx context.Context, profile, keyword, category string) (models.Rule, error) {
	r := models.Rule{Keyword: models.NormalizeKeyword(keyword), Category: strings.TrimSpace(category)}
	if r.Keyword == "" {
		return models.Rule{}, fmt.Errorf("rule keyword is required: %w", ErrInvalid)
	}
	if r.Category == "" {
		r.Category = models.CategoryUncategorized
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, profile)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rules(profile_id, keyword, category) VALUES(?, ?, ?)
			ON CONFLICT(profile_id, keyword) DO UPDATE SET category = excluded.category`,
			id, r.Keyword, r.Category)
		return err
	})
	if err != nil {
		return models.Rule{}, err
	}
	return r, nil
}
