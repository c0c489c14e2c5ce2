package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fjacquet/rabbit/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ListProfiles returns all profile names, sorted case-insensitively.
func (s *SQLStore) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM profiles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ProfileExists reports whether a profile with this name exists, ignoring case.
func (s *SQLStore) ProfileExists(ctx context.Context, name string) (bool, error) {
	_, err := profileID(ctx, s.db, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateProfile creates an empty, public profile and returns its stored name.
func (s *SQLStore) CreateProfile(ctx context.Context, name string) (string, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", fmt.Errorf("profile name is required: %w", ErrInvalid)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertProfile(ctx, tx, normalized)
	})
	if err != nil {
		return "", err
	}
	return normalized, nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, name string) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO profiles(name) VALUES(?)`, name)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile '%s': %w", name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create profile '%s': %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO profile_settings(profile_id, is_private) VALUES(?, 0)`, id)
	return err
}

// DeleteProfile removes a profile with its categories, rules and settings.
func (s *SQLStore) DeleteProfile(ctx context.Context, name string) error {
	if normalizeName(name) == "" {
		return fmt.Errorf("profile name is required: %w", ErrInvalid)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
		return err
	})
}

type settingsRow struct {
	isPrivate    bool
	passwordHash sql.NullString
}

func loadSettings(ctx context.Context, tx *sql.Tx, profileID int64) (settingsRow, error) {
	var row settingsRow
	err := tx.QueryRowContext(ctx,
		`SELECT is_private, password_hash FROM profile_settings WHERE profile_id = ?`, profileID,
	).Scan(&row.isPrivate, &row.passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx, `INSERT INTO profile_settings(profile_id, is_private) VALUES(?, 0)`, profileID)
		return settingsRow{}, err
	}
	return row, err
}

func (r settingsRow) toModel() models.ProfileSettings {
	return models.ProfileSettings{
		IsPrivate:   r.isPrivate,
		HasPassword: r.passwordHash.Valid && r.passwordHash.String != "",
	}
}

// gated reports whether the password gate is active.
func (r settingsRow) gated() bool {
	return r.isPrivate && r.passwordHash.Valid && r.passwordHash.String != ""
}

// ProfileSettings returns the privacy settings of a profile.
func (s *SQLStore) ProfileSettings(ctx context.Context, name string) (models.ProfileSettings, error) {
	var settings models.ProfileSettings
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, name)
		if err != nil {
			return err
		}
		row, err := loadSettings(ctx, tx, id)
		settings = row.toModel()
		return err
	})
	return settings, err
}

// SetPrivacy enables the password gate (a password is then required) or
// disables it, which also forgets the password.
func (s *SQLStore) SetPrivacy(ctx context.Context, name string, private bool, password string) (models.ProfileSettings, error) {
	var hash sql.NullString
	if private {
		if password == "" {
			return models.ProfileSettings{}, fmt.Errorf("password is required to enable privacy: %w", ErrInvalid)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return models.ProfileSettings{}, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = sql.NullString{String: string(h), Valid: true}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := loadSettings(ctx, tx, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE profile_settings SET is_private = ?, password_hash = ? WHERE profile_id = ?`,
			private, hash, id)
		return err
	})
	if err != nil {
		return models.ProfileSettings{}, err
	}
	return models.ProfileSettings{IsPrivate: private, HasPassword: private}, nil
}

// ChangePassword replaces the password of a private profile after checking the current one.
func (s *SQLStore) ChangePassword(ctx context.Context, name, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", ErrInvalid)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, name)
		if err != nil {
			return err
		}
		row, err := loadSettings(ctx, tx, id)
		if err != nil {
			return err
		}
		if !row.gated() {
			return fmt.Errorf("privacy is not enabled for profile '%s': %w", name, ErrInvalid)
		}
		if oldPassword == "" || bcrypt.CompareHashAndPassword([]byte(row.passwordHash.String), []byte(oldPassword)) != nil {
			return ErrPasswordMismatch
		}
		h, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE profile_settings SET password_hash = ? WHERE profile_id = ?`, string(h), id)
		return err
	})
}

// VerifyPassword reports whether password opens the profile. Public profiles accept anything.
func (s *SQLStore) VerifyPassword(ctx context.Context, name, password string) (bool, error) {
	ok := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := profileID(ctx, tx, name)
		if err != nil {
			return err
		}
		row, err := loadSettings(ctx, tx, id)
		if err != nil {
			return err
		}
		switch {
		case !row.gated():
			ok = true
		case password == "":
			ok = false
		default:
			ok = bcrypt.CompareHashAndPassword([]byte(row.passwordHash.String), []byte(password)) == nil
		}
		return nil
	})
	return ok, err
}
