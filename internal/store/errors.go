package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned (wrapped) by every store operation.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInvalid  = errors.New("invalid argument")
	// ErrPasswordMismatch is returned when the current password of a private profile is wrong.
	ErrPasswordMismatch = errors.New("current password is incorrect")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
