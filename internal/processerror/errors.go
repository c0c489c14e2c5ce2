// Package processerror defines the typed errors raised while turning a statement
// into a categorized report.
package processerror

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from the statement header.
// It is fatal to a run.
type SchemaError struct {
	FilePath string
	Missing  []string
	Header   []string
}

func (e *SchemaError) Error() string {
	source := e.FilePath
	if source == "" {
		source = "statement"
	}
	return fmt.Sprintf("%s: missing required column(s) %s (found: %s)",
		source, quoteAll(e.Missing), quoteAll(e.Header))
}

// ProfileNotFoundError is returned before any row is processed when the
// requested profile does not exist in the store.
type ProfileNotFoundError struct {
	Profile string
	Err     error
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile '%s' not found", e.Profile)
}

func (e *ProfileNotFoundError) Unwrap() error {
	return e.Err
}

// ClassifierError wraps any failure of the fallback classifier call.
// It is logged and the row degrades to Uncategorized.
type ClassifierError struct {
	Description string
	Provider    string
	Err         error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier %s failed for '%s': %v", e.Provider, e.Description, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// StoreWriteError wraps a failed rule write-back during a run.
// It is logged and the run continues.
type StoreWriteError struct {
	Profile string
	Keyword string
	Err     error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to store rule '%s' for profile '%s': %v", e.Keyword, e.Profile, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
