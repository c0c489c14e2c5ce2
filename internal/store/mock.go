package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fjacquet/rabbit/internal/models"
)

// MockStore is an in-memory implementation of the engine-facing store methods for testing.
// Profile names are matched case-insensitively, like SQLStore.
type MockStore struct {
	mu         sync.Mutex
	categories map[string][]models.Category
	rules      map[string][]models.Rule

	// Upserts records every successful UpsertRule call, in order.
	Upserts []models.Rule

	// Error flags for testing error conditions
	ProfileExistsError  error
	ListCategoriesError error
	ListRulesError      error
	UpsertRuleError     error
}

// NewMockStore returns a store without profiles.
func NewMockStore() *MockStore {
	return &MockStore{
		categories: make(map[string][]models.Category),
		rules:      make(map[string][]models.Rule),
	}
}

func mockKey(profile string) string {
	return strings.ToLower(strings.TrimSpace(profile))
}

// AddProfile creates a profile with the given categories and rules.
func (m *MockStore) AddProfile(profile string, categories []models.Category, rules []models.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey(profile)
	m.categories[key] = append([]models.Category{}, categories...)
	m.rules[key] = append([]models.Rule{}, rules...)
}

// RemoveProfile deletes a profile, as a concurrent admin action would.
func (m *MockStore) RemoveProfile(profile string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, mockKey(profile))
	delete(m.rules, mockKey(profile))
}

// ProfileExists reports whether the profile was added.
func (m *MockStore) ProfileExists(_ context.Context, profile string) (bool, error) {
	if m.ProfileExistsError != nil {
		return false, m.ProfileExistsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.categories[mockKey(profile)]
	return ok, nil
}

// ListCategories returns a copy of the profile's categories.
func (m *MockStore) ListCategories(_ context.Context, profile string) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	categories, ok := m.categories[mockKey(profile)]
	if !ok {
		return nil, fmt.Errorf("profile '%s': %w", profile, ErrNotFound)
	}
	return append([]models.Category{}, categories...), nil
}

// ListRules returns a copy of the profile's rules in insertion order.
func (m *MockStore) ListRules(_ context.Context, profile string) ([]models.Rule, error) {
	if m.ListRulesError != nil {
		return nil, m.ListRulesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rules, ok := m.rules[mockKey(profile)]
	if !ok {
		return nil, fmt.Errorf("profile '%s': %w", profile, ErrNotFound)
	}
	return append([]models.Rule{}, rules...), nil
}

// UpsertRule inserts or updates a rule in place.
func (m *MockStore) UpsertRule(_ context.Context, profile, keyword, category string) (models.Rule, error) {
	if m.UpsertRuleError != nil {
		return models.Rule{}, m.UpsertRuleError
	}
	r := models.Rule{Keyword: models.NormalizeKeyword(keyword), Category: strings.TrimSpace(category)}
	if r.Keyword == "" {
		return models.Rule{}, fmt.Errorf("rule keyword is required: %w", ErrInvalid)
	}
	if r.Category == "" {
		r.Category = models.CategoryUncategorized
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey(profile)
	rules, ok := m.rules[key]
	if !ok {
		return models.Rule{}, fmt.Errorf("profile '%s': %w", profile, ErrNotFound)
	}
	replaced := false
	for i := range rules {
		if rules[i].Keyword == r.Keyword {
			rules[i].Category = r.Category
			replaced = true
			break
		}
	}
	if !replaced {
		rules = append(rules, r)
	}
	m.rules[key] = rules
	m.Upserts = append(m.Upserts, r)
	return r, nil
}

// Rules returns the current rules of a profile, for assertions.
func (m *MockStore) Rules(profile string) []models.Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Rule{}, m.rules[mockKey(profile)]...)
}
