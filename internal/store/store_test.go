package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "rabbit.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_MigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rabbit.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.CreateProfile(context.Background(), "home")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	exists, err := s.ProfileExists(context.Background(), "home")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	name, err := s.CreateProfile(ctx, "  Home ")
	require.NoError(t, err)
	assert.Equal(t, "Home", name)

	_, err = s.CreateProfile(ctx, "alice")
	require.NoError(t, err)

	_, err = s.CreateProfile(ctx, "HOME")
	assert.ErrorIs(t, err, ErrConflict, "names are unique ignoring case")

	_, err = s.CreateProfile(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	names, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "Home"}, names)

	exists, err := s.ProfileExists(ctx, "home")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteProfile(ctx, "HOME"))
	exists, err = s.ProfileExists(ctx, "home")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, s.DeleteProfile(ctx, "home"), ErrNotFound)
}

func TestDeleteProfile_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateProfile(ctx, "home")
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "home", "Food", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = s.UpsertRule(ctx, "home", "cafe", "Food")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProfile(ctx, "home"))
	_, err = s.CreateProfile(ctx, "home")
	require.NoError(t, err)

	categories, err := s.ListCategories(ctx, "home")
	require.NoError(t, err)
	assert.Empty(t, categories)
	rules, err := s.ListRules(ctx, "home")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateProfile(ctx, "home")
	require.NoError(t, err)

	categories, err := s.ListCategories(ctx, "home")
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	_, err = s.CreateCategory(ctx, "home", "Shopping", decimal.RequireFromString("250.50"))
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "Home", " Food ", decimal.Zero)
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, "home", "food", decimal.Zero)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.CreateCategory(ctx, "home", "Travel", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.CreateCategory(ctx, "ghost", "Travel", decimal.Zero)
	assert.ErrorIs(t, err, ErrNotFound)

	categories, err = s.ListCategories(ctx, "home")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)
	assert.Equal(t, "Shopping", categories[1].Name)
	assert.True(t, decimal.RequireFromString("250.5").Equal(categories[1].Budget))

	updated, err := s.UpdateCategory(ctx, "home", "FOOD", "Groceries", decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)

	_, err = s.UpdateCategory(ctx, "home", "groceries", "shopping", decimal.Zero)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.UpdateCategory(ctx, "home", "Missing", "Other", decimal.Zero)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateCategory(ctx, "home", "groceries", "GROCERIES", decimal.NewFromInt(1))
	assert.NoError(t, err, "changing only the case is not a conflict")

	require.NoError(t, s.DeleteCategory(ctx, "home", "groceries"))
	assert.ErrorIs(t, s.DeleteCategory(ctx, "home", "groceries"), ErrNotFound)

	_, err = s.ListCategories(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRules(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateProfile(ctx, "home")
	require.NoError(t, err)

	r, err := s.CreateRule(ctx, "home", " uber ", " Transport ")
	require.NoError(t, err)
	assert.Equal(t, models.Rule{Keyword: "UBER", Category: "Transport"}, r)

	_, err = s.CreateRule(ctx, "home", "UBER", "Food")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.CreateRule(ctx, "home", "", "Food")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.CreateRule(ctx, "home", "X", " ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.CreateRule(ctx, "home", "amzn", "Shopping")
	require.NoError(t, err)

	_, err = s.UpdateRule(ctx, "home", "uber", "uber eats", "Food")
	require.NoError(t, err)
	_, err = s.UpdateRule(ctx, "home", "uber eats", "amzn", "Food")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.UpdateRule(ctx, "home", "lyft", "LYFT", "Transport")
	assert.ErrorIs(t, err, ErrNotFound)

	rules, err := s.ListRules(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []models.Rule{
		{Keyword: "UBER EATS", Category: "Food"},
		{Keyword: "AMZN", Category: "Shopping"},
	}, rules, "rules keep insertion order across updates")

	require.NoError(t, s.DeleteRule(ctx, "home", "uber eats"))
	assert.ErrorIs(t, s.DeleteRule(ctx, "home", "uber eats"), ErrNotFound)
}

func TestUpsertRule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateProfile(ctx, "home")
	require.NoError(t, err)

	_, err = s.UpsertRule(ctx, "home", "netflix", "")
	require.NoError(t, err)
	_, err = s.UpsertRule(ctx, "home", "Coffee Shop", models.CategoryNeedsCategory)
	require.NoError(t, err)
	_, err = s.UpsertRule(ctx, "home", "COFFEE SHOP", models.CategoryNeedsCategory)
	require.NoError(t, err)
	r, err := s.UpsertRule(ctx, "home", "netflix", "Streaming")
	require.NoError(t, err)
	assert.Equal(t, "NETFLIX", r.Keyword)

	rules, err := s.ListRules(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []models.Rule{
		{Keyword: "NETFLIX", Category: "Streaming"},
		{Keyword: "COFFEE SHOP", Category: models.CategoryNeedsCategory},
	}, rules, "upserting twice does not duplicate")

	_, err = s.UpsertRule(ctx, "ghost", "X", "Y")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpsertRule(ctx, "home", "  ", "Y")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPrivacy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateProfile(ctx, "home")
	require.NoError(t, err)

	settings, err := s.ProfileSettings(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileSettings{}, settings)

	ok, err := s.VerifyPassword(ctx, "home", "")
	require.NoError(t, err)
	assert.True(t, ok, "public profiles are open")

	_, err = s.SetPrivacy(ctx, "home", true, "")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, s.ChangePassword(ctx, "home", "a", "b"), ErrInvalid)

	settings, err = s.SetPrivacy(ctx, "home", true, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileSettings{IsPrivate: true, HasPassword: true}, settings)

	ok, err = s.VerifyPassword(ctx, "HOME", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.VerifyPassword(ctx, "home", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.VerifyPassword(ctx, "home", "")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.ChangePassword(ctx, "home", "wrong", "next"), ErrPasswordMismatch)
	assert.ErrorIs(t, s.ChangePassword(ctx, "home", "s3cret", ""), ErrInvalid)
	require.NoError(t, s.ChangePassword(ctx, "home", "s3cret", "next"))
	ok, err = s.VerifyPassword(ctx, "home", "next")
	require.NoError(t, err)
	assert.True(t, ok)

	settings, err = s.SetPrivacy(ctx, "home", false, "")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileSettings{}, settings)
	settings, err = s.ProfileSettings(ctx, "home")
	require.NoError(t, err)
	assert.False(t, settings.HasPassword, "disabling privacy forgets the password")

	_, err = s.VerifyPassword(ctx, "ghost", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "home", CategoriesFile), `
- name: Shopping
  budget: 200
- name: Rent
  budget: "1900.00"
- name: ""
  budget: 5
- name: Misc
  budget: lots
`)
	writeFile(t, filepath.Join(dir, "home", RulesFile), `
zeta: Misc
amzn: Shopping
" ": Misc
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0750))
	writeFile(t, filepath.Join(dir, "README.txt"), "not a profile")

	s := newTestStore(t)
	n, err := s.Bootstrap(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "home"}, names)

	categories, err := s.ListCategories(ctx, "home")
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Misc", categories[0].Name)
	assert.True(t, categories[0].Budget.IsZero())
	assert.True(t, decimal.NewFromInt(1900).Equal(categories[1].Budget))

	rules, err := s.ListRules(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []models.Rule{
		{Keyword: "ZETA", Category: "Misc"},
		{Keyword: "AMZN", Category: "Shopping"},
	}, rules, "file order is kept")

	n, err = s.Bootstrap(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, n, "a populated database is never re-seeded")
}

func TestBootstrap_MissingDir(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadRulesFile_RejectsList(t *testing.T) {
	path := filepath.Join(t.TempDir(), RulesFile)
	writeFile(t, path, "- AMZN\n- UBER\n")
	_, err := LoadRulesFile(path)
	assert.Error(t, err)
}

func TestMockStore(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()
	m.AddProfile("Home", []models.Category{{Name: "Food"}}, []models.Rule{{Keyword: "CAFE", Category: "Food"}})

	exists, err := m.ProfileExists(ctx, "home")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = m.UpsertRule(ctx, "home", "cafe", "Drinks")
	require.NoError(t, err)
	_, err = m.UpsertRule(ctx, "home", "bar", "")
	require.NoError(t, err)
	assert.Equal(t, []models.Rule{
		{Keyword: "CAFE", Category: "Drinks"},
		{Keyword: "BAR", Category: models.CategoryUncategorized},
	}, m.Rules("home"))
	assert.Len(t, m.Upserts, 2)

	m.RemoveProfile("home")
	_, err = m.UpsertRule(ctx, "home", "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)

	m.ListRulesError = errors.New("boom")
	_, err = m.ListRules(ctx, "home")
	assert.EqualError(t, err, "boom")
}
