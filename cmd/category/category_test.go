package category

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "rabbit.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = s.CreateProfile(context.Background(), "home")
	require.NoError(t, err)
	return s
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "0"},
		{in: "250.5", want: "250.5"},
		{in: "-1", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBudget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got))
		})
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var out bytes.Buffer

	require.NoError(t, Add(ctx, s, "home", "", "Groceries", "400", &out))
	require.NoError(t, Add(ctx, s, "home", "", "Travel", "", &out))
	assert.ErrorIs(t, Add(ctx, s, "home", "", "groceries", "", &out), store.ErrConflict)

	out.Reset()
	require.NoError(t, List(ctx, s, "home", "", &out))
	assert.Contains(t, out.String(), "Groceries")
	assert.Contains(t, out.String(), "400.00")

	require.NoError(t, Update(ctx, s, "home", "", "Travel", "Holidays", "1200", &out))
	categories, err := s.ListCategories(ctx, "home")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Holidays", categories[1].Name)

	require.NoError(t, Delete(ctx, s, "home", "", "Holidays", &out))
	assert.ErrorIs(t, Delete(ctx, s, "home", "", "Holidays", &out), store.ErrNotFound)
}

func TestCategory_PrivateProfile(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.SetPrivacy(ctx, "home", true, "hunter2")
	require.NoError(t, err)

	assert.ErrorIs(t, List(ctx, s, "home", "", &bytes.Buffer{}), root.ErrAccessDenied)
	assert.NoError(t, Add(ctx, s, "home", "hunter2", "Rent", "", &bytes.Buffer{}))
}
