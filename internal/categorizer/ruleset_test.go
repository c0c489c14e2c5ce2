package categorizer

import (
	"testing"

	"fjacquet/rabbit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_Match(t *testing.T) {
	rs := NewRuleSet([]models.Rule{
		{Keyword: "UBER", Category: "Transport"},
		{Keyword: "UBER EATS", Category: "Food"},
		{Keyword: "amzn", Category: "Shopping"},
	})

	tests := []struct {
		description string
		want        string
		found       bool
	}{
		{description: "Uber Eats", want: "Transport", found: true},
		{description: "MY UBER RIDE", want: "Transport", found: true},
		{description: "AMZN MKTP US", want: "Shopping", found: true},
		{description: "amzn digital", want: "Shopping", found: true},
		{description: "LYFT", found: false},
		{description: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			rule, ok := rs.Match(tt.description)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, rule.Category)
		})
	}
}

func TestRuleSet_UpsertKeepsPosition(t *testing.T) {
	rs := NewRuleSet(nil)

	_, ok := rs.Upsert("  ", "Ignored")
	assert.False(t, ok)

	rs.Upsert("coffee", models.CategoryNeedsCategory)
	rs.Upsert("COFFEE SHOP", "Food")
	r, ok := rs.Upsert(" Coffee ", "Drinks")
	require.True(t, ok)
	assert.Equal(t, models.Rule{Keyword: "COFFEE", Category: "Drinks"}, r)

	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, []models.Rule{
		{Keyword: "COFFEE", Category: "Drinks"},
		{Keyword: "COFFEE SHOP", Category: "Food"},
	}, rs.Rules())

	got, ok := rs.Get("coffee shop")
	assert.True(t, ok)
	assert.Equal(t, "Food", got.Category)

	match, _ := rs.Match("coffee shop downtown")
	assert.Equal(t, "COFFEE", match.Keyword, "first rule in order wins, not the longest")
}

func TestNewRuleSet_DuplicateKeywordsCollapse(t *testing.T) {
	rs := NewRuleSet([]models.Rule{
		{Keyword: "TAXI", Category: "Transport"},
		{Keyword: "taxi", Category: "Travel"},
	})
	assert.Equal(t, []models.Rule{{Keyword: "TAXI", Category: "Travel"}}, rs.Rules())
}
