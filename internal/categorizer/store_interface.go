package categorizer

import (
	"context"

	"fjacquet/rabbit/internal/models"
)

// RuleStore is the persistence the categorizer needs for one profile.
// Missing profiles are reported by wrapping store.ErrNotFound.
type RuleStore interface {
	ProfileExists(ctx context.Context, profile string) (bool, error)
	ListCategories(ctx context.Context, profile string) ([]models.Category, error)
	ListRules(ctx context.Context, profile string) ([]models.Rule, error)
	UpsertRule(ctx context.Context, profile, keyword, category string) (models.Rule, error)
}
