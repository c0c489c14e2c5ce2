// Package categorizer assigns a spending category to every cleaned statement row:
// 1. Keyword rules of the profile, tried in persisted order
// 2. A language-model classifier as a fallback
// Rows neither could place are recorded as rule gaps for a human to fill in.
package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/processerror"
	"fjacquet/rabbit/internal/store"

	"github.com/google/uuid"
)

// Categorizer runs the rule-then-classifier loop over a statement.
type Categorizer struct {
	store    RuleStore
	fallback *Fallback
	logger   logging.Logger

	mu   sync.Mutex
	last RunStats
}

// NewCategorizer creates a categorizer. A nil fallback disables the classifier.
func NewCategorizer(ruleStore RuleStore, fallback *Fallback, logger logging.Logger) *Categorizer {
	return &Categorizer{
		store:    ruleStore,
		fallback: fallback,
		logger:   logging.OrDefault(logger),
	}
}

// LastStats returns the statistics of the most recently finished run.
func (c *Categorizer) LastStats() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Run categorizes rows for profile and returns exactly one result per row, in order.
// See RunWithStats.
func (c *Categorizer) Run(ctx context.Context, rows []models.CleanedTransaction, profile string) ([]models.CategorizedTransaction, error) {
	results, _, err := c.RunWithStats(ctx, rows, profile)
	return results, err
}

// RunWithStats categorizes rows for profile.
//
// The profile is checked once, before any row; a missing profile yields a
// *processerror.ProfileNotFoundError. Categories and rules are loaded once.
// A description the classifier could not place becomes a NEEDS CATEGORY rule,
// written to the store immediately; a failed write is logged and the run goes on.
func (c *Categorizer) RunWithStats(ctx context.Context, rows []models.CleanedTransaction, profile string) ([]models.CategorizedTransaction, RunStats, error) {
	logger := c.logger.WithFields(
		logging.Field{Key: logging.FieldRunID, Value: uuid.NewString()},
		logging.Field{Key: logging.FieldProfile, Value: profile},
	)

	categories, rules, err := c.loadProfile(ctx, profile)
	if err != nil {
		return nil, RunStats{}, err
	}

	ruleSet := NewRuleSet(rules)
	aiStrategy := NewAIStrategy(c.fallback, models.CategoryNames(categories), logger)
	strategies := []CategorizationStrategy{
		NewRuleStrategy(ruleSet, logger),
		aiStrategy,
	}

	logger.Info("Starting categorization",
		logging.Field{Key: logging.FieldTotal, Value: len(rows)},
		logging.Field{Key: logging.FieldCount, Value: ruleSet.Len()})

	stats := RunStats{Rows: len(rows)}
	results := make([]models.CategorizedTransaction, 0, len(rows))
	for i, row := range rows {
		logger.Debug("Categorizing",
			logging.Field{Key: logging.FieldRow, Value: fmt.Sprintf("%d/%d", i+1, len(rows))},
			logging.Field{Key: logging.FieldDescription, Value: row.Description})

		result := c.applyStrategies(ctx, strategies, row, logger)
		category := result.Category
		if !result.Found || category == "" {
			category = models.CategoryUncategorized
		}

		switch result.Strategy {
		case StrategyRule:
			if category == models.CategoryUncategorized {
				stats.KnownGaps++
			} else {
				stats.RuleHits++
			}
		case StrategyFallback:
			verdict := aiStrategy.LastVerdict()
			if verdict.Called {
				stats.ClassifierCalls++
			}
			if verdict.Err != nil {
				stats.ClassifierFailures++
			}
			if category == models.CategoryUncategorized {
				c.recordGap(ctx, profile, ruleSet, row.Description, &stats, logger)
			}
		}
		if category == models.CategoryUncategorized {
			stats.Uncategorized++
		}

		results = append(results, models.CategorizedTransaction{
			CleanedTransaction: row,
			Category:           category,
		})
	}

	logger.Info("Categorization finished",
		logging.Field{Key: logging.FieldTotal, Value: stats.Rows},
		logging.Field{Key: "rule_hits", Value: stats.RuleHits},
		logging.Field{Key: "classifier_calls", Value: stats.ClassifierCalls},
		logging.Field{Key: "new_gaps", Value: stats.NewGaps},
		logging.Field{Key: "uncategorized", Value: stats.Uncategorized})

	c.mu.Lock()
	c.last = stats
	c.mu.Unlock()
	return results, stats, nil
}

// CheckProfile fails with a *processerror.ProfileNotFoundError when profile does not exist.
func (c *Categorizer) CheckProfile(ctx context.Context, profile string) error {
	exists, err := c.store.ProfileExists(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to check profile '%s': %w", profile, err)
	}
	if !exists {
		return &processerror.ProfileNotFoundError{Profile: profile}
	}
	return nil
}

func (c *Categorizer) loadProfile(ctx context.Context, profile string) ([]models.Category, []models.Rule, error) {
	if err := c.CheckProfile(ctx, profile); err != nil {
		return nil, nil, err
	}

	categories, err := c.store.ListCategories(ctx, profile)
	if err != nil {
		return nil, nil, wrapProfileError(profile, "categories", err)
	}
	rules, err := c.store.ListRules(ctx, profile)
	if err != nil {
		return nil, nil, wrapProfileError(profile, "rules", err)
	}
	return categories, rules, nil
}

func wrapProfileError(profile, what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &processerror.ProfileNotFoundError{Profile: profile, Err: err}
	}
	return fmt.Errorf("failed to load %s for profile '%s': %w", what, profile, err)
}

func (c *Categorizer) applyStrategies(ctx context.Context, strategies []CategorizationStrategy, row models.CleanedTransaction, logger logging.Logger) StrategyResult {
	for _, strategy := range strategies {
		category, found, err := strategy.Categorize(ctx, row)
		if err != nil {
			logger.WithError(err).Warn("Categorization strategy failed",
				logging.Field{Key: logging.FieldStrategy, Value: strategy.Name()},
				logging.Field{Key: logging.FieldDescription, Value: row.Description})
			continue
		}
		if found {
			return StrategyResult{Strategy: strategy.Name(), Category: category, Found: true}
		}
	}
	return StrategyResult{}
}

// recordGap stores description as a rule waiting for a category, both in the
// run's snapshot and in the store. Blank descriptions are never recorded.
func (c *Categorizer) recordGap(ctx context.Context, profile string, ruleSet *RuleSet, description string, stats *RunStats, logger logging.Logger) {
	keyword := strings.ToUpper(description)
	rule, ok := ruleSet.Upsert(keyword, models.CategoryNeedsCategory)
	if !ok {
		return
	}
	stats.NewGaps++

	logger.Info("Found uncategorized transaction, adding rule for future runs",
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword})

	if _, err := c.store.UpsertRule(ctx, profile, rule.Keyword, rule.Category); err != nil {
		stats.WriteFailures++
		writeErr := &processerror.StoreWriteError{Profile: profile, Keyword: rule.Keyword, Err: err}
		logger.WithError(writeErr).Error("Failed to persist rule gap, continuing")
	}
}
