package categorizer

import (
	"context"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
)

// RuleStrategy categorizes by keyword containment against the run's rule snapshot.
type RuleStrategy struct {
	rules  *RuleSet
	logger logging.Logger
}

// NewRuleStrategy creates a strategy over rules. The set is shared, so gaps
// recorded during a run are visible to later rows.
func NewRuleStrategy(rules *RuleSet, logger logging.Logger) *RuleStrategy {
	return &RuleStrategy{rules: rules, logger: logging.OrDefault(logger)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *RuleStrategy) Name() string {
	return StrategyRule
}

// Categorize resolves a row through the first matching rule. A rule still waiting
// for a category resolves the row to Uncategorized without further lookups.
func (s *RuleStrategy) Categorize(_ context.Context, tx models.CleanedTransaction) (string, bool, error) {
	rule, ok := s.rules.Match(tx.Description)
	if !ok {
		return "", false, nil
	}

	category := rule.Category
	if rule.IsGap() || category == "" {
		category = models.CategoryUncategorized
	}

	s.logger.Debug("Transaction categorized using rule",
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldDescription, Value: tx.Description},
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
		logging.Field{Key: logging.FieldCategory, Value: category})

	return category, true, nil
}
