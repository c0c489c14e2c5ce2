package categorizer

import (
	"context"
	"strings"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
)

// AIStrategy implements categorization using the classifier fallback.
// It always decides, Uncategorized included, except for blank descriptions.
type AIStrategy struct {
	fallback   *Fallback
	categories []string
	logger     logging.Logger

	// last is the verdict of the most recent Categorize call.
	last Verdict
}

// NewAIStrategy creates a new AIStrategy offering categories to the model.
func NewAIStrategy(fallback *Fallback, categories []string, logger logging.Logger) *AIStrategy {
	return &AIStrategy{
		fallback:   fallback,
		categories: categories,
		logger:     logging.OrDefault(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return StrategyFallback
}

// Categorize asks the classifier for a category.
func (s *AIStrategy) Categorize(ctx context.Context, tx models.CleanedTransaction) (string, bool, error) {
	s.last = Verdict{}

	// Nothing to classify
	if strings.TrimSpace(tx.Description) == "" {
		return "", false, nil
	}

	s.last = s.fallback.Evaluate(ctx, tx.Description, s.categories)
	return s.last.Category, true, nil
}

// LastVerdict returns the verdict of the latest call.
func (s *AIStrategy) LastVerdict() Verdict {
	return s.last
}
