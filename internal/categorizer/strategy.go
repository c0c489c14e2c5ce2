package categorizer

import (
	"context"

	"fjacquet/rabbit/internal/models"
)

// CategorizationStrategy defines a method for categorizing transactions.
// Strategies are tried in order; the first one that reports found wins.
type CategorizationStrategy interface {
	// Categorize returns the category name and whether the strategy could decide.
	// An error makes the categorizer log it and move on to the next strategy.
	Categorize(ctx context.Context, tx models.CleanedTransaction) (string, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
