package categorizer

// Strategy names
const (
	StrategyRule     = "Rule"
	StrategyFallback = "Fallback"
)

// StrategyResult is the outcome of the strategy chain for one row.
type StrategyResult struct {
	Strategy string
	Category string
	Found    bool
}

// RunStats counts what happened during one categorization run.
type RunStats struct {
	Rows int
	// RuleHits counts rows resolved by a rule with a real category.
	RuleHits int
	// KnownGaps counts rows matching a rule still marked NEEDS CATEGORY.
	KnownGaps          int
	ClassifierCalls    int
	ClassifierFailures int
	Uncategorized      int
	// NewGaps counts rules recorded as NEEDS CATEGORY during the run.
	NewGaps       int
	WriteFailures int
}
