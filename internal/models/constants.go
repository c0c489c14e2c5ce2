package models

// Categories with a fixed meaning in the engine
const (
	// CategoryUncategorized is assigned when neither a rule nor the classifier
	// could place a transaction.
	CategoryUncategorized = "Uncategorized"
	// CategoryNeedsCategory marks a rule discovered automatically that still
	// waits for a human to pick its category.
	CategoryNeedsCategory = "NEEDS CATEGORY"
)

// Default statement columns
const (
	DefaultDescriptionColumn = "Description"
	DefaultAmountColumn      = "Debit"
)

// Output CSV columns, in order
const (
	ColumnDescription = "Description"
	ColumnAmount      = "Amount"
	ColumnCategory    = "Category"
)

// SignConvention tells the cleaner how to recognize outflows in the amount column.
type SignConvention string

const (
	// SignAuto keeps only negative rows when the column contains any negative value,
	// otherwise keeps every numeric row.
	SignAuto SignConvention = "auto"
	// SignNegative always treats negative rows as expenses.
	SignNegative SignConvention = "negative"
	// SignPositive treats non-negative rows as expenses and drops negative ones.
	SignPositive SignConvention = "positive"
)

// ParseSignConvention converts a configuration string into a SignConvention.
// An empty string maps to SignAuto.
func ParseSignConvention(s string) (SignConvention, bool) {
	switch SignConvention(s) {
	case "", SignAuto:
		return SignAuto, true
	case SignNegative:
		return SignNegative, true
	case SignPositive:
		return SignPositive, true
	default:
		return "", false
	}
}

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
