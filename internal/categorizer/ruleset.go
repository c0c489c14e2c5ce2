package categorizer

import (
	"strings"

	"fjacquet/rabbit/internal/models"
)

// RuleSet is an ordered keyword-to-category table.
// Matching tries rules in insertion order; updating a rule keeps its position.
type RuleSet struct {
	rules []models.Rule
	index map[string]int
}

// NewRuleSet builds a rule set from rules in their persisted order.
func NewRuleSet(rules []models.Rule) *RuleSet {
	rs := &RuleSet{
		rules: make([]models.Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		rs.Upsert(r.Keyword, r.Category)
	}
	return rs
}

// Upsert adds the rule or replaces the category of an existing keyword.
// Keywords are stored uppercase and trimmed; an empty keyword is ignored.
func (rs *RuleSet) Upsert(keyword, category string) (models.Rule, bool) {
	r := models.Rule{Keyword: models.NormalizeKeyword(keyword), Category: category}
	if r.Keyword == "" {
		return models.Rule{}, false
	}
	if i, ok := rs.index[r.Keyword]; ok {
		rs.rules[i].Category = category
		return rs.rules[i], true
	}
	rs.index[r.Keyword] = len(rs.rules)
	rs.rules = append(rs.rules, r)
	return r, true
}

// Match returns the first rule whose keyword occurs in the uppercased description.
func (rs *RuleSet) Match(description string) (models.Rule, bool) {
	upper := strings.ToUpper(description)
	for _, r := range rs.rules {
		if strings.Contains(upper, r.Keyword) {
			return r, true
		}
	}
	return models.Rule{}, false
}

// Get looks a keyword up exactly.
func (rs *RuleSet) Get(keyword string) (models.Rule, bool) {
	i, ok := rs.index[models.NormalizeKeyword(keyword)]
	if !ok {
		return models.Rule{}, false
	}
	return rs.rules[i], true
}

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of the rules in match order.
func (rs *RuleSet) Rules() []models.Rule {
	return append([]models.Rule{}, rs.rules...)
}
