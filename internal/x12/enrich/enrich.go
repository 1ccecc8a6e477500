// Package enrich labels payer plan descriptions with coverage categories.
//
// The rules match free text that payers put in EB05. They describe how a few
// payers word their plans today and are not part of the X12 contract, so
// callers should treat a label as a hint and keep the raw description.
package enrich

import (
	"strings"

	"github.com/drfirst/go-edi/internal/x12/parse"
)

// Category is a coarse coverage classification derived from a plan description
type Category string

const (
	CategoryTraditionalFFS    Category = "traditional_ffs"
	CategoryTargetedAdult     Category = "targeted_adult_medicaid"
	CategoryACOTransition     Category = "aco_transition"
	CategoryManagedCare       Category = "medicaid_managed_care"
	CategoryMedicareAdvantage Category = "medicare_advantage"
	CategoryOriginalMedicare  Category = "original_medicare"
	CategoryCommercial        Category = "commercial"
	CategoryUnclassified      Category = "unclassified"
)

// Rule maps plan descriptions containing every one of Contains (case-insensitive)
// to a category
type Rule struct {
	Category Category
	Contains []string
	Note     string
}

func (r Rule) matches(upper string) bool {
	for _, needle := range r.Contains {
		if !strings.Contains(upper, needle) {
			return false
		}
	}
	return len(r.Contains) > 0
}

// DefaultRules are checked in order; more specific phrases come first
var DefaultRules = []Rule{
	{CategoryTargetedAdult, []string{"TARGETED ADULT"}, "expansion population, coverage may change at redetermination"},
	{CategoryACOTransition, []string{"ACO", "TRANSITION"}, "member is moving between accountable care organizations"},
	{CategoryManagedCare, []string{"ACO"}, "managed care plan; bill the ACO, not fee-for-service"},
	{CategoryTraditionalFFS, []string{"TRADITIONAL"}, "fee-for-service Medicaid"},
	{CategoryTraditionalFFS, []string{"FEE FOR SERVICE"}, "fee-for-service Medicaid"},
	{CategoryMedicareAdvantage, []string{"MEDICARE ADVANTAGE"}, "Part C plan; bill the Advantage plan"},
	{CategoryMedicareAdvantage, []string{"MEDICARE", "HMO"}, "Part C plan; bill the Advantage plan"},
	{CategoryOriginalMedicare, []string{"MEDICARE PART"}, ""},
	{CategoryCommercial, []string{"PPO"}, ""},
	{CategoryCommercial, []string{"HMO"}, ""},
	{CategoryCommercial, []string{"POS"}, ""},
}

// Classifier applies rules to plan descriptions; a zero Classifier uses DefaultRules
type Classifier struct {
	Rules []Rule
}

// PlanLabel is the classification of one plan description
type PlanLabel struct {
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Note        string   `json:"note,omitempty"`
}

// Classify labels a single plan description
func (c Classifier) Classify(description string) PlanLabel {
	rules := c.Rules
	if rules == nil {
		rules = DefaultRules
	}
	upper := strings.ToUpper(strings.Join(strings.Fields(description), " "))
	for _, r := range rules {
		if r.matches(upper) {
			return PlanLabel{Description: description, Category: r.Category, Note: r.Note}
		}
	}
	return PlanLabel{Description: description, Category: CategoryUnclassified}
}

// Plans labels every active plan of a 271 in response order. Conflicting
// categories are all returned; deciding between them is up to the caller.
func (c Classifier) Plans(e *parse.Eligibility) []PlanLabel {
	plans := e.ActivePlans()
	out := make([]PlanLabel, 0, len(plans))
	for _, p := range plans {
		out = append(out, c.Classify(p))
	}
	return out
}

// Conflicting reports whether the labels disagree on the category
func Conflicting(labels []PlanLabel) bool {
	for i := 1; i < len(labels); i++ {
		if labels[i].Category != labels[0].Category {
			return true
		}
	}
	return false
}
