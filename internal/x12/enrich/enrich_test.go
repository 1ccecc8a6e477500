package enrich

import (
	"testing"

	"github.com/drfirst/go-edi/internal/x12/parse"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		description string
		want        Category
	}{
		{"TARGETED ADULT MEDICAID", CategoryTargetedAdult},
		{"Traditional  Adult", CategoryTraditionalFFS},
		{"HEALTHY U ACO TRANSITION", CategoryACOTransition},
		{"SELECTHEALTH ACO", CategoryManagedCare},
		{"MEDICARE ADVANTAGE PPO", CategoryMedicareAdvantage},
		{"Medicare HMO Gold", CategoryMedicareAdvantage},
		{"MEDICARE PART B", CategoryOriginalMedicare},
		{"OPEN ACCESS PPO", CategoryCommercial},
		{"DENTAL RIDER", CategoryUnclassified},
		{"", CategoryUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := Classifier{}.Classify(tt.description)
			if got.Category != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.description, got.Category, tt.want)
			}
			if got.Description != tt.description {
				t.Errorf("description should be kept verbatim, got %q", got.Description)
			}
		})
	}
}

func TestCustomRules(t *testing.T) {
	c := Classifier{Rules: []Rule{{Category: CategoryCommercial, Contains: []string{"BLUE"}}}}
	if got := c.Classify("TRADITIONAL BLUE").Category; got != CategoryCommercial {
		t.Errorf("custom rules should replace defaults, got %s", got)
	}
	if got := c.Classify("TRADITIONAL").Category; got != CategoryUnclassified {
		t.Errorf("got %s, want unclassified", got)
	}
}

func TestPlans(t *testing.T) {
	e := &parse.Eligibility{Benefits: []parse.Benefit{
		{Code: "1", PlanDescription: "TARGETED ADULT MEDICAID"},
		{Code: "1", PlanDescription: "TARGETED ADULT MEDICAID"},
		{Code: "B", PlanDescription: "OPEN ACCESS PPO"},
		{Code: "1", PlanDescription: "TRADITIONAL ADULT"},
	}}

	labels := Classifier{}.Plans(e)
	if len(labels) != 2 {
		t.Fatalf("labels = %+v, want 2 active plans", labels)
	}
	if labels[0].Category != CategoryTargetedAdult || labels[1].Category != CategoryTraditionalFFS {
		t.Errorf("labels = %+v", labels)
	}
	if !Conflicting(labels) {
		t.Error("different categories should conflict")
	}
	if Conflicting(labels[:1]) || Conflicting(nil) {
		t.Error("a single label cannot conflict")
	}
}
