package codes

import "testing"

func TestLabelFallsBackForUnknownCodes(t *testing.T) {
	if got := ServiceType.Label("30"); got != "Health Benefit Plan Coverage" {
		t.Errorf("Label(30) = %q", got)
	}
	got := ServiceType.Label("ZZ9")
	if got != "Unknown code: ZZ9" {
		t.Errorf("Label(ZZ9) = %q", got)
	}
	if !IsUnknownLabel(got) || IsUnknownLabel("Hospice") {
		t.Error("IsUnknownLabel misclassified a label")
	}
}

func TestTablesAreConsistent(t *testing.T) {
	tables := []*Table{
		EligibilityInfo, CoverageLevel, ServiceType, InsuranceType, TimePeriod,
		RejectReason, FollowUpAction, Gender, ClaimStatusCategory, ClaimStatus,
		EntityIdentifier, HierarchicalLevel, ReferenceQualifier, DateQualifier,
		AmountQualifier, PlaceOfService, RemittanceClaimStatus, AdjustmentGroup,
		AdjustmentReason, PaymentMethod, TransactionHandling, ProviderAdjustmentReason,
		SegmentSyntaxError, ElementSyntaxError, TransactionSetAck,
		TransactionSetSyntaxError, FunctionalGroupSyntaxError, InterchangeNote, InterchangeAck,
	}
	for _, table := range tables {
		t.Run(table.Name(), func(t *testing.T) {
			codes := table.Codes()
			if len(codes) == 0 {
				t.Fatal("empty table")
			}
			for _, c := range codes {
				d, ok := table.Lookup(c)
				if !ok || d == "" {
					t.Errorf("code %q has no description", c)
				}
			}
		})
	}
}

func TestIsActiveCoverage(t *testing.T) {
	for _, c := range []string{"1", "2", "5"} {
		if !IsActiveCoverage(c) {
			t.Errorf("%s should be active", c)
		}
	}
	for _, c := range []string{"6", "A", "R", ""} {
		if IsActiveCoverage(c) {
			t.Errorf("%s should not be active", c)
		}
	}
}
