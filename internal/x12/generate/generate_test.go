package generate

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/payer"
)

var fixedNow = time.Date(2024, 1, 5, 12, 30, 0, 0, time.Local)

func newTestGenerator() *Generator {
	return &Generator{
		Envelope: EnvelopeConfig{
			SenderID:       "SUBMITTER01",
			ReceiverID:     "OFFALLY",
			UsageIndicator: x12.UsageTest,
			SubmitterName:  "Wasatch Family Clinic",
			ContactName:    "Billing Office",
			ContactPhone:   "801-555-0100",
			ReceiverName:   "Office Ally",
		},
		Now:            func() time.Time { return fixedNow },
		ControlNumbers: func() string { return "000000777" },
	}
}

func strPtr(s string) *string { return &s }

func mustPayer(t *testing.T, id string) payer.Config {
	t.Helper()
	c, ok := payer.DefaultDirectory().Lookup(id)
	if !ok {
		t.Fatalf("payer %s missing from defaults", id)
	}
	return c
}

// assertSegmentCount checks SE01 against an independent count of the emitted segments
func assertSegmentCount(t *testing.T, raw string) {
	t.Helper()
	segs := x12.SplitSegments(raw)
	st, se := -1, -1
	for i, s := range segs {
		switch {
		case strings.HasPrefix(s, "ST*"):
			st = i
		case strings.HasPrefix(s, "SE*"):
			se = i
		}
	}
	if st < 0 || se < 0 {
		t.Fatalf("ST/SE not found in %q", raw)
	}
	got, err := strconv.Atoi(x12.SplitElements(segs[se])[1])
	if err != nil {
		t.Fatalf("SE01 not numeric: %q", segs[se])
	}
	if want := se - st + 1; got != want {
		t.Errorf("SE01 = %d, want %d", got, want)
	}
	if _, err := x12.ParseInterchange(raw); err != nil {
		t.Errorf("generated interchange does not parse: %v", err)
	}
}

func segmentsWithID(raw, id string) []string {
	var out []string
	for _, s := range x12.SplitSegments(raw) {
		if strings.HasPrefix(s, id+"*") {
			out = append(out, s)
		}
	}
	return out
}

func TestEligibility270NameOnlyMedicaid(t *testing.T) {
	g := newTestGenerator()
	p := Patient{FirstName: "Jeremy", LastName: "Montoya", DateOfBirth: "1984-07-17"}
	raw, err := g.Eligibility270(p, mustPayer(t, "UTMCD"), Provider{Name: "Wasatch Family Clinic", NPI: "1234567893"})
	if err != nil {
		t.Fatalf("Eligibility270 failed: %v", err)
	}

	if !strings.Contains(raw, "~NM1*IL*1*MONTOYA*JEREMY~") {
		t.Errorf("subscriber NM1 missing or carries trailing elements:\n%s", raw)
	}
	if strings.Contains(raw, "*MI*") {
		t.Error("name-only inquiry must not carry a member id qualifier")
	}
	if !strings.Contains(raw, "~DTP*291*RD8*20240105-20240105~") {
		t.Errorf("expected RD8 plan date, got %q", segmentsWithID(raw, "DTP"))
	}
	if !strings.Contains(raw, "~DMG*D8*19840717~") {
		t.Errorf("DMG should not carry gender for this payer, got %q", segmentsWithID(raw, "DMG"))
	}
	for _, want := range []string{
		"~NM1*PR*2*UTAH MEDICAID*****PI*UTMCD~",
		"~NM1*1P*2*WASATCH FAMILY CLINIC*****XX*1234567893~",
		"~HL*1**20*1~", "~HL*2*1*21*1~", "~HL*3*2*22*0~",
		"~TRN*1*000000777*9SUBMITTER~",
		"~EQ*30~",
		"~GS*HS*",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("missing %q", want)
		}
	}
	assertSegmentCount(t, raw)
}

func TestEligibility270OmitsMemberIDWhenPayerDoesNotSupportIt(t *testing.T) {
	g := newTestGenerator()
	p := Patient{
		FirstName:   "Jeremy",
		LastName:    "Montoya",
		DateOfBirth: "1984-07-17",
		MemberID:    strPtr("0012345678"),
	}
	raw, err := g.Eligibility270(p, mustPayer(t, "UTMCD"), Provider{Name: "Clinic", NPI: "1234567893"})
	if err != nil {
		t.Fatalf("Eligibility270 failed: %v", err)
	}
	for _, nm1 := range segmentsWithID(raw, "NM1") {
		if strings.HasPrefix(nm1, "NM1*IL") && strings.Contains(nm1, "*MI*") {
			t.Errorf("subscriber NM1 carries member id: %q", nm1)
		}
	}
	if strings.Contains(raw, "0012345678") {
		t.Error("member id leaked into the transaction")
	}
}

func TestEligibility270CommercialPayer(t *testing.T) {
	g := newTestGenerator()
	p := Patient{
		FirstName:   "Ana",
		LastName:    "de la Cruz",
		DateOfBirth: "1990-02-03",
		MemberID:    strPtr("W123456789"),
		Gender:      strPtr("female"),
		GroupNumber: strPtr("GRP-77"),
	}
	raw, err := g.Eligibility270(p, mustPayer(t, "60054"), Provider{Name: "Clinic", NPI: "1234567893"})
	if err != nil {
		t.Fatalf("Eligibility270 failed: %v", err)
	}
	for _, want := range []string{
		"~NM1*IL*1*DE LA CRUZ*ANA****MI*W123456789~",
		"~REF*6P*GRP-77~",
		"~DMG*D8*19900203*F~",
		"~DTP*291*D8*20240105~",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("missing %q in\n%s", want, raw)
		}
	}
	assertSegmentCount(t, raw)

	// a payer that neither requires nor recommends a group number never gets REF*6P
	sh := mustPayer(t, "SX109")
	raw, err = g.Eligibility270(p, sh, Provider{Name: "Clinic", NPI: "1234567893"})
	if err != nil {
		t.Fatalf("Eligibility270 failed: %v", err)
	}
	if strings.Contains(raw, "REF*6P") {
		t.Error("REF*6P emitted for a payer that does not ask for it")
	}
	assertSegmentCount(t, raw)
}

func TestEligibility270ValidationFailsFast(t *testing.T) {
	g := newTestGenerator()
	tests := []struct {
		name    string
		patient Patient
		payerID string
		field   string
	}{
		{"missing first name", Patient{LastName: "Doe", DateOfBirth: "1980-01-01"}, "UTMCD", "patient.firstName"},
		{"bad dob", Patient{FirstName: "J", LastName: "Doe", DateOfBirth: "01/02/1980"}, "UTMCD", "patient.dateOfBirth"},
		{"gender required", Patient{FirstName: "J", LastName: "Doe", DateOfBirth: "1980-01-01", MemberID: strPtr("1")}, "60054", "patient.gender"},
		{"member id required", Patient{FirstName: "J", LastName: "Doe", DateOfBirth: "1980-01-01", Gender: strPtr("M")}, "60054", "patient.memberId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := g.Eligibility270(tt.patient, mustPayer(t, tt.payerID), Provider{Name: "Clinic", NPI: "1234567893"})
			if raw != "" {
				t.Error("no bytes may be produced on validation failure")
			}
			if !errors.Is(err, x12.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestProviderEntity(t *testing.T) {
	tests := []struct {
		name string
		want ProviderName
	}{
		{"Wasatch Family Clinic", ProviderName{EntityType: EntityOrganization, Last: "WASATCH FAMILY CLINIC"}},
		{"Smith & Jones, LLC", ProviderName{EntityType: EntityOrganization, Last: "SMITH & JONES, LLC"}},
		{"Smith Jones PLLC", ProviderName{EntityType: EntityOrganization, Last: "SMITH JONES PLLC"}},
		{"Acme Medical Group", ProviderName{EntityType: EntityOrganization, Last: "ACME MEDICAL GROUP"}},
		{"Jane Q Doe", ProviderName{EntityType: EntityPerson, Last: "DOE", First: "JANE"}},
		{"Madonna", ProviderName{EntityType: EntityPerson, Last: "MADONNA"}},
		{"Pinecrest Inc.", ProviderName{EntityType: EntityOrganization, Last: "PINECREST INC."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProviderEntity(tt.name); got != tt.want {
				t.Errorf("ProviderEntity(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func claimInquiry() ClaimInquiry {
	amount := decimal.RequireFromString("300")
	return ClaimInquiry{
		PayerID:            "SKUT0",
		PayerName:          "Utah Medicaid",
		ProviderName:       "John Smith",
		ProviderNPI:        "1234567893",
		PatientFirstName:   "Jeremy",
		PatientLastName:    "Montoya",
		PatientDateOfBirth: "1984-07-17",
		MemberID:           "0012345678",
		ClaimControlNumber: "PCN20240105",
		ServiceDate:        strPtr("2024-01-02"),
		ClaimAmount:        &amount,
	}
}

func TestClaimStatus276(t *testing.T) {
	g := newTestGenerator()
	raw, err := g.ClaimStatus276(claimInquiry())
	if err != nil {
		t.Fatalf("ClaimStatus276 failed: %v", err)
	}
	for _, want := range []string{
		"~HL*1**20*1~", "~HL*2*1*21*1~", "~HL*3*2*19*1~", "~HL*4*3*22*0~",
		"~NM1*41*2*WASATCH FAMILY CLINIC*****46*SUBMITTER01~",
		"~NM1*1P*1*SMITH*JOHN****XX*1234567893~",
		"~DMG*D8*19840717~NM1*IL*1*MONTOYA*JEREMY****MI*0012345678~",
		"~TRN*1*PCN20240105~REF*D9*PCN20240105~AMT*T3*300.00~DTP*472*D8*20240102~",
		"~GS*HR*",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("missing %q in\n%s", want, raw)
		}
	}
	assertSegmentCount(t, raw)
}

func TestClaimStatus276WithDependentAndOrganization(t *testing.T) {
	inq := claimInquiry()
	inq.ProviderName = "Wasatch Family Clinic"
	inq.ClaimAmount = nil
	inq.ServiceDate = strPtr("2024-01-02")
	inq.ServiceDateEnd = strPtr("2024-01-04")
	inq.Dependent = &Dependent{FirstName: "Lia", LastName: "Montoya", DateOfBirth: "2015-03-09", Gender: strPtr("F")}

	raw, err := newTestGenerator().ClaimStatus276(inq)
	if err != nil {
		t.Fatalf("ClaimStatus276 failed: %v", err)
	}
	for _, want := range []string{
		"~NM1*1P*2*WASATCH FAMILY CLINIC*****XX*1234567893~",
		"~HL*4*3*22*1~NM1*IL*1*MONTOYA*JEREMY****MI*0012345678~HL*5*4*23*0~DMG*D8*20150309*F~NM1*QC*1*MONTOYA*LIA~",
		"~DTP*472*RD8*20240102-20240104~",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("missing %q in\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "AMT*T3") {
		t.Error("AMT*T3 emitted without an amount")
	}
	assertSegmentCount(t, raw)
}

func TestValidateClaimInquiry(t *testing.T) {
	report := ValidateClaimInquiry(claimInquiry())
	if !report.Valid || len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Errorf("complete inquiry report = %+v", report)
	}

	inq := claimInquiry()
	inq.MemberID = ""
	inq.ProviderNPI = "12345"
	inq.ServiceDate = nil
	inq.ClaimAmount = nil
	report = ValidateClaimInquiry(inq)
	if report.Valid {
		t.Error("expected invalid report")
	}
	if len(report.Errors) != 2 {
		t.Errorf("errors = %q, want memberId and providerNpi", report.Errors)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("warnings = %q, want serviceDate and claimAmount", report.Warnings)
	}

	if _, err := newTestGenerator().ClaimStatus276(inq); !errors.Is(err, x12.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func testClaim() Claim {
	return Claim{
		PatientControlNumber: "PCN20240105",
		Payer:                payer.Config{PayerID: "UTMCD", DisplayName: "Utah Medicaid", ClaimsPayerID: "SKUT0"},
		BillingProvider: BillingProvider{
			Name:     "Wasatch Family Clinic",
			NPI:      "1234567893",
			TaxID:    "87-1234567",
			Taxonomy: "207Q00000X",
			Address:  Address{Line1: "100 Main St", City: "Provo", State: "ut", Zip: "84601-1234"},
		},
		Subscriber: Subscriber{
			FirstName:   "Jeremy",
			LastName:    "Montoya",
			DateOfBirth: "1984-07-17",
			Gender:      "M",
			MemberID:    "0012345678",
		},
		Diagnoses: []string{"J44.9", "e11.9"},
		Lines: []ServiceLine{
			{CPTCode: "99213", Charge: decimal.RequireFromString("100"), Units: 2, DiagnosisPointers: []int{1, 2}, ServiceDate: "2024-01-02"},
			{
				CPTCode:           "94640",
				Modifiers:         []string{"25"},
				Charge:            decimal.RequireFromString("50.00"),
				Units:             2,
				DiagnosisPointers: []int{1},
				ServiceDate:       "2024-01-03",
				RenderingProvider: &RenderingProvider{FirstName: "Jane", LastName: "Doe", NPI: "1987654321", Taxonomy: "207Q00000X"},
			},
		},
	}
}

func TestClaim837PTotalsAndLines(t *testing.T) {
	raw, err := newTestGenerator().Claim837P(testClaim())
	if err != nil {
		t.Fatalf("Claim837P failed: %v", err)
	}
	for _, want := range []string{
		"~CLM*PCN20240105*300.00***11:B:1*Y*A*Y*Y~",
		"~HI*ABK:J449*ABF:E119~",
		"~LX*1~SV1*HC:99213*200.00*UN*2***1:2~DTP*472*D8*20240102~",
		"~LX*2~SV1*HC:94640:25*100.00*UN*2***1~DTP*472*D8*20240103~NM1*82*1*DOE*JANE****XX*1987654321~PRV*PE*PXC*207Q00000X~",
		"~PRV*BI*PXC*207Q00000X~NM1*85*2*WASATCH FAMILY CLINIC*****XX*1234567893~N3*100 MAIN ST~N4*PROVO*UT*846011234~REF*EI*871234567~",
		"~SBR*P*18*******MC~",
		"~NM1*PR*2*UTAH MEDICAID*****PI*SKUT0~",
		"~NM1*41*2*WASATCH FAMILY CLINIC*****46*SUBMITTER01~PER*IC*BILLING OFFICE*TE*8015550100~NM1*40*2*OFFICE ALLY*****46*OFFALLY~",
		"~GS*HC*",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("missing %q in\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "PI*UTMCD") {
		t.Error("837 must use the claims payer id, not the eligibility id")
	}
	assertSegmentCount(t, raw)
}

func TestClaim837PValidation(t *testing.T) {
	c := testClaim()
	c.Diagnoses = nil
	c.Lines[0].Units = 0
	raw, err := newTestGenerator().Claim837P(c)
	if raw != "" || !errors.Is(err, x12.ErrValidation) {
		t.Fatalf("expected validation error and no output, got %v", err)
	}
	var list x12.ValidationErrors
	if !errors.As(err, &list) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	fields := map[string]bool{}
	for _, e := range list {
		fields[e.Field] = true
	}
	for _, f := range []string{"diagnoses", "lines[0].units", "lines[0].diagnosisPointers"} {
		if !fields[f] {
			t.Errorf("missing error for %s in %v", f, err)
		}
	}
}

func TestClaim837PRequiresClaimsPayerID(t *testing.T) {
	c := testClaim()
	c.Payer.ClaimsPayerID = ""
	raw, err := newTestGenerator().Claim837P(c)
	if raw != "" || !errors.Is(err, x12.ErrValidation) {
		t.Fatalf("expected validation error and no output, got %q, %v", raw, err)
	}
	var list x12.ValidationErrors
	if !errors.As(err, &list) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(list) != 1 || list[0].Field != "payer.claimsPayerId" {
		t.Errorf("errors = %v, want only payer.claimsPayerId", err)
	}
}
