package generate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/payer"
)

const (
	maxDiagnoses     = 12
	maxServiceLines  = 50
	maxLinePointers  = 4
	defaultPlaceCode = "11"
)

// BillingProvider is loop 2010AA
type BillingProvider struct {
	Name     string  `json:"name"`
	NPI      string  `json:"npi"`
	TaxID    string  `json:"taxId"`
	Taxonomy string  `json:"taxonomy"`
	Address  Address `json:"address"`
}

// RenderingProvider is loop 2310B/2420A; always a person
type RenderingProvider struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	NPI       string `json:"npi"`
	Taxonomy  string `json:"taxonomy,omitempty"`
}

// Subscriber is loop 2010BA. This engine bills the subscriber as the patient.
type Subscriber struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DateOfBirth string   `json:"dateOfBirth"`
	Gender      string   `json:"gender"`
	MemberID    string   `json:"memberId"`
	GroupNumber *string  `json:"groupNumber,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// ServiceLine is one LX/SV1 service. Charge is per unit.
type ServiceLine struct {
	CPTCode           string             `json:"cptCode"`
	Modifiers         []string           `json:"modifiers,omitempty"`
	Charge            decimal.Decimal    `json:"charge"`
	Units             int                `json:"units"`
	DiagnosisPointers []int              `json:"diagnosisPointers"`
	ServiceDate       string             `json:"serviceDate"` // YYYY-MM-DD
	RenderingProvider *RenderingProvider `json:"renderingProvider,omitempty"`
}

// Total returns charge × units
func (l ServiceLine) Total() decimal.Decimal {
	return l.Charge.Mul(decimal.NewFromInt(int64(l.Units)))
}

// Claim is an 837P professional claim. Payer must carry the claims payer id,
// which is not necessarily the id used for eligibility.
type Claim struct {
	PatientControlNumber string          `json:"patientControlNumber"`
	Payer                payer.Config    `json:"payer"`
	BillingProvider      BillingProvider `json:"billingProvider"`
	Subscriber           Subscriber      `json:"subscriber"`
	PlaceOfService       string          `json:"placeOfService,omitempty"`
	Diagnoses            []string        `json:"diagnoses"`
	Lines                []ServiceLine   `json:"lines"`
}

// Total returns the sum of every line total
func (c Claim) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// ValidateClaim checks a claim without generating anything
func ValidateClaim(c Claim) error {
	return validateClaim(c).Err()
}

func validateClaim(c Claim) x12.ValidationErrors {
	var errs x12.ValidationErrors
	required(&errs, "patientControlNumber", c.PatientControlNumber)
	if len(c.PatientControlNumber) > 38 {
		errs.Add("patientControlNumber", "exceeds 38 characters")
	}
	required(&errs, "payer.displayName", c.Payer.DisplayName)
	required(&errs, "payer.claimsPayerId", c.Payer.ClaimsPayerID)

	bp := c.BillingProvider
	required(&errs, "billingProvider.name", bp.Name)
	if !validNPI(bp.NPI) {
		errs.Add("billingProvider.npi", "must be 10 digits")
	}
	required(&errs, "billingProvider.taxId", bp.TaxID)
	required(&errs, "billingProvider.taxonomy", bp.Taxonomy)
	bp.Address.validate(&errs, "billingProvider.address")

	s := c.Subscriber
	required(&errs, "subscriber.firstName", s.FirstName)
	required(&errs, "subscriber.lastName", s.LastName)
	isoDate(&errs, "subscriber.dateOfBirth", s.DateOfBirth, true)
	if _, ok := normalizeGender(s.Gender); !ok {
		errs.Add("subscriber.gender", "must be M, F or U")
	}
	required(&errs, "subscriber.memberId", s.MemberID)
	if s.Address != nil {
		s.Address.validate(&errs, "subscriber.address")
	}

	if len(c.Diagnoses) == 0 {
		errs.Add("diagnoses", "at least one diagnosis code is required")
	} else if len(c.Diagnoses) > maxDiagnoses {
		errs.Add("diagnoses", fmt.Sprintf("at most %d diagnosis codes", maxDiagnoses))
	}
	for i, dx := range c.Diagnoses {
		if normalizeDiagnosis(dx) == "" {
			errs.Add(fmt.Sprintf("diagnoses[%d]", i), "required")
		}
	}

	if len(c.Lines) == 0 {
		errs.Add("lines", "at least one service line is required")
	} else if len(c.Lines) > maxServiceLines {
		errs.Add("lines", fmt.Sprintf("at most %d service lines", maxServiceLines))
	}
	for i, l := range c.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		required(&errs, prefix+".cptCode", l.CPTCode)
		if !l.Charge.IsPositive() {
			errs.Add(prefix+".charge", "must be positive")
		}
		if l.Units < 1 {
			errs.Add(prefix+".units", "must be at least 1")
		}
		if len(l.DiagnosisPointers) == 0 || len(l.DiagnosisPointers) > maxLinePointers {
			errs.Add(prefix+".diagnosisPointers", fmt.Sprintf("between 1 and %d pointers required", maxLinePointers))
		}
		for _, p := range l.DiagnosisPointers {
			if p < 1 || p > len(c.Diagnoses) {
				errs.Add(prefix+".diagnosisPointers", fmt.Sprintf("pointer %d does not reference a diagnosis", p))
			}
		}
		isoDate(&errs, prefix+".serviceDate", l.ServiceDate, true)
		if rp := l.RenderingProvider; rp != nil {
			required(&errs, prefix+".renderingProvider.lastName", rp.LastName)
			if !validNPI(rp.NPI) {
				errs.Add(prefix+".renderingProvider.npi", "must be 10 digits")
			}
		}
	}
	return errs
}

func normalizeDiagnosis(code string) string {
	return strings.ToUpper(strings.ReplaceAll(x12.CleanText(code), ".", ""))
}

// Claim837P builds an 837P professional claim
func (g *Generator) Claim837P(c Claim) (string, error) {
	if err := validateClaim(c).Err(); err != nil {
		return "", err
	}
	var errs x12.ValidationErrors
	required(&errs, "envelope.submitterName", g.Envelope.SubmitterName)
	required(&errs, "envelope.contactName", g.Envelope.ContactName)
	required(&errs, "envelope.contactPhone", g.Envelope.ContactPhone)
	required(&errs, "envelope.receiverName", g.Envelope.ReceiverName)
	if err := errs.Err(); err != nil {
		return "", err
	}

	st := g.stamp()
	var hl hlChain
	billing, hlBilling := hl.level(0, "20", true)
	_, hlSubscriber := hl.level(billing, "22", false)

	bp := c.BillingProvider
	s := c.Subscriber
	body := []x12.Segment{
		x12.NewSegment("BHT", "0019", "00", st.control, x12.FormatD8(st.now), st.now.Format(x12.LayoutTime), "CH"),
		nm1("41", "2", x12.CleanName(g.Envelope.SubmitterName), "", "46", g.Envelope.SenderID),
		x12.NewSegment("PER", "IC", x12.CleanName(g.Envelope.ContactName), "TE", digits(g.Envelope.ContactPhone)),
		nm1("40", "2", x12.CleanName(g.Envelope.ReceiverName), "", "46", g.Envelope.ReceiverID),
		hlBilling,
		x12.NewSegment("PRV", "BI", "PXC", x12.CleanText(bp.Taxonomy)),
		nm1("85", "2", x12.CleanName(bp.Name), "", "XX", bp.NPI),
	}
	body = append(body, bp.Address.segments()...)
	body = append(body,
		x12.NewSegment("REF", "EI", digits(bp.TaxID)),
		hlSubscriber,
		x12.NewSegment("SBR", "P", "18", x12.CleanText(deref(s.GroupNumber)), "", "", "", "", "", "MC"),
		nm1("IL", "1", x12.CleanName(s.LastName), x12.CleanName(s.FirstName), "MI", x12.CleanText(s.MemberID)),
	)
	if s.Address != nil {
		body = append(body, s.Address.segments()...)
	}
	dob, _ := x12.ParseISODate("subscriber.dateOfBirth", s.DateOfBirth)
	body = append(body,
		demographics(dob, s.Gender),
		nm1("PR", "2", x12.CleanName(c.Payer.DisplayName), "", "PI", c.Payer.ClaimsPayerID),
	)

	place := c.PlaceOfService
	if place == "" {
		place = defaultPlaceCode
	}
	body = append(body,
		x12.NewSegment("CLM",
			x12.CleanText(c.PatientControlNumber),
			x12.FormatAmount(c.Total()),
			"", "",
			strings.Join([]string{place, "B", "1"}, x12.ComponentSeparator),
			"Y", "A", "Y", "Y",
		),
		diagnosisSegment(c.Diagnoses),
	)

	for i, l := range c.Lines {
		body = append(body, lineSegments(i+1, l)...)
	}

	return g.envelope(st, "837", x12.GuideProfessional, body)
}

// diagnosisSegment tags the principal diagnosis ABK and the rest ABF
func diagnosisSegment(codes []string) x12.Segment {
	seg := x12.NewSegment("HI")
	for i, dx := range codes {
		qualifier := "ABF"
		if i == 0 {
			qualifier = "ABK"
		}
		seg = append(seg, qualifier+x12.ComponentSeparator+normalizeDiagnosis(dx))
	}
	return seg
}

func lineSegments(n int, l ServiceLine) []x12.Segment {
	procedure := []string{"HC", strings.ToUpper(x12.CleanText(l.CPTCode))}
	for _, m := range l.Modifiers {
		if m = strings.ToUpper(x12.CleanText(m)); m != "" {
			procedure = append(procedure, m)
		}
	}
	pointers := make([]string, len(l.DiagnosisPointers))
	for i, p := range l.DiagnosisPointers {
		pointers[i] = strconv.Itoa(p)
	}
	date, _ := x12.ParseISODate("serviceDate", l.ServiceDate)

	segs := []x12.Segment{
		x12.NewSegment("LX", strconv.Itoa(n)),
		x12.NewSegment("SV1",
			strings.Join(procedure, x12.ComponentSeparator),
			x12.FormatAmount(l.Total()),
			"UN",
			strconv.Itoa(l.Units),
			"", "",
			strings.Join(pointers, x12.ComponentSeparator),
		),
		x12.NewSegment("DTP", "472", x12.DateQualifierD8, x12.FormatD8(date)),
	}
	if rp := l.RenderingProvider; rp != nil {
		segs = append(segs, nm1("82", EntityPerson, x12.CleanName(rp.LastName), x12.CleanName(rp.FirstName), "XX", rp.NPI))
		if rp.Taxonomy != "" {
			segs = append(segs, x12.NewSegment("PRV", "PE", "PXC", x12.CleanText(rp.Taxonomy)))
		}
	}
	return segs
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
