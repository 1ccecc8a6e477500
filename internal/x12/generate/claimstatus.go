package generate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
)

// ClaimInquiry asks a payer for the status of a previously submitted claim
type ClaimInquiry struct {
	PayerID      string `json:"payerId"`
	PayerName    string `json:"payerName"`
	ProviderName string `json:"providerName"`
	ProviderNPI  string `json:"providerNpi"`

	PatientFirstName   string  `json:"patientFirstName"`
	PatientLastName    string  `json:"patientLastName"`
	PatientDateOfBirth string  `json:"patientDob"` // YYYY-MM-DD
	PatientGender      *string `json:"patientGender,omitempty"`
	MemberID           string  `json:"memberId"`

	// ClaimControlNumber is the patient control number of the original 837 (CLM01),
	// the key the payer uses to find the claim
	ClaimControlNumber string `json:"claimControlNumber"`

	ServiceDate    *string          `json:"serviceDate,omitempty"`    // YYYY-MM-DD
	ServiceDateEnd *string          `json:"serviceDateEnd,omitempty"` // YYYY-MM-DD
	ClaimAmount    *decimal.Decimal `json:"claimAmount,omitempty"`

	// Dependent is set when the patient is not the subscriber
	Dependent *Dependent `json:"dependent,omitempty"`
}

// Dependent is a patient covered under someone else's subscription
type Dependent struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth string  `json:"dateOfBirth"`
	Gender      *string `json:"gender,omitempty"`
}

// ValidationReport lists hard errors and advisory warnings for an inquiry
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateClaimInquiry enumerates missing or malformed fields without failing.
// Service date and amount are recommended only.
func ValidateClaimInquiry(inq ClaimInquiry) ValidationReport {
	errs := validateClaimInquiry(inq)
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}
	for _, e := range errs {
		report.Errors = append(report.Errors, e.Error())
	}
	if inq.ServiceDate == nil || deref(inq.ServiceDate) == "" {
		report.Warnings = append(report.Warnings, "serviceDate: recommended to narrow the payer's claim search")
	}
	if inq.ClaimAmount == nil {
		report.Warnings = append(report.Warnings, "claimAmount: recommended to narrow the payer's claim search")
	}
	report.Valid = len(report.Errors) == 0
	return report
}

func validateClaimInquiry(inq ClaimInquiry) x12.ValidationErrors {
	var errs x12.ValidationErrors
	required(&errs, "payerId", inq.PayerID)
	required(&errs, "payerName", inq.PayerName)
	required(&errs, "providerName", inq.ProviderName)
	if inq.ProviderNPI == "" {
		errs.Add("providerNpi", "required")
	} else if !validNPI(inq.ProviderNPI) {
		errs.Add("providerNpi", "must be 10 digits")
	}
	required(&errs, "patientFirstName", inq.PatientFirstName)
	required(&errs, "patientLastName", inq.PatientLastName)
	isoDate(&errs, "patientDob", inq.PatientDateOfBirth, true)
	required(&errs, "memberId", inq.MemberID)
	required(&errs, "claimControlNumber", inq.ClaimControlNumber)
	if g := deref(inq.PatientGender); g != "" {
		if _, ok := normalizeGender(g); !ok {
			errs.Add("patientGender", "must be M, F or U")
		}
	}
	isoDate(&errs, "serviceDate", deref(inq.ServiceDate), false)
	isoDate(&errs, "serviceDateEnd", deref(inq.ServiceDateEnd), false)
	if inq.ServiceDateEnd != nil && deref(inq.ServiceDate) == "" {
		errs.Add("serviceDate", "required when serviceDateEnd is set")
	}
	if inq.ClaimAmount != nil && inq.ClaimAmount.IsNegative() {
		errs.Add("claimAmount", "must not be negative")
	}
	if d := inq.Dependent; d != nil {
		required(&errs, "dependent.firstName", d.FirstName)
		required(&errs, "dependent.lastName", d.LastName)
		isoDate(&errs, "dependent.dateOfBirth", d.DateOfBirth, true)
	}
	return errs
}

func isoDate(errs *x12.ValidationErrors, field, value string, mandatory bool) {
	if value == "" {
		if mandatory {
			errs.Add(field, "required")
		}
		return
	}
	if _, err := x12.ParseISODate(field, value); err != nil {
		*errs = append(*errs, err.(*x12.ValidationError))
	}
}

// ClaimStatus276 builds a 276 claim status inquiry
func (g *Generator) ClaimStatus276(inq ClaimInquiry) (string, error) {
	if err := validateClaimInquiry(inq).Err(); err != nil {
		return "", err
	}
	if g.Envelope.SubmitterName == "" {
		return "", &x12.ValidationError{Field: "envelope.submitterName", Message: "required"}
	}

	st := g.stamp()
	var hl hlChain
	source, hlSource := hl.level(0, "20", true)
	receiver, hlReceiver := hl.level(source, "21", true)
	provider, hlProvider := hl.level(receiver, "19", true)
	_, hlSubscriber := hl.level(provider, "22", inq.Dependent != nil)

	prov := ProviderEntity(inq.ProviderName)
	body := []x12.Segment{
		x12.NewSegment("BHT", "0010", "13", st.control, x12.FormatD8(st.now), st.now.Format(x12.LayoutTime)),
		hlSource,
		nm1("PR", "2", x12.CleanName(inq.PayerName), "", "PI", inq.PayerID),
		hlReceiver,
		nm1("41", "2", x12.CleanName(g.Envelope.SubmitterName), "", "46", g.Envelope.SenderID),
		hlProvider,
		nm1("1P", prov.EntityType, prov.Last, prov.First, "XX", inq.ProviderNPI),
		hlSubscriber,
	}

	dob, _ := x12.ParseISODate("patientDob", inq.PatientDateOfBirth)
	subscriber := nm1("IL", "1", x12.CleanName(inq.PatientLastName), x12.CleanName(inq.PatientFirstName), "MI", x12.CleanText(inq.MemberID))
	if inq.Dependent == nil {
		body = append(body, demographics(dob, deref(inq.PatientGender)), subscriber)
		body = append(body, claimSegments(inq)...)
		return g.envelope(st, "276", x12.GuideClaimStatus, body)
	}

	_, hlDependent := hl.level(hl.next, "23", false)
	dep := inq.Dependent
	depDOB, _ := x12.ParseISODate("dependent.dateOfBirth", dep.DateOfBirth)
	body = append(body,
		subscriber,
		hlDependent,
		demographics(depDOB, deref(dep.Gender)),
		nm1("QC", "1", x12.CleanName(dep.LastName), x12.CleanName(dep.FirstName), "", ""),
	)
	body = append(body, claimSegments(inq)...)
	return g.envelope(st, "276", x12.GuideClaimStatus, body)
}

func demographics(dob time.Time, gender string) x12.Segment {
	seg := x12.NewSegment("DMG", x12.DateQualifierD8, x12.FormatD8(dob))
	if g, ok := normalizeGender(gender); ok {
		seg = append(seg, g)
	}
	return seg
}

// claimSegments renders the claim status tracking loop
func claimSegments(inq ClaimInquiry) []x12.Segment {
	ccn := x12.CleanText(inq.ClaimControlNumber)
	segs := []x12.Segment{
		x12.NewSegment("TRN", "1", ccn),
		x12.NewSegment("REF", "D9", ccn),
	}
	if inq.ClaimAmount != nil {
		segs = append(segs, x12.NewSegment("AMT", "T3", x12.FormatAmount(*inq.ClaimAmount)))
	}
	if from := deref(inq.ServiceDate); from != "" {
		start, _ := x12.ParseISODate("serviceDate", from)
		if to := deref(inq.ServiceDateEnd); to != "" && to != from {
			end, _ := x12.ParseISODate("serviceDateEnd", to)
			segs = append(segs, x12.NewSegment("DTP", "472", x12.DateQualifierRD8, x12.FormatRD8(start, end)))
		} else {
			segs = append(segs, x12.NewSegment("DTP", "472", x12.DateQualifierD8, x12.FormatD8(start)))
		}
	}
	return segs
}
