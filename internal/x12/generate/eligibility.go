package generate

import (
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/payer"
)

// ServiceTypeHealthBenefitPlan is the only service type this engine inquires about
const ServiceTypeHealthBenefitPlan = "30"

// Patient is the subscriber an eligibility inquiry is about.
// Optional fields are emitted only when set and the payer's dialect allows them.
type Patient struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth string  `json:"dateOfBirth"` // YYYY-MM-DD
	MemberID    *string `json:"memberId,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	GroupNumber *string `json:"groupNumber,omitempty"`
}

// Provider is the information receiver of an eligibility inquiry
type Provider struct {
	Name string `json:"name"`
	NPI  string `json:"npi"`
}

// ValidatePatient checks a patient against the payer's required fields without
// generating anything
func ValidatePatient(p Patient, cfg payer.Config) error {
	var errs x12.ValidationErrors
	validatePatient(&errs, p, cfg)
	return errs.Err()
}

func validatePatient(errs *x12.ValidationErrors, p Patient, cfg payer.Config) {
	required(errs, "patient.firstName", p.FirstName)
	required(errs, "patient.lastName", p.LastName)
	if p.DateOfBirth == "" {
		errs.Add("patient.dateOfBirth", "required")
	} else if _, err := x12.ParseISODate("patient.dateOfBirth", p.DateOfBirth); err != nil {
		*errs = append(*errs, err.(*x12.ValidationError))
	}

	memberID := deref(p.MemberID)
	if memberID == "" && (cfg.Requires(payer.FieldMemberID) || !cfg.AllowsNameOnly) {
		errs.Add("patient.memberId", "required by payer "+cfg.PayerID)
	}
	gender := deref(p.Gender)
	if gender != "" {
		if _, ok := normalizeGender(gender); !ok {
			errs.Add("patient.gender", "must be M, F or U")
		}
	} else if cfg.RequiresGenderInDMG || cfg.Requires(payer.FieldGender) {
		errs.Add("patient.gender", "required by payer "+cfg.PayerID)
	}
	if deref(p.GroupNumber) == "" && cfg.Requires(payer.FieldGroupNumber) {
		errs.Add("patient.groupNumber", "required by payer "+cfg.PayerID)
	}
}

// Eligibility270 builds a 270 eligibility inquiry for one subscriber
func (g *Generator) Eligibility270(p Patient, cfg payer.Config, prov Provider) (string, error) {
	var errs x12.ValidationErrors
	validatePatient(&errs, p, cfg)
	required(&errs, "payer.displayName", cfg.DisplayName)
	required(&errs, "payer.payerId", cfg.PayerID)
	required(&errs, "provider.name", prov.Name)
	if prov.NPI == "" {
		errs.Add("provider.npi", "required")
	} else if !validNPI(prov.NPI) {
		errs.Add("provider.npi", "must be 10 digits")
	}
	if err := errs.Err(); err != nil {
		return "", err
	}

	st := g.stamp()
	dob, _ := x12.ParseISODate("patient.dateOfBirth", p.DateOfBirth)
	today := x12.FormatD8(st.now)

	var hl hlChain
	source, hlSource := hl.level(0, "20", true)
	receiver, hlReceiver := hl.level(source, "21", true)
	_, hlSubscriber := hl.level(receiver, "22", false)

	body := []x12.Segment{
		x12.NewSegment("BHT", "0022", "13", st.control, today, st.now.Format(x12.LayoutTime)),
		hlSource,
		nm1("PR", "2", x12.CleanName(cfg.DisplayName), "", "PI", cfg.PayerID),
		hlReceiver,
		nm1("1P", "2", x12.CleanName(prov.Name), "", "XX", prov.NPI),
		hlSubscriber,
		x12.NewSegment("TRN", "1", st.control, g.originatorID()),
	}

	subscriber := nm1("IL", "1", x12.CleanName(p.LastName), x12.CleanName(p.FirstName), "", "")
	if id := deref(p.MemberID); id != "" && cfg.SupportsMemberIDInNM1 {
		subscriber = nm1("IL", "1", x12.CleanName(p.LastName), x12.CleanName(p.FirstName), "MI", x12.CleanText(id))
	}
	body = append(body, subscriber)

	if group := deref(p.GroupNumber); group != "" && cfg.Wants(payer.FieldGroupNumber) {
		body = append(body, x12.NewSegment("REF", "6P", x12.CleanText(group)))
	}

	dmg := x12.NewSegment("DMG", x12.DateQualifierD8, x12.FormatD8(dob))
	if cfg.RequiresGenderInDMG {
		gender, _ := normalizeGender(deref(p.Gender))
		dmg = append(dmg, gender)
	}
	body = append(body, dmg)

	if cfg.DTPFormat == payer.DTPRange {
		body = append(body, x12.NewSegment("DTP", "291", x12.DateQualifierRD8, x12.FormatRD8(st.now, st.now)))
	} else {
		body = append(body, x12.NewSegment("DTP", "291", x12.DateQualifierD8, today))
	}
	body = append(body, x12.NewSegment("EQ", ServiceTypeHealthBenefitPlan))

	return g.envelope(st, "270", x12.GuideEligibility, body)
}
