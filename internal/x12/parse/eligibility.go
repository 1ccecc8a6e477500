package parse

import (
	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/codes"
)

// Reasons reported when a 271 carries no EB segment
const (
	ReasonNoBenefits     = "no eligibility benefit information returned"
	reasonRejectedPrefix = "rejected: "
)

// Eligibility is a decoded 271 response
type Eligibility struct {
	// Enrolled is true iff at least one EB segment was returned
	Enrolled    bool                   `json:"enrolled"`
	Reason      string                 `json:"reason,omitempty"`
	TraceNumber string                 `json:"traceNumber,omitempty"`
	Payer       *Party                 `json:"payer,omitempty"`
	Receiver    *Party                 `json:"receiver,omitempty"`
	Subscriber  *Subscriber            `json:"subscriber,omitempty"`
	Dependent   *Subscriber            `json:"dependent,omitempty"`
	Benefits    []Benefit              `json:"benefits"`
	Messages    []string               `json:"messages"`
	Rejections  []Rejection            `json:"rejections,omitempty"`
	COB         CoordinationOfBenefits `json:"coordinationOfBenefits"`
}

// Subscriber is the member a 271 describes
type Subscriber struct {
	Party
	DateOfBirth string      `json:"dateOfBirth,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	References  []Reference `json:"references,omitempty"`
	Dates       []DateRef   `json:"dates,omitempty"`
}

// Benefit is one EB segment with the DTP and MSG segments that follow it.
// Benefits are never modified after the parse pass emits them.
type Benefit struct {
	Code                  string           `json:"code"`
	Label                 string           `json:"label"`
	CoverageLevel         string           `json:"coverageLevel,omitempty"`
	ServiceTypes          []string         `json:"serviceTypes"`
	InsuranceType         string           `json:"insuranceType,omitempty"`
	PlanDescription       string           `json:"planDescription,omitempty"`
	TimePeriod            string           `json:"timePeriod,omitempty"`
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	Percent               *decimal.Decimal `json:"percent,omitempty"`
	QuantityQualifier     string           `json:"quantityQualifier,omitempty"`
	Quantity              *decimal.Decimal `json:"quantity,omitempty"`
	AuthorizationRequired string           `json:"authorizationRequired,omitempty"`
	InNetwork             *bool            `json:"inNetwork,omitempty"`
	Dates                 []DateRef        `json:"dates,omitempty"`
	Messages              []string         `json:"messages,omitempty"`
	Raw                   string           `json:"raw"`
}

func benefitFrom(seg x12.Segment, raw string) Benefit {
	b := Benefit{
		Code:                  seg.Element(1),
		Label:                 codes.EligibilityInfo.Label(seg.Element(1)),
		CoverageLevel:         seg.Element(2),
		ServiceTypes:          seg.Composite(3),
		InsuranceType:         seg.Element(4),
		PlanDescription:       seg.Element(5),
		TimePeriod:            seg.Element(6),
		Amount:                optionalAmount(seg.Element(7)),
		Percent:               optionalAmount(seg.Element(8)),
		QuantityQualifier:     seg.Element(9),
		Quantity:              optionalAmount(seg.Element(10)),
		AuthorizationRequired: seg.Element(11),
		Raw:                   raw,
	}
	if b.ServiceTypes == nil {
		b.ServiceTypes = []string{}
	}
	switch seg.Element(12) {
	case "Y":
		in := true
		b.InNetwork = &in
	case "N":
		out := false
		b.InNetwork = &out
	}
	return b
}

// Parse271 decodes an eligibility response in one linear pass.
// The pass is either scanning or accumulating the benefit opened by the last EB;
// any segment that cannot belong to a benefit emits it and returns to scanning.
func Parse271(raw string) (*Eligibility, error) {
	segs, src, err := load(raw)
	if err != nil {
		return nil, err
	}

	res := &Eligibility{Benefits: []Benefit{}, Messages: []string{}}
	var (
		current *Benefit
		person  *Subscriber
		inOther bool
	)
	emit := func() {
		if current != nil {
			res.Benefits = append(res.Benefits, *current)
			current = nil
		}
	}

	for i, seg := range segs {
		if inOther {
			// 2120 loop contents belong to the other payer, see ParseCoordinationOfBenefits
			if seg.Is("LE", "2120") {
				inOther = false
			}
			continue
		}
		switch seg.ID() {
		case "EB":
			emit()
			b := benefitFrom(seg, source(src, i, seg))
			current = &b
		case "MSG":
			text := seg.Element(1)
			res.Messages = append(res.Messages, text)
			if current != nil {
				current.Messages = append(current.Messages, text)
			}
		case "DTP":
			switch {
			case current != nil:
				current.Dates = append(current.Dates, dateFromDTP(seg))
			case person != nil:
				person.Dates = append(person.Dates, dateFromDTP(seg))
			}
		case "III", "HSD", "REF":
			if current == nil && seg.ID() == "REF" && person != nil {
				person.References = append(person.References, referenceFrom(seg))
			}
		case "LS":
			if seg.Element(1) == "2120" {
				inOther = true
			}
		case "LE":
		case "AAA":
			emit()
			res.Rejections = append(res.Rejections, rejectionFrom(seg, source(src, i, seg)))
		case "TRN":
			emit()
			if res.TraceNumber == "" {
				res.TraceNumber = seg.Element(2)
			}
		case "NM1":
			emit()
			person = nil
			switch p := partyFromNM1(seg); p.EntityCode {
			case "PR":
				res.Payer = p
			case "1P", "FA", "80", "GP":
				res.Receiver = p
			case "IL":
				res.Subscriber = &Subscriber{Party: *p}
				person = res.Subscriber
			case "03":
				res.Dependent = &Subscriber{Party: *p}
				person = res.Dependent
			}
		case "N3", "N4":
			if person != nil {
				applyAddress(&person.Address, seg)
			}
		case "DMG":
			if person != nil {
				person.DateOfBirth = isoDate(seg.Element(2))
				person.Gender = seg.Element(3)
			}
		default:
			emit()
		}
	}
	emit()

	res.COB = coordinationOfBenefits(segs, src)
	res.Enrolled = len(res.Benefits) > 0
	if !res.Enrolled {
		if len(res.Rejections) > 0 {
			res.Reason = reasonRejectedPrefix + res.Rejections[0].Description
		} else {
			res.Reason = ReasonNoBenefits
		}
	}
	return res, nil
}

// BenefitFact is one benefit amount attributed to a single service type
type BenefitFact struct {
	ServiceType      string           `json:"serviceType"`
	ServiceTypeLabel string           `json:"serviceTypeLabel"`
	CoverageLevel    string           `json:"coverageLevel,omitempty"`
	TimePeriod       string           `json:"timePeriod,omitempty"`
	InNetwork        *bool            `json:"inNetwork,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Percent          *decimal.Decimal `json:"percent,omitempty"`
	PlanDescription  string           `json:"planDescription,omitempty"`
}

// facts expands benefits matching keep into one fact per listed service type
func (e *Eligibility) facts(keep func(Benefit) bool) []BenefitFact {
	out := []BenefitFact{}
	for _, b := range e.Benefits {
		if !keep(b) {
			continue
		}
		types := b.ServiceTypes
		if len(types) == 0 {
			types = []string{""}
		}
		for _, st := range types {
			label := ""
			if st != "" {
				label = codes.ServiceType.Label(st)
			}
			out = append(out, BenefitFact{
				ServiceType:      st,
				ServiceTypeLabel: label,
				CoverageLevel:    b.CoverageLevel,
				TimePeriod:       b.TimePeriod,
				InNetwork:        b.InNetwork,
				Amount:           b.Amount,
				Percent:          b.Percent,
				PlanDescription:  b.PlanDescription,
			})
		}
	}
	return out
}

// Copays lists code A benefits carrying a positive amount, per service type
func (e *Eligibility) Copays() []BenefitFact {
	return e.facts(func(b Benefit) bool {
		return b.Code == "A" && b.Amount != nil && b.Amount.IsPositive()
	})
}

// Deductibles lists code C benefits carrying an amount, per service type
func (e *Eligibility) Deductibles() []BenefitFact {
	return e.facts(func(b Benefit) bool {
		return b.Code == "C" && b.Amount != nil
	})
}

// OutOfPocket lists code G benefits carrying an amount, per service type
func (e *Eligibility) OutOfPocket() []BenefitFact {
	return e.facts(func(b Benefit) bool {
		return b.Code == "G" && b.Amount != nil
	})
}

// Coinsurance lists code B benefits carrying a percentage, per service type
func (e *Eligibility) Coinsurance() []BenefitFact {
	return e.facts(func(b Benefit) bool {
		return b.Code == "B" && b.Percent != nil
	})
}

// ActivePlans returns every distinct plan description on an EB*1 segment, in
// response order. No single plan is picked as the winner.
func (e *Eligibility) ActivePlans() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, b := range e.Benefits {
		if b.Code != "1" || b.PlanDescription == "" || seen[b.PlanDescription] {
			continue
		}
		seen[b.PlanDescription] = true
		out = append(out, b.PlanDescription)
	}
	return out
}

// HasActiveCoverage reports whether any benefit denotes active coverage
func (e *Eligibility) HasActiveCoverage() bool {
	for _, b := range e.Benefits {
		if codes.IsActiveCoverage(b.Code) {
			return true
		}
	}
	return false
}

// Summary condenses the derived facts for callers that do not need every benefit
type Summary struct {
	Enrolled               bool          `json:"enrolled"`
	ActiveCoverage         bool          `json:"activeCoverage"`
	ActivePlans            []string      `json:"activePlans"`
	Copays                 []BenefitFact `json:"copays"`
	Deductibles            []BenefitFact `json:"deductibles"`
	OutOfPocket            []BenefitFact `json:"outOfPocket"`
	Coinsurance            []BenefitFact `json:"coinsurance"`
	RequiresPrimaryBilling bool          `json:"requiresPrimaryBilling"`
}

// Summarize derives the summary view
func (e *Eligibility) Summarize() Summary {
	return Summary{
		Enrolled:               e.Enrolled,
		ActiveCoverage:         e.HasActiveCoverage(),
		ActivePlans:            e.ActivePlans(),
		Copays:                 e.Copays(),
		Deductibles:            e.Deductibles(),
		OutOfPocket:            e.OutOfPocket(),
		Coinsurance:            e.Coinsurance(),
		RequiresPrimaryBilling: e.COB.RequiresPrimaryBilling,
	}
}
