package parse

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/codes"
)

// ClaimStatusResponse is a decoded 277
type ClaimStatusResponse struct {
	Payer    *Party        `json:"payer,omitempty"`
	Receiver *Party        `json:"receiver,omitempty"`
	Provider *Party        `json:"provider,omitempty"`
	Claims   []ClaimStatus `json:"claims"`
	// Statuses holds STC segments reported at a level above any claim,
	// such as a rejected information receiver
	Statuses []StatusEntry `json:"statuses,omitempty"`
	// ReferencedTraces holds TRN*2 values seen while no claim was open
	ReferencedTraces []string `json:"referencedTraces,omitempty"`
}

// ClaimStatus is one claim tracked from TRN*1 to the next TRN*1, HL or SE
type ClaimStatus struct {
	TraceNumber     string `json:"traceNumber,omitempty"`
	ReferencedTrace string `json:"referencedTrace,omitempty"`
	// OtherTraces are further TRN*2 values inside the same claim
	OtherTraces  []string           `json:"otherTraces,omitempty"`
	Subscriber   *Party             `json:"subscriber,omitempty"`
	Patient      *Party             `json:"patient,omitempty"`
	Provider     *Party             `json:"provider,omitempty"`
	Statuses     []StatusEntry      `json:"statuses"`
	References   []Reference        `json:"references,omitempty"`
	Dates        []DateRef          `json:"dates,omitempty"`
	Amounts      []AmountRef        `json:"amounts,omitempty"`
	ServiceLines []StatusLine       `json:"serviceLines,omitempty"`
	Outcome      ClaimStatusOutcome `json:"outcome"`
}

// StatusEntry is one STC segment
type StatusEntry struct {
	Category         string           `json:"category"`
	CategoryLabel    string           `json:"categoryLabel"`
	Status           string           `json:"status,omitempty"`
	StatusLabel      string           `json:"statusLabel,omitempty"`
	Entity           string           `json:"entity,omitempty"`
	EntityLabel      string           `json:"entityLabel,omitempty"`
	EffectiveDate    string           `json:"effectiveDate,omitempty"`
	Action           string           `json:"action,omitempty"`
	ChargeAmount     *decimal.Decimal `json:"chargeAmount,omitempty"`
	PaymentAmount    *decimal.Decimal `json:"paymentAmount,omitempty"`
	AdjudicationDate string           `json:"adjudicationDate,omitempty"`
	CheckNumber      string           `json:"checkNumber,omitempty"`
	Additional       []StatusCode     `json:"additional,omitempty"`
	Raw              string           `json:"raw"`
}

// StatusCode is a category:status:entity triple from STC10 or STC11
type StatusCode struct {
	Category string `json:"category"`
	Status   string `json:"status,omitempty"`
	Entity   string `json:"entity,omitempty"`
}

// StatusLine is an SVC service line inside a 277 claim
type StatusLine struct {
	Procedure     string           `json:"procedure"`
	Modifiers     []string         `json:"modifiers,omitempty"`
	ChargeAmount  decimal.Decimal  `json:"chargeAmount"`
	PaymentAmount *decimal.Decimal `json:"paymentAmount,omitempty"`
	RevenueCode   string           `json:"revenueCode,omitempty"`
	Units         string           `json:"units,omitempty"`
	Statuses      []StatusEntry    `json:"statuses"`
	References    []Reference      `json:"references,omitempty"`
	Dates         []DateRef        `json:"dates,omitempty"`
}

// ClaimStatusOutcome condenses the statuses of a claim into one word
type ClaimStatusOutcome string

const (
	OutcomePaid         ClaimStatusOutcome = "paid"
	OutcomeDenied       ClaimStatusOutcome = "denied"
	OutcomePending      ClaimStatusOutcome = "pending"
	OutcomeAcknowledged ClaimStatusOutcome = "acknowledged"
	OutcomeRejected     ClaimStatusOutcome = "rejected"
	OutcomeReceived     ClaimStatusOutcome = "received"
	OutcomeUnknown      ClaimStatusOutcome = "unknown"
)

// outcomePrecedence is checked top to bottom; the first outcome with a matching
// category on any status entry wins
var outcomePrecedence = []struct {
	outcome    ClaimStatusOutcome
	categories []string
}{
	{OutcomePaid, []string{"F1"}},
	{OutcomeDenied, []string{"F2"}},
	{OutcomePending, []string{"P0", "P1", "P2", "P3", "P4", "P5"}},
	{OutcomeAcknowledged, []string{"A2"}},
	{OutcomeRejected, []string{"A6", "A3", "A7", "A8"}},
	{OutcomeReceived, []string{"A1"}},
}

// Summarize reduces a claim's status entries to a single outcome
func Summarize(c ClaimStatus) ClaimStatusOutcome {
	seen := make(map[string]bool, len(c.Statuses))
	for _, s := range c.Statuses {
		seen[s.Category] = true
	}
	for _, p := range outcomePrecedence {
		for _, cat := range p.categories {
			if seen[cat] {
				return p.outcome
			}
		}
	}
	return OutcomeUnknown
}

// notFoundCategories mean the payer could not locate the claim or the member
var notFoundCategories = map[string]bool{"A4": true, "D0": true}

// NotFound reports whether the payer returned no claim, or only statuses saying
// the claim or member could not be found
func (r *ClaimStatusResponse) NotFound() bool {
	if len(r.Claims) == 0 {
		return true
	}
	for _, c := range r.Claims {
		if len(c.Statuses) == 0 {
			return false
		}
		for _, s := range c.Statuses {
			if !notFoundCategories[s.Category] {
				return false
			}
		}
	}
	return true
}

func statusFrom(seg x12.Segment, raw string) StatusEntry {
	e := StatusEntry{
		Category:         seg.Component(1, 0),
		Status:           seg.Component(1, 1),
		Entity:           seg.Component(1, 2),
		EffectiveDate:    isoDate(seg.Element(2)),
		Action:           seg.Element(3),
		ChargeAmount:     optionalAmount(seg.Element(4)),
		PaymentAmount:    optionalAmount(seg.Element(5)),
		AdjudicationDate: isoDate(seg.Element(6)),
		CheckNumber:      seg.Element(9),
		Raw:              raw,
	}
	e.CategoryLabel = codes.ClaimStatusCategory.Label(e.Category)
	if e.Status != "" {
		e.StatusLabel = codes.ClaimStatus.Label(e.Status)
	}
	if e.Entity != "" {
		e.EntityLabel = codes.EntityIdentifier.Label(e.Entity)
	}
	for _, i := range []int{10, 11} {
		if !seg.Has(i) {
			continue
		}
		e.Additional = append(e.Additional, StatusCode{
			Category: seg.Component(i, 0),
			Status:   seg.Component(i, 1),
			Entity:   seg.Component(i, 2),
		})
	}
	return e
}

func statusLineFrom(seg x12.Segment) StatusLine {
	proc := seg.Components(1)
	l := StatusLine{
		ChargeAmount:  amountOrZero(seg.Element(2)),
		PaymentAmount: optionalAmount(seg.Element(3)),
		RevenueCode:   seg.Element(4),
		Units:         seg.Element(7),
		Statuses:      []StatusEntry{},
	}
	if len(proc) > 1 {
		l.Procedure = proc[1]
		l.Modifiers = proc[2:]
	} else if len(proc) == 1 {
		l.Procedure = proc[0]
	}
	return l
}

// Parse277 decodes a claim status response.
// NM1 segments are attributed by entity code; IL and QC are held until the
// next claim opens so each claim carries the member it was reported under.
func Parse277(raw string) (*ClaimStatusResponse, error) {
	segs, src, err := load(raw)
	if err != nil {
		return nil, err
	}

	res := &ClaimStatusResponse{Claims: []ClaimStatus{}}
	var (
		claim             *ClaimStatus
		line              *StatusLine
		subscriber        *Party
		patient           *Party
		subscriberPatient bool
		level             string
	)
	closeLine := func() {
		if line != nil {
			claim.ServiceLines = append(claim.ServiceLines, *line)
			line = nil
		}
	}
	closeClaim := func() {
		if claim == nil {
			return
		}
		closeLine()
		claim.Outcome = Summarize(*claim)
		res.Claims = append(res.Claims, *claim)
		claim = nil
	}
	openClaim := func() {
		closeClaim()
		claim = &ClaimStatus{
			Subscriber: subscriber,
			Patient:    patient,
			Provider:   res.Provider,
			Statuses:   []StatusEntry{},
		}
		if claim.Patient == nil && subscriberPatient {
			claim.Patient = subscriber
		}
	}

	for i, seg := range segs {
		switch seg.ID() {
		case "HL":
			closeClaim()
			level = seg.Element(3)
			switch level {
			case "22":
				subscriber, patient = nil, nil
				subscriberPatient = seg.Element(4) == "0"
			case "23":
				patient = nil
				subscriberPatient = false
			}
		case "NM1":
			p := partyFromNM1(seg)
			switch p.EntityCode {
			case "PR":
				res.Payer = p
			case "41":
				res.Receiver = p
			case "1P", "85":
				res.Provider = p
			case "IL":
				subscriber = p
			case "QC":
				patient = p
			}
		case "TRN":
			switch seg.Element(1) {
			case "1":
				openClaim()
				claim.TraceNumber = seg.Element(2)
			case "2":
				switch {
				case claim == nil:
					res.ReferencedTraces = append(res.ReferencedTraces, seg.Element(2))
				case claim.ReferencedTrace == "":
					claim.ReferencedTrace = seg.Element(2)
				default:
					claim.OtherTraces = append(claim.OtherTraces, seg.Element(2))
				}
			}
		case "STC":
			entry := statusFrom(seg, source(src, i, seg))
			switch {
			case line != nil:
				line.Statuses = append(line.Statuses, entry)
			case claim != nil:
				claim.Statuses = append(claim.Statuses, entry)
			default:
				res.Statuses = append(res.Statuses, entry)
			}
		case "SVC":
			if claim == nil {
				return nil, fmt.Errorf("%w: SVC outside a claim at HL level %q", ErrUnmatchedNesting, level)
			}
			closeLine()
			l := statusLineFrom(seg)
			line = &l
		case "REF":
			switch {
			case line != nil:
				line.References = append(line.References, referenceFrom(seg))
			case claim != nil:
				claim.References = append(claim.References, referenceFrom(seg))
			}
		case "DTP":
			switch {
			case line != nil:
				line.Dates = append(line.Dates, dateFromDTP(seg))
			case claim != nil:
				claim.Dates = append(claim.Dates, dateFromDTP(seg))
			}
		case "AMT":
			if claim != nil {
				claim.Amounts = append(claim.Amounts, amountFrom(seg))
			}
		case "SE":
			closeClaim()
		}
	}
	closeClaim()
	return res, nil
}
