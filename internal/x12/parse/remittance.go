package parse

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/codes"
)

// Remittance is a decoded 835
type Remittance struct {
	Payment             Payment              `json:"payment"`
	Payer               *Party               `json:"payer,omitempty"`
	PayerAddress        *Address             `json:"payerAddress,omitempty"`
	Payee               *Party               `json:"payee,omitempty"`
	PayeeAddress        *Address             `json:"payeeAddress,omitempty"`
	ProductionDate      string               `json:"productionDate,omitempty"`
	Claims              []RemittanceClaim    `json:"claims"`
	ProviderAdjustments []ProviderAdjustment `json:"providerAdjustments,omitempty"`
}

// Payment is the BPR financial information plus the TRN reassociation trace
type Payment struct {
	Handling      string          `json:"handling,omitempty"`
	HandlingLabel string          `json:"handlingLabel,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CreditDebit   string          `json:"creditDebit,omitempty"`
	Method        string          `json:"method,omitempty"`
	MethodLabel   string          `json:"methodLabel,omitempty"`
	EffectiveDate string          `json:"effectiveDate,omitempty"`
	// CheckNumber is the check or EFT trace number from TRN02
	CheckNumber        string `json:"checkNumber,omitempty"`
	OriginatingCompany string `json:"originatingCompany,omitempty"`
}

// RemittanceClaim is one CLP loop
type RemittanceClaim struct {
	ClaimID               string            `json:"claimId"`
	Status                string            `json:"status"`
	StatusLabel           string            `json:"statusLabel"`
	Charged               decimal.Decimal   `json:"charged"`
	Paid                  decimal.Decimal   `json:"paid"`
	PatientResponsibility decimal.Decimal   `json:"patientResponsibility"`
	FilingIndicator       string            `json:"filingIndicator,omitempty"`
	PayerClaimNumber      string            `json:"payerClaimNumber,omitempty"`
	Patient               *Party            `json:"patient,omitempty"`
	Adjustments           []AdjustmentGroup `json:"adjustments,omitempty"`
	Lines                 []RemittanceLine  `json:"lines,omitempty"`
	Dates                 []DateRef         `json:"dates,omitempty"`
	References            []Reference       `json:"references,omitempty"`
	Amounts               []AmountRef       `json:"amounts,omitempty"`
}

// RemittanceLine is one SVC service line
type RemittanceLine struct {
	LineNumber    string            `json:"lineNumber,omitempty"`
	Procedure     string            `json:"procedure,omitempty"`
	Modifiers     []string          `json:"modifiers,omitempty"`
	Charged       decimal.Decimal   `json:"charged"`
	Paid          decimal.Decimal   `json:"paid"`
	Units         string            `json:"units,omitempty"`
	Allowed       *decimal.Decimal  `json:"allowed,omitempty"`
	ServiceDate   string            `json:"serviceDate,omitempty"`
	ControlNumber string            `json:"controlNumber,omitempty"`
	Adjustments   []AdjustmentGroup `json:"adjustments,omitempty"`
	References    []Reference       `json:"references,omitempty"`
	Amounts       []AmountRef       `json:"amounts,omitempty"`
}

// AdjustmentGroup is one CAS segment; every reason/amount/quantity triple is kept
type AdjustmentGroup struct {
	Group       string       `json:"group"`
	GroupLabel  string       `json:"groupLabel"`
	Adjustments []Adjustment `json:"adjustments"`
}

// Adjustment is one reason/amount/quantity triple of a CAS segment
type Adjustment struct {
	Reason      string           `json:"reason"`
	ReasonLabel string           `json:"reasonLabel"`
	Amount      decimal.Decimal  `json:"amount"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
}

// Total sums the adjustment amounts of the group
func (g AdjustmentGroup) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range g.Adjustments {
		total = total.Add(a.Amount)
	}
	return total
}

// ProviderAdjustment is one PLB reason/amount pair
type ProviderAdjustment struct {
	ProviderID  string          `json:"providerId"`
	FiscalDate  string          `json:"fiscalDate,omitempty"`
	Reason      string          `json:"reason"`
	ReasonLabel string          `json:"reasonLabel"`
	Reference   string          `json:"reference,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// adjustmentFrom reads CAS triples at positions 2,3,4 then 5,6,7 and so on
func adjustmentFrom(seg x12.Segment) AdjustmentGroup {
	g := AdjustmentGroup{
		Group:       seg.Element(1),
		GroupLabel:  codes.AdjustmentGroup.Label(seg.Element(1)),
		Adjustments: []Adjustment{},
	}
	for i := 2; i < len(seg); i += 3 {
		reason := seg.Element(i)
		if reason == "" {
			continue
		}
		g.Adjustments = append(g.Adjustments, Adjustment{
			Reason:      reason,
			ReasonLabel: codes.AdjustmentReason.Label(reason),
			Amount:      amountOrZero(seg.Element(i + 1)),
			Quantity:    optionalAmount(seg.Element(i + 2)),
		})
	}
	return g
}

// providerAdjustmentsFrom reads PLB reason composites and amounts in pairs from PLB03
func providerAdjustmentsFrom(seg x12.Segment) []ProviderAdjustment {
	var out []ProviderAdjustment
	for i := 3; i < len(seg); i += 2 {
		if !seg.Has(i) {
			continue
		}
		reason := seg.Component(i, 0)
		out = append(out, ProviderAdjustment{
			ProviderID:  seg.Element(1),
			FiscalDate:  isoDate(seg.Element(2)),
			Reason:      reason,
			ReasonLabel: codes.ProviderAdjustmentReason.Label(reason),
			Reference:   seg.Component(i, 1),
			Amount:      amountOrZero(seg.Element(i + 1)),
		})
	}
	return out
}

func remittanceLineFrom(seg x12.Segment, number string) RemittanceLine {
	proc := seg.Components(1)
	l := RemittanceLine{
		LineNumber: number,
		Charged:    amountOrZero(seg.Element(2)),
		Paid:       amountOrZero(seg.Element(3)),
		Units:      seg.Element(5),
	}
	if len(proc) > 1 {
		l.Procedure = proc[1]
		l.Modifiers = proc[2:]
	} else if len(proc) == 1 {
		l.Procedure = proc[0]
	}
	return l
}

// Parse835 decodes a remittance advice.
// CLP opens a claim. Inside a claim an LX opens a line that the next SVC fills
// and an SVC with no pending LX opens a new line. CAS attaches to the open line,
// else the claim. SVC or CAS outside a claim is a structural error.
func Parse835(raw string) (*Remittance, error) {
	segs, _, err := load(raw)
	if err != nil {
		return nil, err
	}

	res := &Remittance{Claims: []RemittanceClaim{}}
	var (
		claim *RemittanceClaim
		line  *RemittanceLine
		// pendingLX is set when an LX inside a claim has not yet been filled by an SVC
		pendingLX bool
		party     string
	)
	closeLine := func() {
		if line != nil && !(pendingLX && line.Procedure == "") {
			claim.Lines = append(claim.Lines, *line)
		}
		line = nil
		pendingLX = false
	}
	closeClaim := func() {
		if claim == nil {
			return
		}
		closeLine()
		res.Claims = append(res.Claims, *claim)
		claim = nil
	}

	for _, seg := range segs {
		switch seg.ID() {
		case "BPR":
			res.Payment.Handling = seg.Element(1)
			res.Payment.HandlingLabel = codes.TransactionHandling.Label(seg.Element(1))
			res.Payment.Amount = amountOrZero(seg.Element(2))
			res.Payment.CreditDebit = seg.Element(3)
			res.Payment.Method = seg.Element(4)
			if seg.Has(4) {
				res.Payment.MethodLabel = codes.PaymentMethod.Label(seg.Element(4))
			}
			res.Payment.EffectiveDate = isoDate(seg.Element(16))
		case "TRN":
			if seg.Element(1) == "1" && res.Payment.CheckNumber == "" {
				res.Payment.CheckNumber = seg.Element(2)
				res.Payment.OriginatingCompany = seg.Element(3)
			}
		case "N1":
			party = seg.Element(1)
			switch party {
			case "PR":
				res.Payer = partyFromN1(seg)
			case "PE":
				res.Payee = partyFromN1(seg)
			}
		case "N3", "N4":
			switch party {
			case "PR":
				applyAddress(&res.PayerAddress, seg)
			case "PE":
				applyAddress(&res.PayeeAddress, seg)
			}
		case "DTM":
			switch {
			case line != nil && seg.Element(1) == "472":
				line.ServiceDate = isoDate(seg.Element(2))
			case claim != nil:
				claim.Dates = append(claim.Dates, dateFromDTM(seg))
			case seg.Element(1) == "405":
				res.ProductionDate = isoDate(seg.Element(2))
			}
		case "LX":
			// outside a claim LX is a header number
			if claim == nil {
				continue
			}
			closeLine()
			line = &RemittanceLine{LineNumber: seg.Element(1)}
			pendingLX = true
		case "CLP":
			closeClaim()
			party = ""
			claim = &RemittanceClaim{
				ClaimID:               seg.Element(1),
				Status:                seg.Element(2),
				StatusLabel:           codes.RemittanceClaimStatus.Label(seg.Element(2)),
				Charged:               amountOrZero(seg.Element(3)),
				Paid:                  amountOrZero(seg.Element(4)),
				PatientResponsibility: amountOrZero(seg.Element(5)),
				FilingIndicator:       seg.Element(6),
				PayerClaimNumber:      seg.Element(7),
			}
		case "NM1":
			if claim != nil && seg.Element(1) == "QC" {
				claim.Patient = partyFromNM1(seg)
			}
		case "SVC":
			if claim == nil {
				return nil, fmt.Errorf("%w: SVC outside a claim", ErrUnmatchedNesting)
			}
			if pendingLX && line != nil && line.Procedure == "" {
				filled := remittanceLineFrom(seg, line.LineNumber)
				line = &filled
				pendingLX = false
				continue
			}
			closeLine()
			l := remittanceLineFrom(seg, "")
			line = &l
		case "CAS":
			if claim == nil {
				return nil, fmt.Errorf("%w: CAS outside a claim", ErrUnmatchedNesting)
			}
			adj := adjustmentFrom(seg)
			if line != nil && !pendingLX {
				line.Adjustments = append(line.Adjustments, adj)
			} else {
				claim.Adjustments = append(claim.Adjustments, adj)
			}
		case "REF":
			switch {
			case line != nil && !pendingLX:
				ref := referenceFrom(seg)
				if ref.Qualifier == "6R" {
					line.ControlNumber = ref.Value
				}
				line.References = append(line.References, ref)
			case claim != nil:
				claim.References = append(claim.References, referenceFrom(seg))
			}
		case "AMT":
			amt := amountFrom(seg)
			switch {
			case line != nil && !pendingLX:
				if amt.Qualifier == "B6" {
					allowed := amt.Amount
					line.Allowed = &allowed
				}
				line.Amounts = append(line.Amounts, amt)
			case claim != nil:
				claim.Amounts = append(claim.Amounts, amt)
			}
		case "PLB":
			closeClaim()
			res.ProviderAdjustments = append(res.ProviderAdjustments, providerAdjustmentsFrom(seg)...)
		case "SE":
			closeClaim()
		}
	}
	closeClaim()
	return res, nil
}
