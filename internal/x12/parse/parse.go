// Package parse decodes inbound 271, 277, 835 and 999 transactions into typed results.
//
// Parsers are tolerant: unknown segments are skipped and unrecognized codes are
// passed through with an "Unknown code: " label. They fail only on structural
// problems such as envelope control number mismatches or unmatched nesting.
package parse

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/codes"
)

// ErrUnmatchedNesting reports a segment that needs an enclosing loop that is not open
var ErrUnmatchedNesting = errors.New("parse: unmatched nesting")

// TransactionType identifies an inbound document
type TransactionType string

const (
	Type270     TransactionType = "270"
	Type271     TransactionType = "271"
	Type276     TransactionType = "276"
	Type277     TransactionType = "277"
	Type835     TransactionType = "835"
	Type837     TransactionType = "837"
	Type999     TransactionType = "999"
	TypeTA1     TransactionType = "TA1"
	TypeUnknown TransactionType = "unknown"
)

// fingerprints classify documents that arrive without an ST header
var fingerprints = []struct {
	segment string
	typ     TransactionType
}{
	{"EB", Type271},
	{"STC", Type277},
	{"CLP", Type835},
	{"BPR", Type835},
	{"IK5", Type999},
	{"AK9", Type999},
	{"IK3", Type999},
	{"AK5", Type999},
	{"CLM", Type837},
	{"EQ", Type270},
}

// Detect classifies raw X12 text from ST01, falling back to segment fingerprints
func Detect(raw string) TransactionType {
	segs := x12.ParseSegments(raw)
	seen := make(map[string]bool, len(segs))
	for _, s := range segs {
		if s.ID() == "ST" {
			switch t := TransactionType(s.Element(1)); t {
			case Type270, Type271, Type276, Type277, Type835, Type837, Type999:
				return t
			}
		}
		seen[s.ID()] = true
	}
	for _, f := range fingerprints {
		if seen[f.segment] {
			return f.typ
		}
	}
	if seen["TA1"] {
		return TypeTA1
	}
	return TypeUnknown
}

// load splits raw text into segments, validating the envelope when one is
// present. src holds the untouched text of each segment for Raw fields.
func load(raw string) (segs []x12.Segment, src []string, err error) {
	segs = x12.ParseSegments(raw)
	if len(segs) > 0 && segs[0].ID() == "ISA" {
		if _, err := x12.ParseInterchange(raw); err != nil {
			return nil, nil, err
		}
	}
	return segs, x12.SegmentSources(raw), nil
}

// source returns the original text of segment i, or the rebuilt segment when
// no source is available
func source(src []string, i int, seg x12.Segment) string {
	if i < len(src) {
		return src[i]
	}
	return seg.String()
}

// Party is a name and identifier taken from an NM1 or N1 segment
type Party struct {
	EntityCode  string `json:"entityCode"`
	EntityLabel string `json:"entityLabel"`
	EntityType  string `json:"entityType,omitempty"`
	LastName    string `json:"lastName"` // organization name for non-person entities
	FirstName   string `json:"firstName,omitempty"`
	MiddleName  string `json:"middleName,omitempty"`
	IDQualifier string `json:"idQualifier,omitempty"`
	ID          string `json:"id,omitempty"`
}

// Name renders the party as "FIRST LAST" or the organization name
func (p Party) Name() string {
	return strings.Join(strings.Fields(p.FirstName+" "+p.MiddleName+" "+p.LastName), " ")
}

func partyFromNM1(seg x12.Segment) *Party {
	return &Party{
		EntityCode:  seg.Element(1),
		EntityLabel: codes.EntityIdentifier.Label(seg.Element(1)),
		EntityType:  seg.Element(2),
		LastName:    seg.Element(3),
		FirstName:   seg.Element(4),
		MiddleName:  seg.Element(5),
		IDQualifier: seg.Element(8),
		ID:          seg.Element(9),
	}
}

func partyFromN1(seg x12.Segment) *Party {
	return &Party{
		EntityCode:  seg.Element(1),
		EntityLabel: codes.EntityIdentifier.Label(seg.Element(1)),
		LastName:    seg.Element(2),
		IDQualifier: seg.Element(3),
		ID:          seg.Element(4),
	}
}

// Address is taken from N3/N4
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}

func applyAddress(addr **Address, seg x12.Segment) {
	if *addr == nil {
		*addr = &Address{}
	}
	a := *addr
	switch seg.ID() {
	case "N3":
		a.Line1, a.Line2 = seg.Element(1), seg.Element(2)
	case "N4":
		a.City, a.State, a.Zip = seg.Element(1), seg.Element(2), seg.Element(3)
	}
}

// Reference is a REF annotation
type Reference struct {
	Qualifier string `json:"qualifier"`
	Label     string `json:"label"`
	Value     string `json:"value"`
}

func referenceFrom(seg x12.Segment) Reference {
	return Reference{
		Qualifier: seg.Element(1),
		Label:     codes.ReferenceQualifier.Label(seg.Element(1)),
		Value:     seg.Element(2),
	}
}

// DateRef is a DTP or DTM annotation. Value keeps the wire text; D8 and RD8
// values are also split into From and To.
type DateRef struct {
	Qualifier string `json:"qualifier"`
	Label     string `json:"label"`
	Format    string `json:"format,omitempty"`
	Value     string `json:"value"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

func dateFromDTP(seg x12.Segment) DateRef {
	d := DateRef{
		Qualifier: seg.Element(1),
		Label:     codes.DateQualifier.Label(seg.Element(1)),
		Format:    seg.Element(2),
		Value:     seg.Element(3),
	}
	d.From, d.To = splitDateValue(d.Format, d.Value)
	return d
}

func dateFromDTM(seg x12.Segment) DateRef {
	return DateRef{
		Qualifier: seg.Element(1),
		Label:     codes.DateQualifier.Label(seg.Element(1)),
		Format:    x12.DateQualifierD8,
		Value:     seg.Element(2),
		From:      isoDate(seg.Element(2)),
	}
}

func splitDateValue(format, value string) (string, string) {
	switch format {
	case x12.DateQualifierD8:
		return isoDate(value), ""
	case x12.DateQualifierRD8:
		from, to, ok := strings.Cut(value, "-")
		if !ok {
			return "", ""
		}
		return isoDate(from), isoDate(to)
	}
	return "", ""
}

// isoDate converts CCYYMMDD to YYYY-MM-DD, or "" when it is not a date
func isoDate(d8 string) string {
	t, ok := x12.ParseD8(d8)
	if !ok {
		return ""
	}
	return t.Format(x12.LayoutISODate)
}

// AmountRef is an AMT annotation
type AmountRef struct {
	Qualifier string          `json:"qualifier"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
}

func amountFrom(seg x12.Segment) AmountRef {
	amt, _ := x12.ParseAmount(seg.Element(2))
	return AmountRef{
		Qualifier: seg.Element(1),
		Label:     codes.AmountQualifier.Label(seg.Element(1)),
		Amount:    amt,
	}
}

func optionalAmount(value string) *decimal.Decimal {
	d, ok := x12.ParseAmount(value)
	if !ok {
		return nil
	}
	return &d
}

func amountOrZero(value string) decimal.Decimal {
	d, _ := x12.ParseAmount(value)
	return d
}

// Rejection is an AAA request validation segment
type Rejection struct {
	Valid          string `json:"valid"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	FollowUp       string `json:"followUp,omitempty"`
	FollowUpAction string `json:"followUpAction,omitempty"`
	Raw            string `json:"raw"`
}

func rejectionFrom(seg x12.Segment, raw string) Rejection {
	r := Rejection{
		Valid:       seg.Element(1),
		Code:        seg.Element(3),
		Description: codes.RejectReason.Label(seg.Element(3)),
		FollowUp:    seg.Element(4),
		Raw:         raw,
	}
	if r.FollowUp != "" {
		r.FollowUpAction = codes.FollowUpAction.Label(r.FollowUp)
	}
	return r
}
