package parse

import (
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/codes"
)

// AckKind is the level an acknowledgment entry reports on
type AckKind string

const (
	AckSegment        AckKind = "segment"
	AckElement        AckKind = "element"
	AckTransactionSet AckKind = "transaction_set"
	AckGroup          AckKind = "group"
	AckApplication    AckKind = "application"
	AckInterchange    AckKind = "interchange"
)

// AckEntry is one diagnostic from a 999 (or a TA1).
// Entries are additive; the parser never interprets them beyond decoding codes.
type AckEntry struct {
	Kind      AckKind `json:"kind"`
	SegmentID string  `json:"segmentId,omitempty"`
	Position  string  `json:"position,omitempty"`
	LoopID    string  `json:"loopId,omitempty"`
	// ElementRef is IK401 (element position, optionally :component) for element entries
	ElementRef       string   `json:"elementRef,omitempty"`
	DataElement      string   `json:"dataElement,omitempty"`
	Code             string   `json:"code"`
	Description      string   `json:"description"`
	BadValue         string   `json:"badValue,omitempty"`
	SetControlNumber string   `json:"setControlNumber,omitempty"`
	SetCode          string   `json:"setCode,omitempty"`
	Details          []string `json:"details,omitempty"`
	Raw              string   `json:"raw"`
}

// rejectionCodes are IK5/AK5/AK9/TA1 codes that mean the payer did not accept the submission
var rejectionCodes = map[string]bool{"R": true, "M": true, "W": true, "X": true, "P": true}

// Rejected reports whether any acknowledgment rejects the submission in whole
// or in part, or any AAA validation entry is present
func Rejected(entries []AckEntry) bool {
	for _, e := range entries {
		switch e.Kind {
		case AckTransactionSet, AckGroup, AckInterchange:
			if rejectionCodes[e.Code] {
				return true
			}
		case AckApplication:
			return true
		}
	}
	return false
}

// Parse999 decodes every acknowledgment segment of a 999 (or a bare TA1) into entries
func Parse999(raw string) ([]AckEntry, error) {
	segs, src, err := load(raw)
	if err != nil {
		return nil, err
	}

	entries := []AckEntry{}
	var setCode, setControl string
	for i, seg := range segs {
		e := AckEntry{Raw: source(src, i, seg), SetCode: setCode, SetControlNumber: setControl}
		switch seg.ID() {
		case "AK2":
			setCode, setControl = seg.Element(1), seg.Element(2)
			continue
		case "IK3", "AK3":
			e.Kind = AckSegment
			e.SegmentID = seg.Element(1)
			e.Position = seg.Element(2)
			e.LoopID = seg.Element(3)
			e.Code = seg.Element(4)
			e.Description = codes.SegmentSyntaxError.Label(e.Code)
		case "IK4", "AK4":
			e.Kind = AckElement
			e.ElementRef = seg.Element(1)
			e.DataElement = seg.Element(2)
			e.Code = seg.Element(3)
			e.Description = codes.ElementSyntaxError.Label(e.Code)
			e.BadValue = seg.Element(4)
		case "IK5", "AK5":
			e.Kind = AckTransactionSet
			e.Code = seg.Element(1)
			e.Description = codes.TransactionSetAck.Label(e.Code)
			e.Details = labels(seg, 2, 6, codes.TransactionSetSyntaxError)
			setCode, setControl = "", ""
		case "AK9":
			e.Kind = AckGroup
			e.SetCode, e.SetControlNumber = "", ""
			e.Code = seg.Element(1)
			e.Description = codes.TransactionSetAck.Label(e.Code)
			e.Details = labels(seg, 5, 9, codes.FunctionalGroupSyntaxError)
		case "AAA":
			r := rejectionFrom(seg, e.Raw)
			e.Kind = AckApplication
			e.Code = r.Code
			e.Description = r.Description
			if r.FollowUp != "" {
				e.Details = []string{r.FollowUpAction}
			}
		case "TA1":
			e.Kind = AckInterchange
			e.SetCode, e.SetControlNumber = "", seg.Element(1)
			e.Code = seg.Element(4)
			e.Description = codes.InterchangeAck.Label(e.Code)
			if seg.Has(5) {
				e.Details = []string{codes.InterchangeNote.Label(seg.Element(5))}
			}
		default:
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// labels decodes elements from..to (inclusive) that are present
func labels(seg x12.Segment, from, to int, table *codes.Table) []string {
	var out []string
	for i := from; i <= to; i++ {
		if seg.Has(i) {
			out = append(out, table.Label(seg.Element(i)))
		}
	}
	return out
}
