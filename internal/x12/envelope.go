package x12

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Usage indicators for ISA15
const (
	UsageProduction = "P"
	UsageTest       = "T"
)

// functionalIDs maps a transaction set code to its GS01 functional identifier code
var functionalIDs = map[string]string{
	"270": "HS",
	"271": "HB",
	"276": "HR",
	"277": "HN",
	"835": "HP",
	"837": "HC",
	"999": "FA",
}

// FunctionalID returns the GS01 code for a transaction set, or "" when unknown
func FunctionalID(setCode string) string {
	return functionalIDs[setCode]
}

// InterchangeHeader carries the caller-supplied fields of ISA and GS
type InterchangeHeader struct {
	SenderQualifier   string
	SenderID          string
	ReceiverQualifier string
	ReceiverID        string
	// ControlNumber is ISA13/IEA02; up to 9 digits, zero padded on output
	ControlNumber string
	// GroupControlNumber is GS06/GE02; defaults to ControlNumber without leading zeros
	GroupControlNumber string
	// ApplicationSenderCode and ApplicationReceiverCode fill GS02/GS03; default to the ISA ids
	ApplicationSenderCode   string
	ApplicationReceiverCode string
	UsageIndicator          string
	// Timestamp is rendered on the local wall clock, never UTC
	Timestamp time.Time
}

// TransactionSet is one ST..SE body ready to be enveloped
type TransactionSet struct {
	Code          string
	ControlNumber string
	Version       string
	Body          []Segment
}

// Segments returns ST, the body and an SE whose count is computed from the emitted list
func (ts TransactionSet) Segments() []Segment {
	segs := make([]Segment, 0, len(ts.Body)+2)
	segs = append(segs, NewSegment("ST", ts.Code, ts.ControlNumber, ts.Version))
	start := len(segs) - 1
	segs = append(segs, ts.Body...)
	segs = append(segs, nil)
	end := len(segs) - 1
	segs[end] = NewSegment("SE", strconv.Itoa(end-start+1), ts.ControlNumber)
	return segs
}

// BuildInterchange wraps transaction sets in ISA/GS ... GE/IEA.
// All sets go into one functional group and must share a functional identifier.
func BuildInterchange(h InterchangeHeader, sets ...TransactionSet) (string, error) {
	var errs ValidationErrors
	if strings.TrimSpace(h.SenderID) == "" {
		errs.Add("senderId", "required")
	} else if len(h.SenderID) > 15 {
		errs.Add("senderId", "exceeds 15 characters")
	}
	if strings.TrimSpace(h.ReceiverID) == "" {
		errs.Add("receiverId", "required")
	} else if len(h.ReceiverID) > 15 {
		errs.Add("receiverId", "exceeds 15 characters")
	}
	control, err := NormalizeControlNumber(h.ControlNumber, 9)
	if err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	usage := h.UsageIndicator
	if usage == "" {
		usage = UsageProduction
	}
	if usage != UsageProduction && usage != UsageTest {
		errs.Add("usageIndicator", "must be P or T")
	}
	if len(sets) == 0 {
		errs.Add("transactionSets", "at least one transaction set is required")
	}
	var fid, version string
	for i, ts := range sets {
		id := FunctionalID(ts.Code)
		if id == "" {
			errs.Add(fmt.Sprintf("transactionSets[%d].code", i), "unsupported transaction set "+ts.Code)
			continue
		}
		if fid == "" {
			fid, version = id, ts.Version
		} else if id != fid {
			errs.Add(fmt.Sprintf("transactionSets[%d].code", i), "mixes functional groups")
		}
	}
	if err := errs.Err(); err != nil {
		return "", err
	}

	group := h.GroupControlNumber
	if group == "" {
		group = strings.TrimLeft(control, "0")
		if group == "" {
			group = "1"
		}
	}
	gsSender := firstNonEmpty(h.ApplicationSenderCode, h.SenderID)
	gsReceiver := firstNonEmpty(h.ApplicationReceiverCode, h.ReceiverID)

	ts := h.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.Local()

	segs := []Segment{
		NewSegment("ISA",
			"00", strings.Repeat(" ", 10),
			"00", strings.Repeat(" ", 10),
			firstNonEmpty(h.SenderQualifier, "ZZ"), PadRight(h.SenderID, 15),
			firstNonEmpty(h.ReceiverQualifier, "ZZ"), PadRight(h.ReceiverID, 15),
			ts.Format(LayoutISADate), ts.Format(LayoutTime),
			CompositeSeparator, ControlVersion, control, "0", usage, ComponentSeparator,
		),
		NewSegment("GS", fid, gsSender, gsReceiver, ts.Format(LayoutD8), ts.Format(LayoutTime), group, "X", version),
	}
	for _, set := range sets {
		segs = append(segs, set.Segments()...)
	}
	segs = append(segs,
		NewSegment("GE", strconv.Itoa(len(sets)), group),
		NewSegment("IEA", "1", control),
	)
	return Render(segs), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Interchange is a parsed ISA..IEA envelope
type Interchange struct {
	SenderQualifier   string
	SenderID          string
	ReceiverQualifier string
	ReceiverID        string
	Date              string
	Time              string
	Version           string
	ControlNumber     string
	AckRequested      string
	UsageIndicator    string
	Delimiters        Delimiters
	Groups            []FunctionalGroup
}

// FunctionalGroup is a parsed GS..GE group
type FunctionalGroup struct {
	FunctionalID  string
	SenderCode    string
	ReceiverCode  string
	Date          string
	Time          string
	ControlNumber string
	Version       string
	Transactions  []Transaction
}

// Transaction is a parsed ST..SE set; Segments holds the body between them
type Transaction struct {
	Code          string
	ControlNumber string
	Version       string
	Segments      []Segment
}

// Transactions flattens the transaction sets of every group in order
func (ic *Interchange) Transactions() []Transaction {
	var out []Transaction
	for _, g := range ic.Groups {
		out = append(out, g.Transactions...)
	}
	return out
}

// ParseInterchange parses and validates an enveloped X12 document.
// Control numbers and counts are checked at every level; mismatches are
// returned as *MalformedEnvelopeError.
func ParseInterchange(raw string) (*Interchange, error) {
	segs := ParseSegments(raw)
	if len(segs) == 0 || segs[0].ID() != "ISA" {
		return nil, malformed(nil, "document does not start with ISA")
	}
	isa := segs[0]
	if len(isa) < 17 {
		return nil, malformed(isa, "ISA has %d elements, want 16", len(isa)-1)
	}
	ic := &Interchange{
		SenderQualifier:   strings.TrimSpace(isa[5]),
		SenderID:          strings.TrimSpace(isa[6]),
		ReceiverQualifier: strings.TrimSpace(isa[7]),
		ReceiverID:        strings.TrimSpace(isa[8]),
		Date:              isa[9],
		Time:              isa[10],
		Version:           isa[12],
		ControlNumber:     isa[13],
		AckRequested:      isa[14],
		UsageIndicator:    isa[15],
		Delimiters:        DetectDelimiters(raw),
	}

	var (
		group   *FunctionalGroup
		tx      *Transaction
		txStart int
		closed  bool
	)
	for i := 1; i < len(segs); i++ {
		seg := segs[i]
		if closed {
			return nil, malformed(seg, "segment after IEA")
		}
		switch seg.ID() {
		case "GS":
			if group != nil {
				return nil, malformed(seg, "GS inside open group %s", group.ControlNumber)
			}
			group = &FunctionalGroup{
				FunctionalID:  seg.Element(1),
				SenderCode:    seg.Element(2),
				ReceiverCode:  seg.Element(3),
				Date:          seg.Element(4),
				Time:          seg.Element(5),
				ControlNumber: seg.Element(6),
				Version:       seg.Element(8),
			}
		case "ST":
			if group == nil {
				return nil, malformed(seg, "ST outside a functional group")
			}
			if tx != nil {
				return nil, malformed(seg, "ST inside open transaction set %s", tx.ControlNumber)
			}
			tx = &Transaction{Code: seg.Element(1), ControlNumber: seg.Element(2), Version: seg.Element(3)}
			txStart = i
		case "SE":
			if tx == nil {
				return nil, malformed(seg, "SE without ST")
			}
			if seg.Element(2) != tx.ControlNumber {
				return nil, malformed(seg, "SE02 %q does not match ST02 %q", seg.Element(2), tx.ControlNumber)
			}
			if want := strconv.Itoa(i - txStart + 1); seg.Element(1) != want {
				return nil, malformed(seg, "SE01 %q does not match segment count %s", seg.Element(1), want)
			}
			group.Transactions = append(group.Transactions, *tx)
			tx = nil
		case "GE":
			if group == nil {
				return nil, malformed(seg, "GE without GS")
			}
			if tx != nil {
				return nil, malformed(seg, "GE before SE of transaction set %s", tx.ControlNumber)
			}
			if seg.Element(2) != group.ControlNumber {
				return nil, malformed(seg, "GE02 %q does not match GS06 %q", seg.Element(2), group.ControlNumber)
			}
			if want := strconv.Itoa(len(group.Transactions)); seg.Element(1) != want {
				return nil, malformed(seg, "GE01 %q does not match transaction set count %s", seg.Element(1), want)
			}
			ic.Groups = append(ic.Groups, *group)
			group = nil
		case "IEA":
			if group != nil {
				return nil, malformed(seg, "IEA before GE of group %s", group.ControlNumber)
			}
			if seg.Element(2) != ic.ControlNumber {
				return nil, malformed(seg, "IEA02 %q does not match ISA13 %q", seg.Element(2), ic.ControlNumber)
			}
			if want := strconv.Itoa(len(ic.Groups)); seg.Element(1) != want {
				return nil, malformed(seg, "IEA01 %q does not match group count %s", seg.Element(1), want)
			}
			closed = true
		case "TA1":
			// interchange acknowledgments sit directly under ISA
			if group != nil {
				return nil, malformed(seg, "TA1 inside a functional group")
			}
		default:
			if tx == nil {
				return nil, malformed(seg, "%s outside a transaction set", seg.ID())
			}
			tx.Segments = append(tx.Segments, seg)
		}
	}
	if !closed {
		switch {
		case tx != nil:
			return nil, malformed(nil, "missing SE for transaction set %s", tx.ControlNumber)
		case group != nil:
			return nil, malformed(nil, "missing GE for group %s", group.ControlNumber)
		default:
			return nil, malformed(nil, "missing IEA for interchange %s", ic.ControlNumber)
		}
	}
	return ic, nil
}
