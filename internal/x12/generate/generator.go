// Package generate builds outbound 270, 276 and 837P transactions.
// Every generator validates its input first and emits nothing on failure.
package generate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/drfirst/go-edi/internal/x12"
)

// EnvelopeConfig identifies this submitter to the clearinghouse
type EnvelopeConfig struct {
	SenderQualifier   string `json:"senderQualifier"`
	SenderID          string `json:"senderId"`
	ReceiverQualifier string `json:"receiverQualifier"`
	ReceiverID        string `json:"receiverId"`
	UsageIndicator    string `json:"usageIndicator"`

	// Submitter and receiver identification for 276 and 837P
	SubmitterName string `json:"submitterName"`
	ContactName   string `json:"contactName"`
	ContactPhone  string `json:"contactPhone"`
	ReceiverName  string `json:"receiverName"`
}

// Generator builds enveloped transactions
type Generator struct {
	Envelope       EnvelopeConfig
	Now            func() time.Time
	ControlNumbers x12.ControlNumberSource
}

// New creates a generator using the wall clock for dates and control numbers
func New(env EnvelopeConfig) *Generator {
	return &Generator{Envelope: env}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) nextControlNumber(now time.Time) string {
	if g.ControlNumbers != nil {
		return g.ControlNumbers()
	}
	return x12.ControlNumberFromClock(now)
}

// stamp fixes the timestamp and control number shared by one transaction
type stamp struct {
	now     time.Time
	control string
}

func (g *Generator) stamp() stamp {
	now := g.now()
	return stamp{now: now, control: g.nextControlNumber(now)}
}

func (g *Generator) envelope(st stamp, code, version string, body []x12.Segment) (string, error) {
	return x12.BuildInterchange(x12.InterchangeHeader{
		SenderQualifier:   g.Envelope.SenderQualifier,
		SenderID:          g.Envelope.SenderID,
		ReceiverQualifier: g.Envelope.ReceiverQualifier,
		ReceiverID:        g.Envelope.ReceiverID,
		ControlNumber:     st.control,
		UsageIndicator:    g.Envelope.UsageIndicator,
		Timestamp:         st.now,
	}, x12.TransactionSet{
		Code:          code,
		ControlNumber: "0001",
		Version:       version,
		Body:          body,
	})
}

// originatorID builds TRN03: "9" followed by the submitter's identifier
func (g *Generator) originatorID() string {
	id := strings.TrimSpace(g.Envelope.SenderID)
	if len(id) > 9 {
		id = id[:9]
	}
	return "9" + id
}

// hlChain hands out hierarchical level ids so parent links are always consistent
type hlChain struct {
	next int
}

func (h *hlChain) level(parent int, code string, hasChild bool) (int, x12.Segment) {
	h.next++
	id := h.next
	parentID := ""
	if parent > 0 {
		parentID = strconv.Itoa(parent)
	}
	child := "0"
	if hasChild {
		child = "1"
	}
	return id, x12.NewSegment("HL", strconv.Itoa(id), parentID, code, child)
}

// nm1 renders NM1 with the id qualifier and id in NM108/NM109
func nm1(entity, entityType, last, first, qualifier, id string) x12.Segment {
	if id == "" {
		qualifier = ""
	}
	return x12.NewSegment("NM1", entity, entityType, last, first, "", "", "", qualifier, id)
}

var npiPattern = regexp.MustCompile(`^\d{10}$`)

func validNPI(npi string) bool {
	return npiPattern.MatchString(npi)
}

func required(errs *x12.ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, "required")
	}
}

func normalizeGender(g string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(g)) {
	case "M", "MALE":
		return "M", true
	case "F", "FEMALE":
		return "F", true
	case "U", "UNKNOWN":
		return "U", true
	}
	return "", false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Address is a street/city/state/zip postal address
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

func (a Address) segments() []x12.Segment {
	return []x12.Segment{
		x12.NewSegment("N3", x12.CleanName(a.Line1), x12.CleanName(a.Line2)),
		x12.NewSegment("N4", x12.CleanName(a.City), strings.ToUpper(a.State), strings.ReplaceAll(a.Zip, "-", "")),
	}
}

func (a Address) validate(errs *x12.ValidationErrors, prefix string) {
	required(errs, prefix+".line1", a.Line1)
	required(errs, prefix+".city", a.City)
	required(errs, prefix+".state", a.State)
	required(errs, prefix+".zip", a.Zip)
}
