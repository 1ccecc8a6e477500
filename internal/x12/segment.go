// Package x12 provides the ASC X12 005010 segment grammar and interchange envelope
// used by every HIPAA transaction set this engine generates or parses.
package x12

import (
	"strings"
)

// Default delimiters used by every transaction this engine generates
const (
	SegmentTerminator  = "~"
	ElementSeparator   = "*"
	CompositeSeparator = "^"
	ComponentSeparator = ":"
)

// Version constants
const (
	ControlVersion = "00501"

	GuideEligibility  = "005010X279A1"
	GuideClaimStatus  = "005010X212"
	GuideProfessional = "005010X222A1"
	GuideRemittance   = "005010X221A1"
	GuideAck          = "005010X231A1"
)

// Delimiters holds the separator characters of one interchange
type Delimiters struct {
	Segment   string
	Element   string
	Composite string
	Component string
}

// DefaultDelimiters returns the delimiters this engine emits
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Segment:   SegmentTerminator,
		Element:   ElementSeparator,
		Composite: CompositeSeparator,
		Component: ComponentSeparator,
	}
}

// isaLength is the fixed byte length of an ISA segment including its terminator
const isaLength = 106

// DetectDelimiters reads the delimiters out of a leading ISA segment.
// Input that does not start with a well-formed ISA gets the defaults.
func DetectDelimiters(raw string) Delimiters {
	d := DefaultDelimiters()
	s := strings.TrimLeft(raw, " \r\n\t\ufeff")
	if len(s) < isaLength || !strings.HasPrefix(s, "ISA") {
		return d
	}
	elem := s[3:4]
	// ISA is fixed width, so a padded sender/receiver never shifts these offsets.
	if strings.Count(s[:isaLength-1], elem) != 16 {
		return d
	}
	d.Element = elem
	d.Composite = s[82:83]
	d.Component = s[104:105]
	d.Segment = s[105:106]
	if d.Composite == d.Element || d.Composite == "U" {
		// 004010 interchanges carry a standards identifier here, not a repetition separator
		d.Composite = CompositeSeparator
	}
	return d
}

// JoinSegment joins elements with the element separator.
// Trailing empty elements are dropped; inner empty placeholders are kept.
func JoinSegment(elements ...string) string {
	return joinWith(ElementSeparator, elements)
}

func joinWith(sep string, elements []string) string {
	n := len(elements)
	for n > 1 && elements[n-1] == "" {
		n--
	}
	return strings.Join(elements[:n], sep)
}

// SplitSegments splits raw X12 text on the segment terminator, dropping
// empty or whitespace-only pieces and surrounding line breaks.
func SplitSegments(raw string) []string {
	return splitSegmentsWith(raw, SegmentTerminator)
}

func splitSegmentsWith(raw, terminator string) []string {
	parts := strings.Split(raw, terminator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "\r\n\t \ufeff")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SplitElements splits a segment on the element separator without collapsing empties
func SplitElements(segment string) []string {
	return strings.Split(segment, ElementSeparator)
}

// SplitComposite splits an element on the composite (repetition) separator
func SplitComposite(element string) []string {
	if element == "" {
		return nil
	}
	return strings.Split(element, CompositeSeparator)
}

// SplitComponents splits an element on the component separator
func SplitComponents(element string) []string {
	if element == "" {
		return nil
	}
	return strings.Split(element, ComponentSeparator)
}

// Segment is one X12 segment; element 0 is the segment identifier
type Segment []string

// NewSegment builds a segment from an id and its elements
func NewSegment(id string, elements ...string) Segment {
	seg := make(Segment, 0, len(elements)+1)
	seg = append(seg, id)
	return append(seg, elements...)
}

// ID returns the segment identifier
func (s Segment) ID() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Element returns element i, or "" when the position is absent
func (s Segment) Element(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Has reports whether element i is present and non-empty
func (s Segment) Has(i int) bool {
	return s.Element(i) != ""
}

// Composite returns element i split on the composite separator
func (s Segment) Composite(i int) []string {
	return SplitComposite(s.Element(i))
}

// Components returns element i split on the component separator
func (s Segment) Components(i int) []string {
	return SplitComponents(s.Element(i))
}

// Component returns component j of element i, or ""
func (s Segment) Component(i, j int) string {
	parts := s.Components(i)
	if j < 0 || j >= len(parts) {
		return ""
	}
	return parts[j]
}

// String renders the segment without its terminator
func (s Segment) String() string {
	return JoinSegment(s...)
}

// Is reports whether the segment has the given id and, when qualifiers are
// supplied, whether elements 1..n equal them
func (s Segment) Is(id string, qualifiers ...string) bool {
	if s.ID() != id {
		return false
	}
	for i, q := range qualifiers {
		if s.Element(i+1) != q {
			return false
		}
	}
	return true
}

// ParseSegments splits raw text into segments using the delimiters found in
// its ISA header, or the defaults when there is none. Composite and component
// separators are normalized to the defaults so callers can use Segment helpers.
func ParseSegments(raw string) []Segment {
	d := DetectDelimiters(raw)
	parts := splitSegmentsWith(raw, d.Segment)
	segs := make([]Segment, 0, len(parts))
	for i, p := range parts {
		elems := strings.Split(p, d.Element)
		if !(i == 0 && elems[0] == "ISA") {
			elems = normalizeSeparators(elems, d)
		}
		segs = append(segs, Segment(elems))
	}
	return segs
}

// SegmentSources returns each segment's text exactly as it appears in raw,
// index aligned with ParseSegments
func SegmentSources(raw string) []string {
	return splitSegmentsWith(raw, DetectDelimiters(raw).Segment)
}

func normalizeSeparators(elems []string, d Delimiters) []string {
	if d.Composite == CompositeSeparator && d.Component == ComponentSeparator {
		return elems
	}
	r := strings.NewReplacer(d.Composite, CompositeSeparator, d.Component, ComponentSeparator)
	for i := 1; i < len(elems); i++ {
		elems[i] = r.Replace(elems[i])
	}
	return elems
}

// Render joins segments into X12 text, one terminator per segment
func Render(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.String())
		b.WriteString(SegmentTerminator)
	}
	return b.String()
}
