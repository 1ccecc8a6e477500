package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoPayloadFound is returned when a response has neither a fault nor a payload
var ErrNoPayloadFound = errors.New("soap: no payload found in envelope")

// ErrTransportFault matches any *TransportFault with errors.Is
var ErrTransportFault = errors.New("soap: transport fault")

// TransportFault is a SOAP fault or a CORE error code other than Success
type TransportFault struct {
	Code    string
	Message string
	Raw     string
}

func (f *TransportFault) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("soap fault %s", f.Code)
	}
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.Message)
}

// Is lets errors.Is match ErrTransportFault
func (f *TransportFault) Is(target error) bool {
	return target == ErrTransportFault
}

// Envelopes come from many clearinghouses with different prefixes, so
// extraction is done on the raw text rather than a namespace-bound decode.
var (
	faultPattern        = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?Fault\b[^>]*>(.*?)</(?:[\w.-]+:)?Fault>`)
	faultValuePattern   = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?Value\b[^>]*>(.*?)</`)
	faultTextPattern    = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?Text\b[^>]*>(.*?)</`)
	faultCodePattern    = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?faultcode\b[^>]*>(.*?)</`)
	faultStringPattern  = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?faultstring\b[^>]*>(.*?)</`)
	errorCodePattern    = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?ErrorCode\b[^>]*>(.*?)</(?:[\w.-]+:)?ErrorCode>`)
	errorMessagePattern = regexp.MustCompile(`(?s)<(?:[\w.-]+:)?ErrorMessage\b[^>]*>(.*?)</(?:[\w.-]+:)?ErrorMessage>`)
)

type payloadPattern struct {
	re    *regexp.Regexp
	cdata bool
}

// checked in order; the first non-empty match wins
var payloadPatterns = []payloadPattern{
	{regexp.MustCompile(`(?s)<Payload(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</Payload>`), true},
	{regexp.MustCompile(`(?s)<[\w.-]+:Payload(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</[\w.-]+:Payload>`), true},
	{regexp.MustCompile(`(?s)<Payload(?:\s[^>]*)?>(.*?)</Payload>`), false},
	{regexp.MustCompile(`(?s)<[\w.-]+:Payload(?:\s[^>]*)?>(.*?)</[\w.-]+:Payload>`), false},
}

// Unwrap returns the X12 payload carried by a response envelope. Faults are
// checked before the payload.
func Unwrap(envelope []byte) (string, error) {
	if err := CheckFault(envelope); err != nil {
		return "", err
	}
	for _, p := range payloadPatterns {
		m := p.re.FindSubmatch(envelope)
		if m == nil {
			continue
		}
		payload := string(m[1])
		if !p.cdata {
			payload = unescape(payload)
		}
		if payload = strings.TrimSpace(payload); payload != "" {
			return payload, nil
		}
	}
	return "", ErrNoPayloadFound
}

// CheckFault returns a *TransportFault when the envelope carries a SOAP fault or
// a CORE error code other than Success
func CheckFault(envelope []byte) error {
	if m := faultPattern.FindSubmatch(envelope); m != nil {
		body := m[1]
		code := firstMatch(body, faultValuePattern, faultCodePattern)
		msg := firstMatch(body, faultTextPattern, faultStringPattern)
		return &TransportFault{Code: code, Message: msg, Raw: string(envelope)}
	}
	code := firstMatch(envelope, errorCodePattern)
	if code != "" && !strings.EqualFold(code, ErrorCodeSuccess) {
		return &TransportFault{
			Code:    code,
			Message: firstMatch(envelope, errorMessagePattern),
			Raw:     string(envelope),
		}
	}
	return nil
}

func firstMatch(src []byte, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindSubmatch(src); m != nil {
			if v := strings.TrimSpace(unescape(string(m[1]))); v != "" {
				return v
			}
		}
	}
	return ""
}

// unescape decodes XML character references; text that is not valid XML is
// returned unchanged
func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var v struct {
		Text string `xml:",chardata"`
	}
	doc := append(append([]byte("<v>"), s...), "</v>"...)
	if err := xml.Unmarshal(doc, &v); err != nil {
		return s
	}
	return v.Text
}

// ResponseMetadata is the CORE metadata of a response envelope
type ResponseMetadata struct {
	PayloadType     string `xml:"PayloadType"`
	ProcessingMode  string `xml:"ProcessingMode"`
	PayloadID       string `xml:"PayloadID"`
	TimeStamp       string `xml:"TimeStamp"`
	SenderID        string `xml:"SenderID"`
	ReceiverID      string `xml:"ReceiverID"`
	CORERuleVersion string `xml:"CORERuleVersion"`
	ErrorCode       string `xml:"ErrorCode"`
	ErrorMessage    string `xml:"ErrorMessage"`
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response ResponseMetadata `xml:",any"`
	} `xml:"Body"`
}

// Inspect decodes the CORE metadata of a well-formed response envelope
func Inspect(envelope []byte) (*ResponseMetadata, error) {
	var env responseEnvelope
	if err := xml.NewDecoder(bytes.NewReader(envelope)).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal SOAP envelope: %w", err)
	}
	md := env.Body.Response
	return &md, nil
}
