// Package soap wraps X12 payloads in CAQH CORE SOAP 1.2 envelopes and unwraps
// clearinghouse responses.
//
// Credentials travel as a plain-text WS-Security UsernameToken; channel
// security is the transport's job.
package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SOAP and CORE constants
const (
	NamespaceSOAP     = "http://www.w3.org/2003/05/soap-envelope"
	NamespaceCORE     = "http://www.caqh.org/SOAP/WSDL/CORERule2.2.0.xsd"
	NamespaceWSSE     = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	NamespaceWSU      = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	PasswordTextType  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText"
	CORERuleVersion   = "2.2.0"
	Action            = "RealTimeTransaction"
	ContentType       = "application/soap+xml; charset=utf-8;action=RealTimeTransaction;"
	ErrorCodeSuccess  = "Success"
	timestampLayout   = time.RFC3339
	defaultProcessing = ProcessingRealTime
)

// Processing modes
const (
	ProcessingRealTime = "RealTime"
	ProcessingBatch    = "Batch"
)

// Request payload types per transaction
const (
	PayloadType270 = "X12_270_Request_005010X279A1"
	PayloadType276 = "X12_276_Request_005010X212"
	PayloadType837 = "X12_837_Request_005010X222A1"
)

// Response payload types a clearinghouse returns
const (
	PayloadType271 = "X12_271_Response_005010X279A1"
	PayloadType277 = "X12_277_Response_005010X212"
	PayloadType999 = "X12_999_Response_005010X231A1"
	PayloadType835 = "X12_835_Response_005010X221A1"
)

// ErrInvalidRequest reports a Wrap call missing something the envelope needs
var ErrInvalidRequest = errors.New("soap: invalid request")

// Credentials are the clearinghouse account used in the UsernameToken
type Credentials struct {
	Username string
	Password string
}

// Envelope is the SOAP 1.2 request envelope
type Envelope struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soapenv,attr"`
	XmlnsCore string   `xml:"xmlns:cor,attr"`
	Header    Header   `xml:"soapenv:Header"`
	Body      Body     `xml:"soapenv:Body"`
}

// Header carries the WS-Security block
type Header struct {
	Security Security `xml:"wsse:Security"`
}

// Security is the WS-Security header
type Security struct {
	MustUnderstand string        `xml:"soapenv:mustUnderstand,attr"`
	XmlnsWsse      string        `xml:"xmlns:wsse,attr"`
	XmlnsWsu       string        `xml:"xmlns:wsu,attr"`
	UsernameToken  UsernameToken `xml:"wsse:UsernameToken"`
}

// UsernameToken holds plain-text credentials
type UsernameToken struct {
	ID       string   `xml:"wsu:Id,attr"`
	Username string   `xml:"wsse:Username"`
	Password Password `xml:"wsse:Password"`
}

// Password is a UsernameToken password with its type attribute
type Password struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

// Body holds the CORE request
type Body struct {
	Request RealTimeRequest `xml:"cor:COREEnvelopeRealTimeRequest"`
}

// RealTimeRequest is the CORE envelope metadata plus the payload
type RealTimeRequest struct {
	PayloadType     string `xml:"PayloadType"`
	ProcessingMode  string `xml:"ProcessingMode"`
	PayloadID       string `xml:"PayloadID"`
	TimeStamp       string `xml:"TimeStamp"`
	SenderID        string `xml:"SenderID"`
	ReceiverID      string `xml:"ReceiverID"`
	CORERuleVersion string `xml:"CORERuleVersion"`
	Payload         CDATA  `xml:"Payload"`
}

// CDATA marshals its value inside a CDATA section
type CDATA struct {
	Value string `xml:",cdata"`
}

type options struct {
	processingMode string
	payloadID      string
	now            func() time.Time
}

// Option customizes Wrap
type Option func(*options)

// WithBatch sets the processing mode to Batch, used for claim submission
func WithBatch() Option {
	return func(o *options) { o.processingMode = ProcessingBatch }
}

// WithPayloadID overrides the generated payload id
func WithPayloadID(id string) Option {
	return func(o *options) { o.payloadID = id }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewEnvelope builds the request envelope without serializing it
func NewEnvelope(payload string, creds Credentials, senderID, receiverID, payloadType string, opts ...Option) (*Envelope, error) {
	o := options{processingMode: defaultProcessing, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case payload == "":
		return nil, fmt.Errorf("%w: payload is empty", ErrInvalidRequest)
	case creds.Username == "":
		return nil, fmt.Errorf("%w: username is required", ErrInvalidRequest)
	case senderID == "" || receiverID == "":
		return nil, fmt.Errorf("%w: sender and receiver ids are required", ErrInvalidRequest)
	case payloadType == "":
		return nil, fmt.Errorf("%w: payload type is required", ErrInvalidRequest)
	}
	if o.payloadID == "" {
		o.payloadID = uuid.New().String()
	}

	return &Envelope{
		XmlnsSoap: NamespaceSOAP,
		XmlnsCore: NamespaceCORE,
		Header: Header{
			Security: Security{
				MustUnderstand: "true",
				XmlnsWsse:      NamespaceWSSE,
				XmlnsWsu:       NamespaceWSU,
				UsernameToken: UsernameToken{
					ID:       "UsernameToken-" + o.payloadID,
					Username: creds.Username,
					Password: Password{Type: PasswordTextType, Value: creds.Password},
				},
			},
		},
		Body: Body{
			Request: RealTimeRequest{
				PayloadType:     payloadType,
				ProcessingMode:  o.processingMode,
				PayloadID:       o.payloadID,
				TimeStamp:       o.now().UTC().Format(timestampLayout),
				SenderID:        senderID,
				ReceiverID:      receiverID,
				CORERuleVersion: CORERuleVersion,
				Payload:         CDATA{Value: payload},
			},
		},
	}, nil
}

// Wrap embeds an X12 payload in a CORE real-time request envelope
func Wrap(payload string, creds Credentials, senderID, receiverID, payloadType string, opts ...Option) ([]byte, error) {
	env, err := NewEnvelope(payload, creds, senderID, receiverID, payloadType, opts...)
	if err != nil {
		return nil, err
	}
	return env.Marshal()
}

// Marshal serializes the envelope with an XML declaration
func (e *Envelope) Marshal() ([]byte, error) {
	out, err := xml.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SOAP envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// PayloadID returns the correlation id of the request
func (e *Envelope) PayloadID() string {
	return e.Body.Request.PayloadID
}
