package inquiry

import (
	"bytes"
	"fmt"

	"github.com/drfirst/go-edi/internal/soap"
	"github.com/drfirst/go-edi/internal/x12/enrich"
	"github.com/drfirst/go-edi/internal/x12/parse"
)

// Document is a decoded inbound file: raw X12 or a SOAP response carrying one
type Document struct {
	Type parse.TransactionType `json:"type"`
	// Envelope is set when the input was a SOAP response
	Envelope *soap.ResponseMetadata `json:"envelope,omitempty"`

	Eligibility     *parse.Eligibility         `json:"eligibility,omitempty"`
	Summary         *parse.Summary             `json:"summary,omitempty"`
	Plans           []enrich.PlanLabel         `json:"plans,omitempty"`
	ClaimStatus     *parse.ClaimStatusResponse `json:"claimStatus,omitempty"`
	Remittance      *parse.Remittance          `json:"remittance,omitempty"`
	Acknowledgments []parse.AckEntry           `json:"acknowledgments,omitempty"`
	Rejected        bool                       `json:"rejected,omitempty"`
}

// Decode detects and parses an inbound document. Outbound types (270, 276,
// 837) are reported as unrecognized.
func Decode(data []byte) (*Document, error) {
	doc := &Document{}
	raw := string(bytes.TrimSpace(data))

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		payload, err := soap.Unwrap(data)
		if err != nil {
			return nil, err
		}
		if md, err := soap.Inspect(data); err == nil {
			doc.Envelope = md
		}
		raw = payload
	}

	doc.Type = parse.Detect(raw)
	switch doc.Type {
	case parse.Type271:
		e, err := parse.Parse271(raw)
		if err != nil {
			return nil, err
		}
		summary := e.Summarize()
		doc.Eligibility = e
		doc.Summary = &summary
		doc.Plans = enrich.Classifier{}.Plans(e)
	case parse.Type277:
		r, err := parse.Parse277(raw)
		if err != nil {
			return nil, err
		}
		doc.ClaimStatus = r
	case parse.Type835:
		r, err := parse.Parse835(raw)
		if err != nil {
			return nil, err
		}
		doc.Remittance = r
	case parse.Type999, parse.TypeTA1:
		entries, err := parse.Parse999(raw)
		if err != nil {
			return nil, err
		}
		doc.Acknowledgments = entries
		doc.Rejected = parse.Rejected(entries)
	default:
		return nil, fmt.Errorf("%w: %s is not an inbound transaction", ErrUnrecognizedResponse, doc.Type)
	}
	return doc, nil
}
