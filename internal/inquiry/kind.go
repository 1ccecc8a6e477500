package inquiry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/drfirst/go-edi/internal/clearinghouse"
	"github.com/drfirst/go-edi/internal/soap"
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/parse"
)

// Kind classifies the outcome of one inquiry
type Kind string

const (
	KindNone                 Kind = "none"
	KindValidation           Kind = "validation"
	KindMalformedEnvelope    Kind = "malformed_envelope"
	KindTransportFault       Kind = "transport_fault"
	KindFunctionalRejection  Kind = "functional_rejection"
	KindNoActiveCoverage     Kind = "no_active_coverage"
	KindNotFound             Kind = "not_found"
	KindUnrecognizedResponse Kind = "unrecognized_response"
)

// Transient reports whether a retry could plausibly succeed. The service
// never retries; the queue worker re-runs transient outcomes.
func (k Kind) Transient() bool {
	return k == KindTransportFault
}

// Sentinel errors for errors.Is checks
var (
	ErrFunctionalRejection  = errors.New("inquiry: functional rejection")
	ErrUnrecognizedResponse = errors.New("inquiry: unrecognized response")
)

// FunctionalRejection is a 999 or TA1 that rejected the submitted transaction.
// It is a defect in the request, never transient.
type FunctionalRejection struct {
	Transaction string
	Entries     []parse.AckEntry
}

func (e *FunctionalRejection) Error() string {
	var codes []string
	for _, entry := range e.Entries {
		if entry.Code != "" {
			codes = append(codes, fmt.Sprintf("%s %s", entry.Kind, entry.Code))
		}
	}
	if len(codes) == 0 {
		return fmt.Sprintf("%s rejected by clearinghouse", e.Transaction)
	}
	return fmt.Sprintf("%s rejected by clearinghouse: %s", e.Transaction, strings.Join(codes, ", "))
}

// Is lets errors.Is(err, ErrFunctionalRejection) match any FunctionalRejection
func (e *FunctionalRejection) Is(target error) bool {
	return target == ErrFunctionalRejection
}

func unrecognized(got parse.TransactionType, want string) error {
	return fmt.Errorf("%w: got %s, want %s", ErrUnrecognizedResponse, got, want)
}

// Classify maps an error to its Kind. Nil and errors outside the taxonomy,
// such as network failures and cancellation, are KindNone.
func Classify(err error) Kind {
	var (
		fault     *soap.TransportFault
		rejection *FunctionalRejection
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, x12.ErrValidation):
		return KindValidation
	case errors.Is(err, x12.ErrMalformedEnvelope), errors.Is(err, parse.ErrUnmatchedNesting):
		return KindMalformedEnvelope
	case errors.As(err, &fault):
		return KindTransportFault
	case errors.As(err, &rejection):
		return KindFunctionalRejection
	case errors.Is(err, soap.ErrNoPayloadFound), errors.Is(err, ErrUnrecognizedResponse):
		return KindUnrecognizedResponse
	case errors.Is(err, clearinghouse.ErrPollExhausted):
		return KindNotFound
	default:
		return KindNone
	}
}
