package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/soap"
)

// ParseHandler decodes raw X12 or SOAP responses into typed JSON
type ParseHandler struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewParseHandler creates a new handler. m may be nil.
func NewParseHandler(logger *zap.Logger, m *metrics.Metrics) *ParseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseHandler{logger: logger, metrics: m}
}

// parseError is the body of a document that could not be decoded
type parseError struct {
	Error     string       `json:"error"`
	Kind      inquiry.Kind `json:"kind"`
	FaultCode string       `json:"faultCode,omitempty"`
}

// Parse handles POST /parse. The body is the document itself.
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("parse-handler").Start(r.Context(), "parse_document")
	defer span.End()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		jsonError(w, "empty document", http.StatusBadRequest)
		return
	}

	doc, err := inquiry.Decode(body)
	if err != nil {
		kind := inquiry.Classify(err)
		h.metrics.Parsed("none", string(kind))
		span.RecordError(err)

		resp := parseError{Error: err.Error(), Kind: kind}
		var fault *soap.TransportFault
		if errors.As(err, &fault) {
			resp.FaultCode = fault.Code
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	span.SetAttributes(attribute.String("transaction", string(doc.Type)))
	h.metrics.Parsed(string(doc.Type), string(inquiry.KindNone))
	writeJSON(w, http.StatusOK, doc)
}
