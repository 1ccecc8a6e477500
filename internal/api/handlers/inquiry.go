package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/api/middleware"
	"github.com/drfirst/go-edi/internal/cache"
	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/x12/generate"
)

// Inquirer runs synchronous clearinghouse exchanges
type Inquirer interface {
	CheckEligibility(ctx context.Context, p generate.Patient, payerID string) (*inquiry.EligibilityResult, error)
	CheckClaimStatus(ctx context.Context, inq generate.ClaimInquiry) (*inquiry.ClaimStatusResult, error)
	SubmitClaim(ctx context.Context, claim generate.Claim) (*inquiry.SubmissionResult, error)
}

// Queue accepts inquiries for asynchronous processing
type Queue interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// InquiryHandler handles eligibility, claim status and claim submission
type InquiryHandler struct {
	svc    Inquirer
	cache  *cache.EligibilityCache
	queue  Queue
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewInquiryHandler creates a new handler. cache and queue may be nil; a nil
// queue disables async requests.
func NewInquiryHandler(svc Inquirer, c *cache.EligibilityCache, q Queue, logger *zap.Logger) *InquiryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InquiryHandler{
		svc:    svc,
		cache:  c,
		queue:  q,
		logger: logger,
		tracer: otel.Tracer("inquiry-handler"),
		now:    time.Now,
	}
}

// Register adds the handler routes to r
func (h *InquiryHandler) Register(r chi.Router) {
	r.Post("/eligibility", h.Eligibility)
	r.Post("/claim-status", h.ClaimStatus)
	r.Post("/claim-status/validate", h.ValidateClaimStatus)
	r.Post("/claims", h.SubmitClaim)
}

// EligibilityRequest is the request body for an eligibility check
type EligibilityRequest struct {
	PayerID string           `json:"payerId"`
	Patient generate.Patient `json:"patient"`
}

// AcceptedResponse is returned for queued inquiries
type AcceptedResponse struct {
	ID             string    `json:"id"`
	Operation      string    `json:"operation"`
	IdempotencyKey string    `json:"idempotencyKey"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func async(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}

// Eligibility handles POST /eligibility. Cached answers are served without a
// clearinghouse round trip unless Cache-Control: no-cache is sent.
func (h *InquiryHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "eligibility_request")
	defer span.End()

	var req EligibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	span.SetAttributes(attribute.String("payer_id", req.PayerID))

	if async(r) {
		h.enqueue(ctx, w, inquiry.Request{Operation: inquiry.OpEligibility, PayerID: req.PayerID, Patient: &req.Patient})
		return
	}

	var key string
	if h.cache != nil {
		key = h.cache.Key(req.Patient, req.PayerID)
		if r.Header.Get("Cache-Control") != "no-cache" {
			if res, ok := h.cache.Get(key); ok {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				w.Header().Set("X-Cache", "HIT")
				writeJSON(w, http.StatusOK, res)
				return
			}
		}
	}

	res, err := h.svc.CheckEligibility(ctx, req.Patient, req.PayerID)
	if err != nil {
		span.RecordError(err)
		writeServiceError(w, h.logger, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(key, res)
		w.Header().Set("X-Cache", "MISS")
	}

	h.logger.Info("eligibility checked",
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.String("payer_id", req.PayerID),
		zap.String("control_number", res.ControlNumber),
		zap.String("kind", string(res.Kind)))
	writeJSON(w, statusFor(res.Outcome), res)
}

// ClaimStatus handles POST /claim-status
func (h *InquiryHandler) ClaimStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "claim_status_request")
	defer span.End()

	var req generate.ClaimInquiry
	if !decodeBody(w, r, &req) {
		return
	}
	span.SetAttributes(attribute.String("payer_id", req.PayerID))

	if async(r) {
		h.enqueue(ctx, w, inquiry.Request{Operation: inquiry.OpClaimStatus, PayerID: req.PayerID, ClaimInquiry: &req})
		return
	}

	res, err := h.svc.CheckClaimStatus(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, statusFor(res.Outcome), res)
}

// ValidateClaimStatus handles POST /claim-status/validate. It never calls the
// clearinghouse.
func (h *InquiryHandler) ValidateClaimStatus(w http.ResponseWriter, r *http.Request) {
	var req generate.ClaimInquiry
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, generate.ValidateClaimInquiry(req))
}

// SubmitClaim handles POST /claims
func (h *InquiryHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "claim_submission_request")
	defer span.End()

	var claim generate.Claim
	if !decodeBody(w, r, &claim) {
		return
	}

	res, err := h.svc.SubmitClaim(ctx, claim)
	if err != nil {
		span.RecordError(err)
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("claim submitted",
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.String("control_number", res.ControlNumber),
		zap.Bool("accepted", res.Accepted))
	writeJSON(w, statusFor(res.Outcome), res)
}

func (h *InquiryHandler) enqueue(ctx context.Context, w http.ResponseWriter, req inquiry.Request) {
	if h.queue == nil {
		jsonError(w, "asynchronous inquiries are not enabled", http.StatusNotImplemented)
		return
	}

	req.ID = uuid.New().String()
	req.SubmittedAt = h.now().UTC()
	if err := req.Validate(); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	topic, err := redpanda.TopicFor(req.Operation)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload, err := json.Marshal(req)
	if err != nil {
		jsonError(w, "failed to encode request", http.StatusInternalServerError)
		return
	}

	key := req.IdempotencyKey()
	if err := h.queue.Publish(ctx, topic, key, payload); err != nil {
		h.logger.Error("failed to enqueue inquiry", zap.String("request_id", req.ID), zap.Error(err))
		jsonError(w, "failed to enqueue inquiry", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedResponse{
		ID:             req.ID,
		Operation:      req.Operation,
		IdempotencyKey: key,
		SubmittedAt:    req.SubmittedAt,
	})
}
