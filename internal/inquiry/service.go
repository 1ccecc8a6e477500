// Package inquiry runs one payer exchange end to end: validate, generate, wrap,
// send, unwrap, classify, parse.
//
// Expected unhappy outcomes (no coverage, claim not found, 999 rejection,
// transport fault) come back as results with Success and Kind set. Only
// programmer errors and transport failures outside the taxonomy are returned
// as errors. Nothing is retried here.
package inquiry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/clearinghouse"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/soap"
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/enrich"
	"github.com/drfirst/go-edi/internal/x12/generate"
	"github.com/drfirst/go-edi/internal/x12/parse"
	"github.com/drfirst/go-edi/internal/x12/payer"
)

// Operation names used in spans, metrics and records
const (
	OpEligibility = "eligibility"
	OpClaimStatus = "claim_status"
	OpSubmission  = "claim_submission"
	OpRemittance  = "remittance"
)

// Config identifies this submitter on the CORE envelope
type Config struct {
	Credentials soap.Credentials
	SenderID    string
	ReceiverID  string
	Provider    generate.Provider
}

// Service orchestrates inquiries against one clearinghouse
type Service struct {
	cfg        Config
	gen        *generate.Generator
	payers     *payer.Directory
	transport  clearinghouse.Transport
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *metrics.Metrics
	sink       ResultSink
	classifier enrich.Classifier
	poller     clearinghouse.Poller
}

// Option customizes a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMetrics records counters and round trip durations on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSink writes every completed exchange to sink
func WithSink(sink ResultSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithClassifier replaces the default plan classifier
func WithClassifier(c enrich.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithPoller sets the mailbox polling policy for remittance retrieval
func WithPoller(p clearinghouse.Poller) Option {
	return func(s *Service) { s.poller = p }
}

// NewService wires a service. Generator, directory and transport are required.
func NewService(gen *generate.Generator, payers *payer.Directory, transport clearinghouse.Transport, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case gen == nil:
		return nil, errors.New("inquiry: generator is required")
	case payers == nil:
		return nil, errors.New("inquiry: payer directory is required")
	case transport == nil:
		return nil, errors.New("inquiry: transport is required")
	}
	s := &Service{
		cfg:       cfg,
		gen:       gen,
		payers:    payers,
		transport: transport,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("inquiry"),
		poller:    clearinghouse.DefaultPoller(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.poller.Logger == nil {
		s.poller.Logger = s.logger
	}
	return s, nil
}

// Payers returns the directory the service validates against
func (s *Service) Payers() *payer.Directory {
	return s.payers
}

// exchange is the state of one call as it moves through the pipeline
type exchange struct {
	op        string
	payerID   string
	request   string
	response  string
	detected  parse.TransactionType
	startedAt time.Time
}

func (s *Service) begin(ctx context.Context, op, payerID string) (context.Context, trace.Span, *exchange) {
	ctx, span := s.tracer.Start(ctx, "inquiry."+op,
		trace.WithAttributes(
			attribute.String("operation", op),
			attribute.String("payer_id", payerID),
		))
	return ctx, span, &exchange{op: op, payerID: payerID, startedAt: time.Now()}
}

// build runs a generator inside its own span
func (s *Service) build(ctx context.Context, ex *exchange, transaction string, fn func() (string, error)) error {
	_, span := s.tracer.Start(ctx, "inquiry.generate", trace.WithAttributes(attribute.String("transaction", transaction)))
	defer span.End()

	raw, err := fn()
	if err != nil {
		span.RecordError(err)
		return err
	}
	ex.request = raw
	s.metrics.Generated(transaction)
	return nil
}

// send wraps the request, performs the round trip and unwraps the response
func (s *Service) send(ctx context.Context, ex *exchange, payloadType string, opts ...soap.Option) error {
	envelope, err := soap.Wrap(ex.request, s.cfg.Credentials, s.cfg.SenderID, s.cfg.ReceiverID, payloadType, opts...)
	if err != nil {
		return fmt.Errorf("wrap request: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "inquiry.send", trace.WithAttributes(attribute.String("payload_type", payloadType)))
	defer span.End()

	start := time.Now()
	reply, err := s.transport.Send(ctx, envelope)
	s.metrics.ObserveRoundTrip(ex.op, time.Since(start))
	if err != nil {
		span.RecordError(err)
		return err
	}
	payload, err := soap.Unwrap(reply)
	if err != nil {
		span.RecordError(err)
		return err
	}
	ex.response = payload
	ex.detected = parse.Detect(payload)
	span.SetAttributes(attribute.String("response_type", string(ex.detected)))
	return nil
}

// acknowledgment parses a 999/TA1 and turns a rejection into a FunctionalRejection
func acknowledgment(raw, transaction string) ([]parse.AckEntry, error) {
	entries, err := parse.Parse999(raw)
	if err != nil {
		return nil, err
	}
	if parse.Rejected(entries) {
		return entries, &FunctionalRejection{Transaction: transaction, Entries: entries}
	}
	return entries, nil
}

// complete classifies err into out, records the exchange and decides whether
// err must be returned to the caller
func (s *Service) complete(ctx context.Context, span trace.Span, ex *exchange, out *Outcome, result any, err error) error {
	defer span.End()
	out.Elapsed = time.Since(ex.startedAt)
	if cn := controlNumber(ex.request); cn != "" {
		out.ControlNumber = cn
	}

	if err != nil {
		kind := Classify(err)
		if kind == KindNone {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unclassified failure")
			s.logger.Error("inquiry failed",
				zap.String("operation", ex.op),
				zap.String("payer_id", ex.payerID),
				zap.String("control_number", out.ControlNumber),
				zap.Error(err))
			return err
		}
		out.Success = false
		out.Kind = kind
		out.Message = err.Error()
		fillDiagnostics(out, err)
	}

	span.SetAttributes(
		attribute.String("kind", string(out.Kind)),
		attribute.Bool("success", out.Success),
	)
	transaction := string(ex.detected)
	if transaction == "" {
		transaction = "none"
	}
	s.metrics.Parsed(transaction, string(out.Kind))
	if out.Kind == KindFunctionalRejection {
		s.metrics.Rejected(ex.op)
	}
	s.logger.Info("inquiry completed",
		zap.String("operation", ex.op),
		zap.String("payer_id", ex.payerID),
		zap.String("control_number", out.ControlNumber),
		zap.String("response_type", string(ex.detected)),
		zap.String("kind", string(out.Kind)),
		zap.Bool("success", out.Success),
		zap.Duration("elapsed", out.Elapsed))

	s.record(ctx, ex, out, result)
	return nil
}

func fillDiagnostics(out *Outcome, err error) {
	var (
		verrs     x12.ValidationErrors
		verr      *x12.ValidationError
		fault     *soap.TransportFault
		rejection *FunctionalRejection
	)
	switch {
	case errors.As(err, &verrs):
		for _, v := range verrs {
			out.ValidationErrors = append(out.ValidationErrors, v.Error())
		}
	case errors.As(err, &verr):
		out.ValidationErrors = []string{verr.Error()}
	case errors.As(err, &fault):
		out.FaultCode = fault.Code
	case errors.As(err, &rejection):
		out.Acknowledgments = rejection.Entries
	}
}

func (s *Service) record(ctx context.Context, ex *exchange, out *Outcome, result any) {
	if s.sink == nil || (ex.request == "" && ex.response == "") {
		return
	}
	key := out.ControlNumber
	if key == "" {
		key = controlNumber(ex.response)
	}
	rec := Record{
		Key:        key,
		Operation:  ex.op,
		PayerID:    ex.payerID,
		Request:    ex.request,
		Response:   ex.response,
		Result:     result,
		Success:    out.Success,
		Kind:       out.Kind,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.sink.Record(ctx, rec); err != nil {
		s.logger.Warn("failed to record exchange",
			zap.String("operation", ex.op),
			zap.String("control_number", key),
			zap.Error(err))
	}
}

// controlNumber reads ISA13 without validating the rest of the envelope
func controlNumber(raw string) string {
	segs := x12.ParseSegments(raw)
	if len(segs) == 0 || segs[0].ID() != "ISA" {
		return ""
	}
	return segs[0].Element(13)
}

// CheckEligibility sends a 270 for p to payerID and decodes the 271. An
// unknown payer id is returned as an error.
func (s *Service) CheckEligibility(ctx context.Context, p generate.Patient, payerID string) (*EligibilityResult, error) {
	cfg, err := s.payers.MustLookup(payerID)
	if err != nil {
		return nil, err
	}
	ctx, span, ex := s.begin(ctx, OpEligibility, payerID)
	res := &EligibilityResult{PayerID: payerID}

	err = s.build(ctx, ex, "270", func() (string, error) {
		return s.gen.Eligibility270(p, cfg, s.cfg.Provider)
	})
	if err == nil {
		err = s.send(ctx, ex, soap.PayloadType270)
	}
	if err == nil {
		err = s.interpretEligibility(ex, res)
	}
	if err := s.complete(ctx, span, ex, &res.Outcome, res, err); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) interpretEligibility(ex *exchange, res *EligibilityResult) error {
	switch ex.detected {
	case parse.Type271:
		e, err := parse.Parse271(ex.response)
		if err != nil {
			return err
		}
		summary := e.Summarize()
		res.Eligibility = e
		res.Summary = &summary
		res.Plans = s.classifier.Plans(e)
		res.PlanConflict = enrich.Conflicting(res.Plans)
		res.Success = true
		res.Kind = KindNone
		if !e.HasActiveCoverage() {
			res.Kind = KindNoActiveCoverage
			res.Message = e.Reason
		}
		return nil
	case parse.Type999, parse.TypeTA1:
		entries, err := acknowledgment(ex.response, "270")
		if err != nil {
			return err
		}
		res.Acknowledgments = entries
		return fmt.Errorf("%w: acknowledgment without a 271", ErrUnrecognizedResponse)
	default:
		return unrecognized(ex.detected, "271")
	}
}

// CheckClaimStatus sends a 276 and decodes the 277
func (s *Service) CheckClaimStatus(ctx context.Context, inq generate.ClaimInquiry) (*ClaimStatusResult, error) {
	ctx, span, ex := s.begin(ctx, OpClaimStatus, inq.PayerID)
	res := &ClaimStatusResult{PayerID: inq.PayerID}

	err := s.build(ctx, ex, "276", func() (string, error) {
		return s.gen.ClaimStatus276(inq)
	})
	if err == nil {
		err = s.send(ctx, ex, soap.PayloadType276)
	}
	if err == nil {
		err = s.interpretClaimStatus(ex, res)
	}
	if err := s.complete(ctx, span, ex, &res.Outcome, res, err); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) interpretClaimStatus(ex *exchange, res *ClaimStatusResult) error {
	switch ex.detected {
	case parse.Type277:
		r, err := parse.Parse277(ex.response)
		if err != nil {
			return err
		}
		res.Response = r
		res.Success = true
		res.Kind = KindNone
		if r.NotFound() {
			res.Kind = KindNotFound
		}
		return nil
	case parse.Type999, parse.TypeTA1:
		entries, err := acknowledgment(ex.response, "276")
		if err != nil {
			return err
		}
		res.Acknowledgments = entries
		return fmt.Errorf("%w: acknowledgment without a 277", ErrUnrecognizedResponse)
	default:
		return unrecognized(ex.detected, "277")
	}
}

// SubmitClaim sends an 837P in batch mode and decodes the acknowledgment
func (s *Service) SubmitClaim(ctx context.Context, claim generate.Claim) (*SubmissionResult, error) {
	ctx, span, ex := s.begin(ctx, OpSubmission, claim.Payer.ClaimsPayerID)
	res := &SubmissionResult{PatientControlNumber: claim.PatientControlNumber}

	err := s.build(ctx, ex, "837", func() (string, error) {
		return s.gen.Claim837P(claim)
	})
	if err == nil {
		err = s.send(ctx, ex, soap.PayloadType837, soap.WithBatch())
	}
	if err == nil {
		err = s.interpretSubmission(ex, res)
	}
	if err := s.complete(ctx, span, ex, &res.Outcome, res, err); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) interpretSubmission(ex *exchange, res *SubmissionResult) error {
	switch ex.detected {
	case parse.Type999, parse.TypeTA1:
		entries, err := acknowledgment(ex.response, "837")
		if err != nil {
			return err
		}
		res.Acknowledgments = entries
		res.Accepted = true
		res.Success = true
		res.Kind = KindNone
		return nil
	case parse.Type277:
		r, err := parse.Parse277(ex.response)
		if err != nil {
			return err
		}
		res.ClaimAcknowledgment = r
		res.Accepted = true
		for _, c := range r.Claims {
			if c.Outcome == parse.OutcomeRejected || c.Outcome == parse.OutcomeDenied {
				res.Accepted = false
			}
		}
		res.Success = true
		res.Kind = KindNone
		return nil
	default:
		return unrecognized(ex.detected, "999")
	}
}

// RetrieveRemittance polls mailbox for file and decodes the 835 it holds. The
// file may be raw X12 or a SOAP envelope.
func (s *Service) RetrieveRemittance(ctx context.Context, mailbox clearinghouse.Mailbox, file string) (*RemittanceResult, error) {
	ctx, span, ex := s.begin(ctx, OpRemittance, "")
	res := &RemittanceResult{File: file}

	start := time.Now()
	data, err := s.poller.Poll(ctx, mailbox, file)
	s.metrics.ObserveRoundTrip(OpRemittance, time.Since(start))
	if err == nil {
		err = s.readRemittance(ex, data)
	}
	if err == nil {
		err = s.interpretRemittance(ex, res)
	}
	if err := s.complete(ctx, span, ex, &res.Outcome, res, err); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) readRemittance(ex *exchange, data []byte) error {
	payload := string(bytes.TrimSpace(data))
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		var err error
		if payload, err = soap.Unwrap(data); err != nil {
			return err
		}
	}
	ex.response = payload
	ex.detected = parse.Detect(payload)
	return nil
}

func (s *Service) interpretRemittance(ex *exchange, res *RemittanceResult) error {
	switch ex.detected {
	case parse.Type835:
		r, err := parse.Parse835(ex.response)
		if err != nil {
			return err
		}
		res.Remittance = r
		res.ControlNumber = controlNumber(ex.response)
		res.Success = true
		res.Kind = KindNone
		return nil
	case parse.Type999, parse.TypeTA1:
		entries, err := acknowledgment(ex.response, "837")
		if err != nil {
			return err
		}
		res.Acknowledgments = entries
		return fmt.Errorf("%w: acknowledgment in place of an 835", ErrUnrecognizedResponse)
	default:
		return unrecognized(ex.detected, "835")
	}
}
