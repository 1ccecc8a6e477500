// Package clearinghouse moves SOAP envelopes to and from a clearinghouse.
//
// The client knows nothing about X12; it posts bytes, returns bytes, and turns
// HTTP-level failures into *soap.TransportFault values.
package clearinghouse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/soap"
	"github.com/drfirst/go-edi/pkg/circuitbreaker"
)

// Fault codes for failures detected by the client rather than the clearinghouse
const (
	FaultCircuitOpen = "CircuitOpen"
	faultHTTPPrefix  = "HTTP "
)

// ErrResponseTooLarge is returned when a response body exceeds MaxResponseBytes
var ErrResponseTooLarge = errors.New("clearinghouse response too large")

// Transport sends a request envelope and returns the response envelope
type Transport interface {
	Send(ctx context.Context, envelope []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, envelope []byte) ([]byte, error)

// Send calls f
func (f TransportFunc) Send(ctx context.Context, envelope []byte) ([]byte, error) {
	return f(ctx, envelope)
}

// Config holds client configuration
type Config struct {
	// Name identifies the clearinghouse in logs and metrics
	Name string
	// Endpoint is the CORE real-time URL
	Endpoint string
	// Timeout bounds one round trip
	Timeout time.Duration
	// RatePerSecond limits outbound requests; zero disables the limiter
	RatePerSecond float64
	// Burst is the limiter bucket size
	Burst int
	// MaxResponseBytes caps the response body read
	MaxResponseBytes int64
	// Breaker configures the endpoint's circuit breaker
	Breaker circuitbreaker.Config
}

// DefaultConfig returns defaults for a real-time endpoint
func DefaultConfig(name, endpoint string) Config {
	return Config{
		Name:             name,
		Endpoint:         endpoint,
		Timeout:          60 * time.Second,
		RatePerSecond:    5,
		Burst:            5,
		MaxResponseBytes: 10 << 20,
		Breaker:          circuitbreaker.DefaultConfig(endpoint),
	}
}

// Client posts SOAP envelopes over HTTP
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *circuitbreaker.CircuitBreaker
	breakers *circuitbreaker.Manager
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *metrics.Metrics
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records breaker state on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreakers shares breakers across clients hitting the same endpoint
func WithBreakers(m *circuitbreaker.Manager) Option {
	return func(c *Client) { c.breakers = m }
}

// NewClient creates a clearinghouse client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("clearinghouse endpoint is required")
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultConfig(cfg.Name, cfg.Endpoint).MaxResponseBytes
	}

	c := &Client{
		cfg:    cfg,
		logger: zap.NewNop(),
		tracer: otel.Tracer("clearinghouse"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	bcfg := cfg.Breaker
	if bcfg.IsSuccessful == nil {
		bcfg.IsSuccessful = breakerSuccess
	}
	if bcfg.OnStateChange == nil {
		bcfg.OnStateChange = func(name string, _, to circuitbreaker.State) {
			c.metrics.SetBreakerState(name, to.Value())
		}
	}
	var err error
	if c.breakers != nil {
		c.breaker, err = c.breakers.GetOrCreate(cfg.Endpoint, bcfg)
	} else {
		bcfg.Name = cfg.Endpoint
		c.breaker, err = circuitbreaker.New(bcfg, c.logger)
	}
	if err != nil {
		return nil, fmt.Errorf("create circuit breaker: %w", err)
	}
	return c, nil
}

// Send posts one envelope. Non-2xx responses and an open breaker come back as
// *soap.TransportFault; network errors are returned wrapped.
func (c *Client) Send(ctx context.Context, envelope []byte) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "clearinghouse.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("clearinghouse", c.cfg.Name),
			attribute.Int("request_bytes", len(envelope)),
		))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	body, err := circuitbreaker.Call(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
		return c.post(ctx, envelope)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			err = &soap.TransportFault{Code: FaultCircuitOpen, Message: err.Error()}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "clearinghouse round trip failed")
		c.logger.Warn("clearinghouse round trip failed",
			zap.String("clearinghouse", c.cfg.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("response_bytes", len(body)))
	c.logger.Debug("clearinghouse round trip",
		zap.String("clearinghouse", c.cfg.Name),
		zap.Int("response_bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) post(ctx context.Context, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", soap.ContentType)
	req.Header.Set("Accept", "application/soap+xml, text/xml")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clearinghouse request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read clearinghouse response: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxResponseBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, c.cfg.MaxResponseBytes)
	}
	if resp.StatusCode/100 == 2 {
		return body, nil
	}
	return nil, statusFault(resp.StatusCode, body)
}

// httpStatusError keeps the status code next to the fault so the breaker can
// tell client errors from server errors
type httpStatusError struct {
	status int
	fault  *soap.TransportFault
}

func (e *httpStatusError) Error() string { return e.fault.Error() }

func (e *httpStatusError) Unwrap() error { return e.fault }

func statusFault(status int, body []byte) error {
	var fault *soap.TransportFault
	if err := soap.CheckFault(body); err != nil && errors.As(err, &fault) {
		return &httpStatusError{status: status, fault: fault}
	}
	return &httpStatusError{
		status: status,
		fault: &soap.TransportFault{
			Code:    faultHTTPPrefix + strconv.Itoa(status),
			Message: http.StatusText(status),
			Raw:     string(body),
		},
	}
}

// breakerSuccess treats 4xx responses as the caller's problem
func breakerSuccess(err error) bool {
	if circuitbreaker.DefaultIsSuccessful(err) {
		return true
	}
	var se *httpStatusError
	return errors.As(err, &se) && se.status >= 400 && se.status < 500 && se.status != http.StatusTooManyRequests
}

// Breaker exposes the endpoint breaker for health reporting
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}
