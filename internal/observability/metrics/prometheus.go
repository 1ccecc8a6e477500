// Package metrics provides Prometheus metrics for the EDI gateway and worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TransactionsGenerated *prometheus.CounterVec
	ResponsesParsed       *prometheus.CounterVec
	FunctionalRejections  *prometheus.CounterVec
	RoundTripDuration     *prometheus.HistogramVec
	CacheLookups          *prometheus.CounterVec
	KafkaMessagesProduced prometheus.Counter
	KafkaMessagesConsumed prometheus.Counter
	OutboxPending         prometheus.Gauge
	CircuitBreakerState   *prometheus.GaugeVec
}

// New creates all metrics and registers them on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		TransactionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edi_transactions_generated_total",
			Help: "Total X12 transactions generated by transaction set",
		}, []string{"transaction"}),
		ResponsesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edi_responses_parsed_total",
			Help: "Total clearinghouse responses by transaction set and outcome kind",
		}, []string{"transaction", "kind"}),
		FunctionalRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edi_functional_rejections_total",
			Help: "Total 999/TA1/AAA rejections by submitted transaction set",
		}, []string{"transaction"}),
		RoundTripDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edi_clearinghouse_round_trip_seconds",
			Help:    "Clearinghouse round trip duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edi_eligibility_cache_lookups_total",
			Help: "Eligibility cache lookups by result",
		}, []string{"result"}),
		KafkaMessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total Kafka messages produced",
		}),
		KafkaMessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total Kafka messages consumed",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.TransactionsGenerated,
		m.ResponsesParsed,
		m.FunctionalRejections,
		m.RoundTripDuration,
		m.CacheLookups,
		m.KafkaMessagesProduced,
		m.KafkaMessagesConsumed,
		m.OutboxPending,
		m.CircuitBreakerState,
	)

	return m
}

// Generated counts one generated transaction
func (m *Metrics) Generated(transaction string) {
	if m == nil {
		return
	}
	m.TransactionsGenerated.WithLabelValues(transaction).Inc()
}

// Parsed counts one classified response
func (m *Metrics) Parsed(transaction, kind string) {
	if m == nil {
		return
	}
	m.ResponsesParsed.WithLabelValues(transaction, kind).Inc()
}

// Rejected counts one functional rejection
func (m *Metrics) Rejected(transaction string) {
	if m == nil {
		return
	}
	m.FunctionalRejections.WithLabelValues(transaction).Inc()
}

// ObserveRoundTrip records a clearinghouse round trip
func (m *Metrics) ObserveRoundTrip(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.RoundTripDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// CacheLookup records an eligibility cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Produced counts a Kafka record written
func (m *Metrics) Produced() {
	if m == nil {
		return
	}
	m.KafkaMessagesProduced.Inc()
}

// Consumed counts a Kafka record read
func (m *Metrics) Consumed() {
	if m == nil {
		return
	}
	m.KafkaMessagesConsumed.Inc()
}

// SetOutboxPending records the outbox backlog
func (m *Metrics) SetOutboxPending(n int) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(n))
}

// SetBreakerState records a breaker state as 0, 1 or 2
func (m *Metrics) SetBreakerState(name string, value float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(value)
}

// Handler returns the Prometheus HTTP handler for the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a handler serving only the given gatherer
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
