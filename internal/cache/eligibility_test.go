package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/x12/generate"
)

func TestEligibilityCache(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := NewEligibilityCache(time.Minute, time.Minute, m)
	c.now = func() time.Time { return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) }

	p := generate.Patient{FirstName: "Jane", LastName: "Doe", DateOfBirth: "1980-01-01"}
	key := c.Key(p, "60054")

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache should miss")
	}

	res := &inquiry.EligibilityResult{Outcome: inquiry.Outcome{Success: true, Kind: inquiry.KindNone}, PayerID: "60054"}
	if !c.Set(key, res) {
		t.Fatal("active coverage should be cached")
	}
	got, ok := c.Get(key)
	if !ok || got.PayerID != "60054" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	if v := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); v != 1 {
		t.Errorf("hits = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); v != 1 {
		t.Errorf("misses = %v, want 1", v)
	}
}

func TestEligibilityCacheKey(t *testing.T) {
	c := NewEligibilityCache(time.Minute, time.Minute, nil)
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return day }

	p := generate.Patient{FirstName: "Jane", LastName: "Doe", DateOfBirth: "1980-01-01"}
	lower := generate.Patient{FirstName: " jane", LastName: "doe ", DateOfBirth: "1980-01-01"}
	if c.Key(p, "60054") != c.Key(lower, "60054") {
		t.Error("keys should ignore case and padding")
	}
	if c.Key(p, "60054") == c.Key(p, "UTMCD") {
		t.Error("keys should differ by payer")
	}

	k1 := c.Key(p, "60054")
	c.now = func() time.Time { return day.Add(24 * time.Hour) }
	if c.Key(p, "60054") == k1 {
		t.Error("keys should roll over daily")
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		kind inquiry.Kind
		want bool
	}{
		{inquiry.KindNone, true},
		{inquiry.KindNoActiveCoverage, true},
		{inquiry.KindTransportFault, false},
		{inquiry.KindFunctionalRejection, false},
		{inquiry.KindValidation, false},
		{inquiry.KindUnrecognizedResponse, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := Cacheable(inquiry.Outcome{Kind: tt.kind}); got != tt.want {
				t.Errorf("Cacheable(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}

	c := NewEligibilityCache(time.Minute, time.Minute, nil)
	if c.Set("k", &inquiry.EligibilityResult{Outcome: inquiry.Outcome{Kind: inquiry.KindTransportFault}}) {
		t.Error("transport faults must not be cached")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
}
