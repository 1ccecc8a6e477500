package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), DefaultConfig("edi-gateway"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, sdktrace.AlwaysSample().Description()},
		{2, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestInitInstallsPropagator(t *testing.T) {
	if _, err := Init(context.Background(), DefaultConfig("inquiry-worker")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("propagator fields = %v, want traceparent", fields)
	}
}

func TestResourceAttributes(t *testing.T) {
	cfg := DefaultConfig("edi-gateway")
	cfg.Attributes = map[string]string{
		"edi.usage_indicator": "T",
		"edi.clearinghouse":   "officeally",
		"edi.empty":           "",
	}

	got := map[string]string{}
	var order []string
	for _, kv := range resourceAttributes(cfg) {
		got[string(kv.Key)] = kv.Value.Emit()
		order = append(order, string(kv.Key))
	}
	if got["service.name"] != "edi-gateway" || got["edi.clearinghouse"] != "officeally" || got["edi.usage_indicator"] != "T" {
		t.Errorf("attributes = %v", got)
	}
	if _, ok := got["edi.empty"]; ok {
		t.Error("empty attributes should be dropped")
	}
	if order[len(order)-2] != "edi.clearinghouse" {
		t.Errorf("custom attributes should be sorted: %v", order)
	}
}
