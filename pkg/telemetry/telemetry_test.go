package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"flowtrace/pkg/config"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	Install(tp, "test")
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		setGlobal(nil)
	})
	return rec
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(
		config.AppConfig{Name: "flowtrace", Version: "1.2.3", Environment: "test"},
		config.TracingConfig{Enabled: true, Endpoint: "otel:4317", SampleRate: 0.5, Insecure: true},
	)

	if cfg.ServiceName != "flowtrace" {
		t.Errorf("ServiceName = %s, want app name fallback", cfg.ServiceName)
	}
	if cfg.Version != "1.2.3" || cfg.Environment != "test" {
		t.Errorf("app metadata not copied: %+v", cfg)
	}
	if !cfg.Enabled || !cfg.Insecure || cfg.Endpoint != "otel:4317" {
		t.Errorf("tracing fields not copied: %+v", cfg)
	}
}

func TestInit_Disabled(t *testing.T) {
	provider, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { setGlobal(nil) })

	if provider.Tracer() == nil {
		t.Error("tracer should not be nil even when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestGet_Uninitialized(t *testing.T) {
	setGlobal(nil)

	if Get().Tracer() == nil {
		t.Error("tracer should not be nil")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		got := Sampler(tt.rate).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("Sampler(%v) = %s, want prefix %s", tt.rate, got, tt.want)
		}
	}
}

func TestSpans_Recorded(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "solve")
	SetAttributes(ctx, NetworkAttributes(6, 9, 0, 5)...)
	AddEvent(ctx, "cache_miss", attribute.Bool("hit", false))
	SetError(ctx, errors.New("boom"))
	if TraceID(ctx) == "" {
		t.Error("TraceID should be set inside a recorded span")
	}
	span.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "solve" {
		t.Errorf("span name = %s", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if len(s.Events()) < 2 { // cache_miss + exception
		t.Errorf("expected events, got %d", len(s.Events()))
	}
	if len(s.Attributes()) != 4 {
		t.Errorf("expected 4 network attributes, got %d", len(s.Attributes()))
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
}

func TestRunAttributes(t *testing.T) {
	attrs := RunAttributes(3, 23, true)
	if len(attrs) != 3 {
		t.Errorf("expected 3 attributes, got %d", len(attrs))
	}
}

func TestHTTPMiddleware(t *testing.T) {
	rec := installRecorder(t)

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SpanFromContext(r.Context()).SpanContext().IsValid() {
			t.Error("handler should see the server span")
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/maxflow", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "POST /api/v1/maxflow" {
		t.Errorf("span name = %s", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Error("5xx response should mark span as error")
	}
}
