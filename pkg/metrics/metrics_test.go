package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	m := New("test", "flow")
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Registry() == nil {
		t.Fatal("registry should not be nil")
	}

	// Независимые реестры не конфликтуют
	m2 := New("test", "flow")
	if m2.Registry() == m.Registry() {
		t.Error("each Metrics must own its registry")
	}
}

func TestGet(t *testing.T) {
	defaultMetrics = nil

	m := Get()
	if m == nil {
		t.Fatal("Get() should not return nil")
	}
	if Get() != m {
		t.Error("Get() should return same instance")
	}

	m3 := InitMetrics("other", "")
	if Get() != m3 {
		t.Error("InitMetrics should replace the global instance")
	}
}

func TestRecordRun(t *testing.T) {
	m := New("test", "")

	m.RecordRun(6, 3, 23, 2*time.Millisecond)
	m.RecordCachedRun()
	m.RecordRunError("SOURCE_EQUALS_SINK")

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success", "computed")); got != 1 {
		t.Errorf("computed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success", "cache")); got != 1 {
		t.Errorf("cached runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("SOURCE_EQUALS_SINK", "computed")); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastMaxFlow); got != 23 {
		t.Errorf("last max flow = %v, want 23", got)
	}
}

func TestRecordCounters(t *testing.T) {
	m := New("test", "")

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordHistoryOp("create", nil)
	m.RecordHistoryOp("create", errors.New("boom"))
	m.RecordReport("pdf")
	m.RecordHTTPRequest("GET", "/api/v1/runs", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HistoryOps.WithLabelValues("create", "error")); got != 1 {
		t.Errorf("history errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated.WithLabelValues("pdf")); got != 1 {
		t.Errorf("pdf reports = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/runs", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New("test", "")
	m.SetServiceInfo("1.0.0", "test")
	m.RecordRun(2, 1, 5, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"test_runs_total", "test_service_info", "test_runtime_goroutines", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestTimer(t *testing.T) {
	m := New("test", "")
	timer := NewTimer(m.RunDuration)
	time.Sleep(5 * time.Millisecond)

	if d := timer.ObserveDuration(); d < 5*time.Millisecond {
		t.Errorf("duration = %v, want >= 5ms", d)
	}
}
