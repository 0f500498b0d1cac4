package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dnaAuth "github.com/MrEthical07/dnaAuth"
)

type fakeSource struct {
	snapshot dnaAuth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() dnaAuth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: dnaAuth.MetricsSnapshot{
			Counters:   map[dnaAuth.MetricID]uint64{},
			Histograms: map[dnaAuth.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: dnaAuth.MetricsSnapshot{
			Counters: map[dnaAuth.MetricID]uint64{
				dnaAuth.MetricLoginSuccess: 7,
			},
			Histograms: map[dnaAuth.MetricID][]uint64{
				dnaAuth.MetricAnalyzeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "dnaauth_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dnaauth_analyze_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dnaauth_analyze_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dnaauth_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: dnaAuth.MetricsSnapshot{
			Counters:   map[dnaAuth.MetricID]uint64{dnaAuth.MetricLoginSuccess: 1},
			Histograms: map[dnaAuth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: dnaAuth.MetricsSnapshot{
			Counters: map[dnaAuth.MetricID]uint64{
				dnaAuth.MetricLoginSuccess:     1000,
				dnaAuth.MetricLoginFailure:     40,
				dnaAuth.MetricProfileMatched:   9000,
				dnaAuth.MetricProfileUnmatched: 12000,
				dnaAuth.MetricSessionCreated:   1000,
				dnaAuth.MetricSessionExpired:   20,
				dnaAuth.MetricPermissionDenied: 3,
			},
			Histograms: map[dnaAuth.MetricID][]uint64{
				dnaAuth.MetricAnalyzeLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}

func TestRenderFromEngine(t *testing.T) {
	engine, err := dnaAuth.New().
		WithClock(func() time.Time { return time.UnixMilli(1_740_830_400_000) }).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Login(context.Background(), dnaAuth.Client{UserAgent: "Mozilla/5.0", IP: "203.0.113.7"}); err == nil {
		t.Fatal("expected unmatched login to fail")
	}

	out := NewPrometheusExporter(engine).Render()
	if !strings.Contains(out, "dnaauth_login_failure_total 1") {
		t.Fatalf("expected login failure counter, got:\n%s", out)
	}
	if !strings.Contains(out, "dnaauth_store_error_total 0") {
		t.Fatalf("expected zero-valued counters to be rendered, got:\n%s", out)
	}
}
