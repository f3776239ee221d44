package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
)

type fakeSource struct {
	snapshot goGuard.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goGuard.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters:   map[goGuard.MetricID]uint64{},
			Histograms: map[goGuard.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricLoginSuccess:        7,
				goGuard.MetricRefreshRaceAbsorbed: 4,
				goGuard.MetricRefreshLockTimeout:  1,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricAuthorizeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "goguard_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "goguard_refresh_race_absorbed_total 4") {
		t.Fatalf("expected race_absorbed counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "goguard_authorize_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "goguard_authorize_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "goguard_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters:   map[goGuard.MetricID]uint64{goGuard.MetricLoginSuccess: 1},
			Histograms: map[goGuard.MetricID][]uint64{},
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
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricLoginSuccess:       1000,
				goGuard.MetricLoginFailure:       40,
				goGuard.MetricRefreshSuccess:     800,
				goGuard.MetricRefreshFailure:     10,
				goGuard.MetricSessionCreated:     800,
				goGuard.MetricSessionInvalidated: 20,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricAuthorizeLatency: {10, 20, 30, 40, 50, 60, 70, 80},
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
