package hrportal

import (
	"net/http"
	"testing"
)

func TestPortalMetricsDisabledRecordNothing(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{noMetrics: true})

	mustSignIn(t, p, "asha", "correct-horse")
	p.SignOut(t.Context())

	for id, v := range p.MetricsSnapshot().Counters {
		if v != 0 {
			t.Fatalf("expected no counts with metrics disabled, got %d for %d", v, id)
		}
	}
}

func TestPortalLatencyHistogram(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{configure: func(c *Config) {
		c.Metrics.EnableLatencyHistograms = true
	}})
	mustSignIn(t, p, "asha", "correct-horse")

	for range 3 {
		if _, err := p.Request(t.Context(), http.MethodGet, PathEmployees, nil, nil); err != nil {
			t.Fatalf("Request failed: %v", err)
		}
	}

	var total uint64
	for _, n := range p.MetricsSnapshot().Histograms[MetricRequestLatency] {
		total += n
	}
	// sign-in plus three requests
	if total != 4 {
		t.Fatalf("expected 4 observations, got %d", total)
	}
}

func TestPortalMetricsCountOutcomes(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{})

	_, _ = p.SignIn(t.Context(), "asha", "wrong")
	mustSignIn(t, p, "asha", "correct-horse")
	_, _ = p.Request(t.Context(), http.MethodGet, "diagnostics/failure", nil, nil)
	_, _ = p.Request(t.Context(), http.MethodGet, "missing", nil, nil)
	p.SignOut(t.Context())

	snap := p.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricSignInFailure:    1,
		MetricSignInSuccess:    1,
		MetricApplicationError: 1,
		MetricTransportError:   1,
		MetricSignOut:          1,
	}
	for id, n := range want {
		if snap.Counters[id] != n {
			t.Fatalf("metric %d: expected %d, got %d", id, n, snap.Counters[id])
		}
	}
}
