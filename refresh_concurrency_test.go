package hrportal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/hrportal/internal/hrstub"
)

// burstBackend holds the first n calls to /employees until all n have
// arrived, so every caller observes the expired token at the same time.
func burstBackend(t *testing.T, n int32) (*hrstub.Server, *httptest.Server) {
	t.Helper()
	stub, err := hrstub.New(hrstub.Config{Users: testUsers, Menus: testMenus})
	if err != nil {
		t.Fatalf("hrstub.New failed: %v", err)
	}
	var arrived atomic.Int32
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+PathEmployees && arrived.Add(1) <= n {
			if arrived.Load() >= n {
				once.Do(func() { close(release) })
			}
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}
		}
		stub.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func runBurst(t *testing.T, p *Portal, n int) []error {
	t.Helper()
	var wg sync.WaitGroup
	results := make(chan error, n)
	for range n {
		wg.Go(func() {
			_, err := p.Request(t.Context(), http.MethodGet, PathEmployees, nil, nil)
			results <- err
		})
	}
	wg.Wait()
	close(results)

	out := make([]error, 0, n)
	for err := range results {
		out = append(out, err)
	}
	return out
}

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	const n = 8
	stub, srv := burstBackend(t, n)
	p := newTestPortal(t, srv.URL, portalOptions{})
	mustSignIn(t, p, "asha", "correct-horse")
	stub.ExpireTokens()
	stub.SetRefreshDelay(200 * time.Millisecond)

	success, surfaced := 0, 0
	for _, err := range runBurst(t, p, n) {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrUnauthorized) {
			surfaced++
			continue
		}
		t.Fatalf("unexpected request error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one replayed success, got %d", success)
	}
	if surfaced != n-1 {
		t.Fatalf("expected %d surfaced 401s, got %d", n-1, surfaced)
	}
	if got := stub.RefreshCalls(); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
	snap := p.MetricsSnapshot()
	if snap.Counters[MetricRefreshCoalesced] != n-1 {
		t.Fatalf("expected %d coalesced refreshes, got %d", n-1, snap.Counters[MetricRefreshCoalesced])
	}
	if !p.IsAuthenticated() {
		t.Fatal("expected session to survive the burst")
	}
}

func TestRefreshConcurrencyShared(t *testing.T) {
	const n = 8
	stub, srv := burstBackend(t, n)
	p := newTestPortal(t, srv.URL, portalOptions{shared: true})
	before := mustSignIn(t, p, "asha", "correct-horse")
	stub.ExpireTokens()
	stub.SetRefreshDelay(200 * time.Millisecond)

	for _, err := range runBurst(t, p, n) {
		if err != nil {
			t.Fatalf("expected every caller to be replayed, got %v", err)
		}
	}

	if got := stub.RefreshCalls(); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
	snap := p.MetricsSnapshot()
	if snap.Counters[MetricRefreshSuccess] != 1 || snap.Counters[MetricRequestRetried] != n {
		t.Fatalf("unexpected counters %v", snap.Counters)
	}
	after, _ := p.CurrentSession()
	if after.Token == before.Token {
		t.Fatal("expected refreshed token")
	}
}

func TestRefreshConcurrencySharedFailure(t *testing.T) {
	const n = 4
	stub, srv := burstBackend(t, n)
	nav := NewRecordingNavigator("/claims")
	p := newTestPortal(t, srv.URL, portalOptions{shared: true, navigator: nav})
	mustSignIn(t, p, "asha", "correct-horse")
	stub.ExpireTokens()
	stub.FailRefresh(true)
	stub.SetRefreshDelay(100 * time.Millisecond)

	for _, err := range runBurst(t, p, n) {
		re := mustRequestError(t, err)
		if re.Kind != KindRefresh {
			t.Fatalf("expected refresh failure, got %+v", re)
		}
	}
	p.WaitRedirects()

	if got := stub.RefreshCalls(); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
	if visits := nav.Visits(); len(visits) != 1 || visits[0].Target != "/login" {
		t.Fatalf("expected a single sign-in redirect, got %+v", visits)
	}
	if p.IsAuthenticated() {
		t.Fatal("expected sign-out")
	}
}
