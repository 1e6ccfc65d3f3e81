//go:build integration
// +build integration

package test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/hrportal"
)

func TestSharedRefreshUnderLoad(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, func(c *hrportal.Config) {
		c.Gateway.RefreshCoordination = hrportal.CoordinateShared
	})
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	const rounds, callers = 5, 16
	for round := range rounds {
		e.stub.ExpireTokens()
		e.stub.SetRefreshDelay(20 * time.Millisecond)

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for range callers {
			wg.Go(func() {
				_, err := p.Request(t.Context(), http.MethodGet, hrportal.PathEmployees, nil, nil)
				errs <- err
			})
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
	}

	if got := e.stub.RefreshCalls(); got < rounds || got > rounds*callers {
		t.Fatalf("unexpected refresh count %d", got)
	}
	if !p.IsAuthenticated() {
		t.Fatal("expected session to survive")
	}
}

func TestSingleWinnerNeverDoubleRefreshes(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, nil)
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	e.stub.ExpireTokens()
	e.stub.SetRefreshDelay(100 * time.Millisecond)

	const callers = 16
	var wg sync.WaitGroup
	for range callers {
		wg.Go(func() {
			_, _ = p.Request(t.Context(), http.MethodGet, hrportal.PathEmployees, nil, nil)
		})
	}
	wg.Wait()

	// Every successful refresh consumes the token it was given, so a second
	// concurrent refresh with the same token would fail and sign out.
	if !p.IsAuthenticated() {
		t.Fatal("expected session to survive the burst")
	}
	snap := p.MetricsSnapshot()
	if snap.Counters[hrportal.MetricRefreshFailure] != 0 {
		t.Fatalf("unexpected refresh failures %d", snap.Counters[hrportal.MetricRefreshFailure])
	}
}
