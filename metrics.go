package hrportal

import (
	"time"

	internalmetrics "github.com/MrEthical07/hrportal/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

// Metrics holds the counters of one Portal. A nil *Metrics discards
// everything.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy returned by [Portal.MetricsSnapshot].
type MetricsSnapshot = internalmetrics.Snapshot

const (
	// MetricSignInSuccess counts sessions established by SignIn.
	MetricSignInSuccess = internalmetrics.MetricSignInSuccess
	// MetricSignInFailure counts SignIn calls that returned an error.
	MetricSignInFailure = internalmetrics.MetricSignInFailure
	// MetricRefreshSuccess counts token refreshes that produced a new token.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes that forced a sign-out.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshCoalesced counts 401s that did not start a refresh because
	// one was already in flight.
	MetricRefreshCoalesced = internalmetrics.MetricRefreshCoalesced
	// MetricRequestRetried counts requests replayed after a refresh.
	MetricRequestRetried = internalmetrics.MetricRequestRetried
	// MetricUnauthorizedSurfaced counts 401s returned to callers.
	MetricUnauthorizedSurfaced = internalmetrics.MetricUnauthorizedSurfaced
	// MetricApplicationError counts 2xx responses with a failure envelope.
	MetricApplicationError = internalmetrics.MetricApplicationError
	// MetricTransportError counts network failures and non-401 error statuses.
	MetricTransportError = internalmetrics.MetricTransportError
	// MetricSignOut counts sign-outs, explicit or forced.
	MetricSignOut = internalmetrics.MetricSignOut
	// MetricSignInRedirect counts deferred redirects to the sign-in route.
	MetricSignInRedirect = internalmetrics.MetricSignInRedirect
	// MetricMenuFetchSuccess counts menu loads.
	MetricMenuFetchSuccess = internalmetrics.MetricMenuFetchSuccess
	// MetricMenuFetchFailure counts menu loads that fell back to an empty tree.
	MetricMenuFetchFailure = internalmetrics.MetricMenuFetchFailure
	// MetricGuardAdmit counts guard decisions that admitted navigation.
	MetricGuardAdmit = internalmetrics.MetricGuardAdmit
	// MetricGuardRedirect counts guard decisions that redirected.
	MetricGuardRedirect = internalmetrics.MetricGuardRedirect
	// MetricRequestLatency is the gateway round-trip histogram.
	MetricRequestLatency = internalmetrics.MetricRequestLatency
)

// NewMetrics returns a Metrics recorder for cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}

// PortalState is the live view the exporters publish as gauges.
type PortalState struct {
	SessionActive bool
	// MenuPaths is the number of routes the loaded menu grants.
	MenuPaths int
	// TokenTTL is 0 when the token has no exp claim or has expired.
	TokenTTL time.Duration
}

// State reports the current session, menu and token lifetime.
func (p *Portal) State() PortalState {
	var st PortalState
	if p == nil {
		return st
	}
	if _, ok := p.CurrentSession(); ok {
		st.SessionActive = true
		if exp, ok := p.TokenExpiry(); ok {
			st.TokenTTL = max(time.Until(exp), 0)
		}
	}
	if p.menu != nil {
		st.MenuPaths = len(p.menu.AllowedPaths())
	}
	return st
}
