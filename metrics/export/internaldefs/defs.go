package internaldefs

import (
	hrportal "github.com/MrEthical07/hrportal"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   hrportal.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   hrportal.MetricID
	Name string
	Help string
}

// CounterDefs lists every Portal counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: hrportal.MetricSignInSuccess, Name: "hrportal_sign_in_success_total", Help: "Sessions established by sign-in."},
	{ID: hrportal.MetricSignInFailure, Name: "hrportal_sign_in_failure_total", Help: "Failed sign-in attempts."},
	{ID: hrportal.MetricRefreshSuccess, Name: "hrportal_refresh_success_total", Help: "Token refreshes that produced a new token."},
	{ID: hrportal.MetricRefreshFailure, Name: "hrportal_refresh_failure_total", Help: "Token refreshes that forced a sign-out."},
	{ID: hrportal.MetricRefreshCoalesced, Name: "hrportal_refresh_coalesced_total", Help: "401 responses that joined or lost to an in-flight refresh."},
	{ID: hrportal.MetricRequestRetried, Name: "hrportal_request_retried_total", Help: "Requests replayed after a refresh."},
	{ID: hrportal.MetricUnauthorizedSurfaced, Name: "hrportal_unauthorized_surfaced_total", Help: "401 responses returned to callers."},
	{ID: hrportal.MetricApplicationError, Name: "hrportal_application_error_total", Help: "2xx responses carrying a failure envelope."},
	{ID: hrportal.MetricTransportError, Name: "hrportal_transport_error_total", Help: "Network failures and non-401 error statuses."},
	{ID: hrportal.MetricSignOut, Name: "hrportal_sign_out_total", Help: "Sign-outs, explicit or forced."},
	{ID: hrportal.MetricSignInRedirect, Name: "hrportal_sign_in_redirect_total", Help: "Deferred redirects to the sign-in route."},
	{ID: hrportal.MetricMenuFetchSuccess, Name: "hrportal_menu_fetch_success_total", Help: "Successful menu loads."},
	{ID: hrportal.MetricMenuFetchFailure, Name: "hrportal_menu_fetch_failure_total", Help: "Menu loads that fell back to an empty tree."},
	{ID: hrportal.MetricGuardAdmit, Name: "hrportal_guard_admit_total", Help: "Guard decisions that admitted navigation."},
	{ID: hrportal.MetricGuardRedirect, Name: "hrportal_guard_redirect_total", Help: "Guard decisions that redirected."},
}

// GaugeDef names one gauge read from [hrportal.PortalState].
type GaugeDef struct {
	Name  string
	Help  string
	Value func(hrportal.PortalState) float64
}

// GaugeDefs lists the Portal state gauges in exposition order.
var GaugeDefs = []GaugeDef{
	{Name: "hrportal_session_active", Help: "1 while a session is current.", Value: func(s hrportal.PortalState) float64 {
		if s.SessionActive {
			return 1
		}
		return 0
	}},
	{Name: "hrportal_menu_paths", Help: "Routes granted by the loaded menu.", Value: func(s hrportal.PortalState) float64 {
		return float64(s.MenuPaths)
	}},
	{Name: "hrportal_token_ttl_seconds", Help: "Seconds until the session token expires.", Value: func(s hrportal.PortalState) float64 {
		return s.TokenTTL.Seconds()
	}},
}

// HistogramDefs lists every Portal histogram.
var HistogramDefs = []HistogramDef{
	{ID: hrportal.MetricRequestLatency, Name: "hrportal_request_latency_seconds", Help: "Gateway round-trip latency histogram."},
}

// HistogramBounds are the upper bounds of the latency buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as instrument name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "hrportal_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
