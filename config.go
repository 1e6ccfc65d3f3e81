package hrportal

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config defines how a Portal talks to the HR backend and routes navigation.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API     APIConfig
	Routes  RoutesConfig
	Session SessionConfig
	Gateway GatewayConfig
	Menu    MenuConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the backend and its authentication endpoints. Endpoint
// paths are relative to BaseURL.
type APIConfig struct {
	BaseURL     string        `env:"API_BASE_URL"`
	SignInPath  string        `env:"API_SIGNIN_PATH"`
	RefreshPath string        `env:"API_REFRESH_PATH"`
	MenuPath    string        `env:"API_MENU_PATH"`
	Timeout     time.Duration `env:"API_TIMEOUT"`
	UserAgent   string        `env:"API_USER_AGENT"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the shell routes guards redirect to.
type RoutesConfig struct {
	SignInPath     string `env:"ROUTES_SIGNIN_PATH"`
	LandingPath    string `env:"ROUTES_LANDING_PATH"`
	ReturnURLParam string `env:"ROUTES_RETURN_URL_PARAM"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls credential persistence.
//
// RedisPrefix, Scope and TTL apply when the Builder creates a RedisStore from
// a raw client (Builder.WithRedis).
type SessionConfig struct {
	RestoreOnBuild bool          `env:"SESSION_RESTORE_ON_BUILD"`
	RedisPrefix    string        `env:"SESSION_REDIS_PREFIX"`
	Scope          string        `env:"SESSION_SCOPE"`
	TTL            time.Duration `env:"SESSION_TTL"`
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// RefreshCoordination selects how concurrent 401s share a token refresh.
type RefreshCoordination int

const (
	// CoordinateSingleWinner lets the first 401 refresh and retry. Callers that
	// hit a 401 while that refresh is in flight surface their own 401.
	CoordinateSingleWinner RefreshCoordination = iota
	// CoordinateShared makes concurrent 401s wait for one shared refresh and
	// then each retry once with the new token.
	CoordinateShared
)

func (r RefreshCoordination) String() string {
	switch r {
	case CoordinateSingleWinner:
		return "single"
	case CoordinateShared:
		return "shared"
	default:
		return fmt.Sprintf("RefreshCoordination(%d)", int(r))
	}
}

// UnmarshalText accepts "single" or "shared".
func (r *RefreshCoordination) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "single", "single-winner", "":
		*r = CoordinateSingleWinner
	case "shared":
		*r = CoordinateShared
	default:
		return fmt.Errorf("unknown refresh coordination %q", text)
	}
	return nil
}

// GatewayConfig tunes the request gateway.
type GatewayConfig struct {
	RefreshCoordination RefreshCoordination `env:"GATEWAY_REFRESH_COORDINATION"`
	RequestIDHeader     string              `env:"GATEWAY_REQUEST_ID_HEADER"`
	MaxResponseBytes    int64               `env:"GATEWAY_MAX_RESPONSE_BYTES"`
}

/*
====================================
MENU CONFIG
====================================
*/

// MenuConfig controls when the menu directory loads and clears.
type MenuConfig struct {
	FetchOnSignIn bool `env:"MENU_FETCH_ON_SIGNIN"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"AUDIT_ENABLED"`
	BufferSize int  `env:"AUDIT_BUFFER_SIZE"`
	DropIfFull bool `env:"AUDIT_DROP_IF_FULL"`
	// Events limits delivery to these event types. Empty delivers all.
	Events []string `env:"AUDIT_EVENTS" envSeparator:","`
}

// MetricsConfig controls in-process counters and histograms.
type MetricsConfig struct {
	Enabled                 bool `env:"METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"METRICS_LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the endpoint layout of the HR backend. BaseURL is left
// empty and must be set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			SignInPath:  "auth/signin",
			RefreshPath: "auth/refreshtoken",
			MenuPath:    "menus",
			Timeout:     30 * time.Second,
			UserAgent:   "hrportal",
		},
		Routes: RoutesConfig{
			SignInPath:     "/login",
			LandingPath:    "/",
			ReturnURLParam: "returnUrl",
		},
		Session: SessionConfig{
			RestoreOnBuild: true,
			RedisPrefix:    "hrportal",
			Scope:          "default",
		},
		Gateway: GatewayConfig{
			RefreshCoordination: CoordinateSingleWinner,
			RequestIDHeader:     "X-Request-ID",
			MaxResponseBytes:    32 << 20,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("API BaseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL must use http or https")
	}
	if u.Host == "" {
		return errors.New("API BaseURL must include a host")
	}

	if strings.TrimSpace(c.API.SignInPath) == "" {
		return errors.New("API SignInPath must be set")
	}
	if strings.TrimSpace(c.API.RefreshPath) == "" {
		return errors.New("API RefreshPath must be set")
	}
	if strings.TrimSpace(c.API.MenuPath) == "" {
		return errors.New("API MenuPath must be set")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	if !strings.HasPrefix(c.Routes.SignInPath, "/") {
		return errors.New("Routes SignInPath must start with /")
	}
	if !strings.HasPrefix(c.Routes.LandingPath, "/") {
		return errors.New("Routes LandingPath must start with /")
	}
	if strings.TrimSpace(c.Routes.ReturnURLParam) == "" {
		return errors.New("Routes ReturnURLParam must be set")
	}

	if c.Session.TTL < 0 {
		return errors.New("Session TTL must be >= 0")
	}

	switch c.Gateway.RefreshCoordination {
	case CoordinateSingleWinner, CoordinateShared:
	default:
		return errors.New("Gateway RefreshCoordination is invalid")
	}
	if strings.TrimSpace(c.Gateway.RequestIDHeader) == "" {
		return errors.New("Gateway RequestIDHeader must be set")
	}
	if c.Gateway.MaxResponseBytes <= 0 {
		return errors.New("Gateway MaxResponseBytes must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	for _, e := range c.Audit.Events {
		if !slices.Contains(auditEventTypes, e) {
			return fmt.Errorf("Audit Events has unknown event type %q", e)
		}
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal configuration concern.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of Config.Lint.
type LintWarnings []LintWarning

// Codes lists the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// Lint flags valid but risky settings.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopbackHost(u.Hostname()) {
		ws = append(ws, LintWarning{Code: "base_url_insecure", Message: "bearer tokens will travel over plain http"})
	}
	if c.API.Timeout == 0 {
		ws = append(ws, LintWarning{Code: "timeout_unbounded", Message: "API Timeout of 0 lets a stalled backend hang callers"})
	}
	if !c.Audit.Enabled {
		ws = append(ws, LintWarning{Code: "audit_disabled", Message: "sign-in and refresh outcomes are not audited"})
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		ws = append(ws, LintWarning{Code: "latency_without_metrics", Message: "latency histograms need Metrics.Enabled"})
	}
	return ws
}

func isLoopbackHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
