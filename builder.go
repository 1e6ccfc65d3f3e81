package hrportal

import (
	"context"
	"errors"
	"net/http"
	"slices"

	internalaudit "github.com/MrEthical07/hrportal/internal/audit"
	"github.com/MrEthical07/hrportal/internal/flows"
	"github.com/MrEthical07/hrportal/menu"
	"github.com/MrEthical07/hrportal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a Portal.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store      session.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	navigator  Navigator
	logger     *zap.Logger
	auditSink  AuditSink

	built bool
}

// New starts a Builder from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets API.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithCredentialStore sets where the session is persisted. Without a store
// (and without WithRedis) the Portal uses a NopStore.
func (b *Builder) WithCredentialStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis persists the session in Redis under the Session config's prefix,
// scope and TTL. An explicit WithCredentialStore takes precedence.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient sets the client used for every backend call. The default
// client applies API.Timeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithNavigator sets the router that receives sign-in redirects.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Portal. When
// Session.RestoreOnBuild is set the stored session, if any, becomes current.
//
// A Builder can be used once.
func (b *Builder) Build() (*Portal, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Audit.Events = slices.Clone(cfg.Audit.Events)

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.Scope, cfg.Session.TTL)
	}
	if store == nil {
		store = session.NopStore{}
	}

	client := b.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.API.Timeout}
	}

	nav := b.navigator
	if nav == nil {
		nav = NopNavigator{}
	}

	p := &Portal{
		config:    cfg,
		client:    client,
		store:     store,
		navigator: nav,
		logger:    logger.Named("hrportal"),
		metrics:   NewMetrics(cfg.Metrics),
		subs:      make(map[uint64]func(*session.Session)),
	}
	p.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		Events:     cfg.Audit.Events,
	}, b.auditSink)
	p.flows = flows.New(flows.Deps{
		SignIn:  flows.SignInDeps{Path: cfg.API.SignInPath, Call: p.callAuthEndpoint},
		Refresh: flows.RefreshDeps{Path: cfg.API.RefreshPath, Call: p.callAuthEndpoint},
	})
	p.menu = menu.NewDirectory(menu.SourceFunc(p.loadMenu))

	if cfg.Session.RestoreOnBuild {
		p.restore(context.Background())
	}
	p.Subscribe(func(s *session.Session) {
		if s == nil {
			p.menu.Clear()
		}
	})

	b.built = true

	return p, nil
}
