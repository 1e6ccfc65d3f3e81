package hrportal

import (
	"net/http"
	"slices"
	"sync"
	"sync/atomic"

	internalaudit "github.com/MrEthical07/hrportal/internal/audit"
	"github.com/MrEthical07/hrportal/internal/flows"
	"github.com/MrEthical07/hrportal/menu"
	"github.com/MrEthical07/hrportal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Portal is the client-side session and authorization pipeline of the HR
// shell. It owns the current session, the request gateway, the menu
// directory and the route guards.
//
// A Portal is safe for concurrent use by multiple goroutines.
type Portal struct {
	config    Config
	client    *http.Client
	store     session.Store
	navigator Navigator
	logger    *zap.Logger
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	flows     flows.Service
	menu      *menu.Directory

	mu      sync.RWMutex
	current *session.Session

	notifyMu sync.Mutex
	subs     map[uint64]func(*session.Session)
	nextSub  uint64
	pending  []delivery
	draining bool

	refreshing   atomic.Bool
	refreshGroup singleflight.Group

	redirectMu sync.Mutex
	redirects  sync.WaitGroup
	closed     bool
}

// Close waits for scheduled redirects and flushes the audit dispatcher.
// The current session is left in place.
func (p *Portal) Close() {
	if p == nil {
		return
	}
	p.redirectMu.Lock()
	p.closed = true
	p.redirectMu.Unlock()
	p.redirects.Wait()
	p.audit.Close()
}

// Config returns a copy of the configuration the Portal was built with.
func (p *Portal) Config() Config {
	cfg := p.config
	cfg.Audit.Events = slices.Clone(cfg.Audit.Events)
	return cfg
}

// Menu returns the menu directory fed by this Portal.
func (p *Portal) Menu() *menu.Directory {
	return p.menu
}

// AuditDropped reports audit events discarded because the buffer was full.
func (p *Portal) AuditDropped() uint64 {
	if p == nil {
		return 0
	}
	return p.audit.Dropped()
}

// MetricsSnapshot returns a copy of all counters.
func (p *Portal) MetricsSnapshot() MetricsSnapshot {
	if p == nil || p.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return p.metrics.Snapshot()
}

// WaitRedirects blocks until every scheduled sign-in redirect has run.
func (p *Portal) WaitRedirects() {
	p.redirects.Wait()
}

func (p *Portal) metricInc(id MetricID) {
	p.metrics.Inc(id)
}
