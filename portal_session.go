package hrportal

import (
	"context"
	"errors"
	"slices"

	"github.com/MrEthical07/hrportal/internal/flows"
	"github.com/MrEthical07/hrportal/permission"
	"github.com/MrEthical07/hrportal/session"
	"go.uber.org/zap"
)

// delivery is one queued subscriber notification. only targets a single
// subscriber (its initial value); zero means everyone.
type delivery struct {
	value *session.Session
	only  uint64
}

// SignIn authenticates against the backend and makes the resulting session
// current.
//
// Every failure is a *RequestError wrapping ErrInvalidCredentials whose
// Message is the server's text when it sent one, else a generic
// invalid-credentials message. A failed sign-in leaves any existing session
// untouched.
func (p *Portal) SignIn(ctx context.Context, username, password string) (*session.Session, error) {
	if p == nil || !p.flows.Initialized() {
		return nil, ErrPortalNotReady
	}

	res := p.flows.SignIn(ctx, username, password)
	if res.Failure != flows.SignInFailureNone {
		kind := KindTransport
		if res.Failure == flows.SignInFailureRejected || res.Failure == flows.SignInFailureNoToken {
			kind = KindApplication
		}
		err := newRequestError(kind, ErrInvalidCredentials, res.Status, res.Message)
		err.err = res.Err
		err.Method = "POST"
		err.Path = p.config.API.SignInPath

		p.metricInc(MetricSignInFailure)
		p.logger.Info("sign-in failed",
			zap.String("username", username),
			zap.Int("status", res.Status),
			zap.String("reason", err.Message),
		)
		p.emitAudit(ctx, AuditEventSignInFailure, false, nil, err, func() map[string]string {
			return map[string]string{"username": username}
		})
		return nil, err
	}

	p.commit(ctx, res.Session)
	p.metricInc(MetricSignInSuccess)
	p.logger.Info("signed in",
		zap.String("username", res.Session.Username),
		zap.Int64("user_id", res.Session.ID),
		zap.Strings("roles", res.Session.Roles),
	)
	p.emitAudit(ctx, AuditEventSignInSuccess, true, res.Session, nil, nil)

	if p.config.Menu.FetchOnSignIn {
		p.FetchMenu(ctx)
	}

	return res.Session.Clone(), nil
}

// Refresh exchanges the current token for a new one, keeping the identity.
//
// On any failure the session is signed out before Refresh returns. The error
// is a *RequestError of KindRefresh wrapping ErrSessionExpired, or
// ErrNoSession when there was nothing to refresh.
func (p *Portal) Refresh(ctx context.Context) (*session.Session, error) {
	if p == nil || !p.flows.Initialized() {
		return nil, ErrPortalNotReady
	}

	current, _ := p.CurrentSession()
	res := p.flows.Refresh(ctx, current)
	if res.Failure != flows.RefreshFailureNone {
		cause := ErrSessionExpired
		if res.Failure == flows.RefreshFailureNoSession {
			cause = ErrNoSession
		}
		err := newRequestError(KindRefresh, cause, res.Status, res.Message)
		err.Method = "POST"
		err.Path = p.config.API.RefreshPath
		err.err = res.Err
		if res.Failure == flows.RefreshFailureNoToken {
			err.err = ErrRefreshTokenMissing
		}

		p.metricInc(MetricRefreshFailure)
		p.logger.Warn("token refresh failed, signing out",
			zap.Int("status", res.Status),
			zap.String("reason", res.Message),
		)
		p.emitAudit(ctx, AuditEventRefreshFailure, false, current, err, nil)
		if current != nil && p.commitIfToken(ctx, current.Token, nil) {
			p.signedOut(ctx, current)
		}
		return nil, err
	}

	// A SignOut or SignIn that landed while the call was in flight wins.
	if !p.commitIfToken(ctx, current.Token, res.Session) {
		err := newRequestError(KindRefresh, ErrSessionExpired, res.Status, flows.RefreshFallbackMessage)
		err.Method = "POST"
		err.Path = p.config.API.RefreshPath
		p.metricInc(MetricRefreshFailure)
		p.logger.Info("session changed during token refresh, discarding new token")
		p.emitAudit(ctx, AuditEventRefreshFailure, false, current, err, nil)
		return nil, err
	}
	p.metricInc(MetricRefreshSuccess)
	p.logger.Debug("token refreshed", zap.String("username", res.Session.Username))
	p.emitAudit(ctx, AuditEventRefreshSuccess, true, res.Session, nil, nil)

	return res.Session.Clone(), nil
}

// SignOut forgets the session and publishes "no session". It is safe to call
// at any time, concurrently, and from subscriber callbacks.
func (p *Portal) SignOut(ctx context.Context) {
	if p == nil {
		return
	}
	previous, _ := p.CurrentSession()
	p.commit(ctx, nil)
	p.signedOut(ctx, previous)
}

func (p *Portal) signedOut(ctx context.Context, previous *session.Session) {
	p.metricInc(MetricSignOut)
	if previous != nil {
		p.logger.Info("signed out", zap.String("username", previous.Username))
	}
	p.emitAudit(ctx, AuditEventSignOut, true, previous, nil, nil)
}

// CurrentSession returns a copy of the current session.
func (p *Portal) CurrentSession() (*session.Session, bool) {
	if p == nil {
		return nil, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, false
	}
	return p.current.Clone(), true
}

// IsAuthenticated reports whether a session is current.
func (p *Portal) IsAuthenticated() bool {
	_, ok := p.CurrentSession()
	return ok
}

// HasRole reports whether the current session carries role.
func (p *Portal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.HasRole(role)
}

// Roles returns the role set of the current session; empty without one.
func (p *Portal) Roles() permission.RoleSet {
	s, ok := p.CurrentSession()
	if !ok {
		return permission.NewRoleSet()
	}
	return permission.NewRoleSet(s.Roles...)
}

// Subscribe registers fn for session changes. fn is called with the current
// value first and then with every change, in order, one call at a time. A nil
// value means "no session". Values are copies.
//
// fn may call back into the Portal, including SignOut; such changes are
// delivered after fn returns. Subscribing from inside a callback delivers the
// initial value once the running callback returns.
func (p *Portal) Subscribe(fn func(*session.Session)) (unsubscribe func()) {
	if p == nil || fn == nil {
		return func() {}
	}

	p.notifyMu.Lock()
	p.nextSub++
	id := p.nextSub
	p.subs[id] = fn
	p.mu.RLock()
	current := p.current.Clone()
	p.mu.RUnlock()
	p.pending = append(p.pending, delivery{value: current, only: id})
	p.drainLocked()

	return func() {
		p.notifyMu.Lock()
		delete(p.subs, id)
		p.notifyMu.Unlock()
	}
}

// commit makes s current, persists it and queues the notification. State and
// queue order are updated under notifyMu so subscribers see changes in the
// order they were applied.
func (p *Portal) commit(ctx context.Context, s *session.Session) {
	s = s.Clone()

	p.notifyMu.Lock()
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
	p.pending = append(p.pending, delivery{value: s})
	p.persist(ctx, s)
	p.drainLocked()
}

// commitIfToken commits s only while the current session still carries token.
// It reports whether the change was applied.
func (p *Portal) commitIfToken(ctx context.Context, token string, s *session.Session) bool {
	s = s.Clone()

	p.notifyMu.Lock()
	p.mu.Lock()
	if p.current == nil || p.current.Token != token {
		p.mu.Unlock()
		p.notifyMu.Unlock()
		return false
	}
	p.current = s
	p.mu.Unlock()
	p.pending = append(p.pending, delivery{value: s})
	p.persist(ctx, s)
	p.drainLocked()
	return true
}

// drainLocked delivers queued notifications. It must be called with notifyMu
// held and releases it. Only one goroutine drains at a time; the others
// enqueue and return.
func (p *Portal) drainLocked() {
	if p.draining {
		p.notifyMu.Unlock()
		return
	}
	p.draining = true
	for len(p.pending) > 0 {
		next := p.pending[0]
		p.pending = p.pending[1:]

		var targets []func(*session.Session)
		if next.only != 0 {
			if fn, ok := p.subs[next.only]; ok {
				targets = append(targets, fn)
			}
		} else {
			ids := make([]uint64, 0, len(p.subs))
			for id := range p.subs {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			for _, id := range ids {
				targets = append(targets, p.subs[id])
			}
		}

		p.notifyMu.Unlock()
		for _, fn := range targets {
			p.deliver(fn, next.value)
		}
		p.notifyMu.Lock()
	}
	p.draining = false
	p.notifyMu.Unlock()
}

func (p *Portal) deliver(fn func(*session.Session), s *session.Session) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("session subscriber panicked", zap.Any("panic", r))
		}
	}()
	fn(s.Clone())
}

// persist writes s (or clears the store for nil). Store failures are logged
// and never fail the session change.
func (p *Portal) persist(ctx context.Context, s *session.Session) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	if s == nil {
		err = p.store.Clear(ctx)
	} else {
		err = p.store.Save(ctx, s)
	}
	if err != nil {
		p.logger.Warn("credential store write failed", zap.Error(err))
	}
}

// restore loads the stored session. Corrupt or unreadable values count as
// absent.
func (p *Portal) restore(ctx context.Context) {
	s, err := p.store.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrCorrupt) {
			p.logger.Warn("stored session is corrupt, starting signed out", zap.Error(err))
		} else {
			p.logger.Warn("credential store unavailable, starting signed out", zap.Error(err))
		}
		return
	}
	if s == nil || s.Token == "" {
		return
	}
	p.mu.Lock()
	p.current = s.Clone()
	p.mu.Unlock()
	p.logger.Debug("session restored", zap.String("username", s.Username))
}
