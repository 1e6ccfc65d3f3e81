package flows

import (
	"context"
	"net/http"

	"github.com/MrEthical07/hrportal/session"
)

// Reply is the raw outcome of one backend call.
type Reply struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r Reply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Caller POSTs payload as JSON to path. A non-empty bearer is sent as the
// Authorization header. The error is non-nil only when no response arrived.
type Caller func(ctx context.Context, path string, payload any, bearer string) (Reply, error)

// Deps groups flow dependency sets. The root Portal builds this once and
// delegates sign-in and refresh to the matching flow.
type Deps struct {
	SignIn  SignInDeps
	Refresh RefreshDeps
}

// Service is the flow runner built once by the root Portal.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with a caller.
func (s Service) Initialized() bool {
	return s.deps.SignIn.Call != nil && s.deps.Refresh.Call != nil
}

func (s Service) SignIn(ctx context.Context, username, password string) SignInResult {
	return RunSignIn(ctx, username, password, s.deps.SignIn)
}

func (s Service) Refresh(ctx context.Context, current *session.Session) RefreshResult {
	return RunRefresh(ctx, current, s.deps.Refresh)
}
