package hrportal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/hrportal/internal/hrstub"
	"github.com/MrEthical07/hrportal/menu"
	"github.com/MrEthical07/hrportal/session"
)

var testUsers = []hrstub.User{
	{ID: 7, Username: "asha", Password: "correct-horse", Email: "asha@example.com", EmployeeID: "E-007", Roles: []string{"HR", "EMPLOYEE"}},
	{ID: 1, Username: "root", Password: "admin-pass", Email: "root@example.com", EmployeeID: "E-001", Roles: []string{"ADMIN"}},
}

var testMenus = map[string][]menu.Node{
	"ADMIN": {
		{ID: 1, Label: "Dashboard", RoutePath: menu.Route("/dashboard"), Sequence: 1},
		{ID: 2, Label: "Admin", Sequence: 2, Children: []menu.Node{
			{ID: 3, Label: "Holidays", RoutePath: menu.Route("/admin/holidays"), Sequence: 1},
		}},
	},
	"HR": {
		{ID: 4, Label: "Employees", RoutePath: menu.Route("/employees"), Sequence: 2},
		{ID: 5, Label: "Dashboard", RoutePath: menu.Route("/dashboard"), Sequence: 1},
	},
}

func newStubBackend(tb testing.TB) (*hrstub.Server, *httptest.Server) {
	tb.Helper()
	stub, err := hrstub.New(hrstub.Config{Users: testUsers, Menus: testMenus})
	if err != nil {
		tb.Fatalf("hrstub.New failed: %v", err)
	}
	srv := httptest.NewServer(stub)
	tb.Cleanup(srv.Close)
	return stub, srv
}

func newHandlerBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type portalOptions struct {
	store     session.Store
	navigator Navigator
	sink      AuditSink
	shared    bool
	fetchMenu bool
	noMetrics bool
	configure func(*Config)
}

func newTestPortal(t *testing.T, baseURL string, opts portalOptions) *Portal {
	t.Helper()
	cfg := DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Metrics.Enabled = !opts.noMetrics
	cfg.Menu.FetchOnSignIn = opts.fetchMenu
	if opts.shared {
		cfg.Gateway.RefreshCoordination = CoordinateShared
	}
	if opts.configure != nil {
		opts.configure(&cfg)
	}

	b := New().WithConfig(cfg)
	if opts.store != nil {
		b.WithCredentialStore(opts.store)
	}
	if opts.navigator != nil {
		b.WithNavigator(opts.navigator)
	}
	if opts.sink != nil {
		b.WithAuditSink(opts.sink)
	}
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func mustSignIn(t *testing.T, p *Portal, username, password string) *session.Session {
	t.Helper()
	s, err := p.SignIn(t.Context(), username, password)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return s
}

func mustRequestError(t *testing.T, err error) *RequestError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	re, ok := AsRequestError(err)
	if !ok {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	return re
}
