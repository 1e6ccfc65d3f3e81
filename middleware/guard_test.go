package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	hrportal "github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuBody = `{"returnCode":"200","returnMessage":"OK","data":[
	{"menuId":1,"menuName":"Dashboard","url":"/dashboard","sequence":1,"children":[]},
	{"menuId":2,"menuName":"People","url":null,"sequence":2,"children":[
		{"menuId":3,"menuName":"Employees","url":"/employees","sequence":1,"children":[]}
	]}
]}`

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/menus" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(menuBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPortal(t *testing.T, baseURL string, s *session.Session) *hrportal.Portal {
	t.Helper()
	store := session.NewMemoryStore()
	if s != nil {
		require.NoError(t, store.Save(context.Background(), s))
	}
	p, err := hrportal.New().
		WithBaseURL(baseURL).
		WithCredentialStore(store).
		Build()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := SessionFromContext(r.Context()); ok {
			w.Header().Set("X-User", s.Username)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRequireSessionRedirectsWithReturnURL(t *testing.T) {
	p := newPortal(t, "http://127.0.0.1:1", nil)

	rec := serve(RequireSession(p)(okHandler()), "/employees?page=2")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?returnUrl=%2Femployees%3Fpage%3D2", rec.Header().Get("Location"))
}

func TestRequireSessionAdmitsAndAttachesSession(t *testing.T) {
	p := newPortal(t, "http://127.0.0.1:1", &session.Session{ID: 7, Username: "asha", Roles: []string{"EMPLOYEE"}, Token: "T1"})

	rec := serve(RequireSession(p)(okHandler()), "/employees")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha", rec.Header().Get("X-User"))
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name     string
		session  *session.Session
		roles    []string
		code     int
		location string
	}{
		{name: "no session", roles: []string{"ADMIN"}, code: http.StatusFound, location: "/login"},
		{name: "no roles required", session: &session.Session{Token: "T", Roles: []string{}}, code: http.StatusOK},
		{name: "matching role", session: &session.Session{Token: "T", Roles: []string{"HR", "ADMIN"}}, roles: []string{"ADMIN"}, code: http.StatusOK},
		{name: "missing role", session: &session.Session{Token: "T", Roles: []string{"EMPLOYEE"}}, roles: []string{"ADMIN"}, code: http.StatusFound, location: "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPortal(t, "http://127.0.0.1:1", tc.session)
			rec := serve(RequireRoles(p, tc.roles...)(okHandler()), "/admin/holidays")
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.location, rec.Header().Get("Location"))
		})
	}
}

func TestRequireMenu(t *testing.T) {
	srv := newBackend(t)
	p := newPortal(t, srv.URL, &session.Session{Token: "T", Roles: []string{"EMPLOYEE"}})
	h := RequireMenu(p)(okHandler())

	// Nothing loaded yet: fail open.
	assert.Equal(t, http.StatusOK, serve(h, "/payroll").Code)

	require.Len(t, p.FetchMenu(context.Background()), 2)

	assert.Equal(t, http.StatusOK, serve(h, "/employees/42?tab=docs").Code)
	assert.Equal(t, http.StatusOK, serve(h, "/").Code)

	rec := serve(h, "/payroll")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestChainRunsInOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rec := serve(Chain(mark("a"), nil, mark("b"))(okHandler()), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestChainStopsAtFirstRedirect(t *testing.T) {
	p := newPortal(t, "http://127.0.0.1:1", nil)
	reached := false
	h := Chain(RequireSession(p), RequireRoles(p, "ADMIN"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	rec := serve(h, "/departments")

	assert.False(t, reached)
	assert.Equal(t, "/login?returnUrl=%2Fdepartments", rec.Header().Get("Location"))
}
