package hrportal

import (
	"io"
	"net/http"
	"testing"
)

func TestAuthGuard(t *testing.T) {
	_, srv := newStubBackend(t)
	sink := NewChannelSink(8)
	p := newTestPortal(t, srv.URL, portalOptions{sink: sink})

	d := p.AuthGuard(WithRequestID(t.Context(), "guard-1"), "/employees?page=2")
	if d.Admit || d.Target != "/login" || d.ReturnURL != "/employees?page=2" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if got := d.Location(); got != "/login?returnUrl=%2Femployees%3Fpage%3D2" {
		t.Fatalf("unexpected location %q", got)
	}

	ev := <-sink.Events()
	if ev.EventType != AuditEventGuardRedirect || ev.Path != "/employees?page=2" || ev.RequestID != "guard-1" {
		t.Fatalf("unexpected audit event %+v", ev)
	}
	if ev.Metadata["guard"] != "auth" || ev.Metadata["target"] != "/login" {
		t.Fatalf("unexpected metadata %v", ev.Metadata)
	}

	mustSignIn(t, p, "asha", "correct-horse")
	if d := p.AuthGuard(t.Context(), "/employees"); !d.Admit || d.Location() != "" {
		t.Fatalf("expected admit, got %+v", d)
	}

	snap := p.MetricsSnapshot()
	if snap.Counters[MetricGuardAdmit] != 1 || snap.Counters[MetricGuardRedirect] != 1 {
		t.Fatalf("unexpected counters %v", snap.Counters)
	}
}

func TestAuthGuardCustomReturnParam(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{configure: func(c *Config) {
		c.Routes.SignInPath = "/auth/login"
		c.Routes.ReturnURLParam = "next"
	}})

	if got := p.AuthGuard(t.Context(), "/leaves").Location(); got != "/auth/login?next=%2Fleaves" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestRoleGuard(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{})

	d := p.RoleGuard(t.Context(), []string{"ADMIN"})
	if d.Admit || d.Target != "/login" || d.ReturnURL != "" || d.Location() != "/login" {
		t.Fatalf("expected sign-in redirect without return url, got %+v", d)
	}

	mustSignIn(t, p, "asha", "correct-horse")
	cases := []struct {
		name     string
		required []string
		admit    bool
	}{
		{name: "no roles required", required: nil, admit: true},
		{name: "held role", required: []string{"HR"}, admit: true},
		{name: "any of", required: []string{"ADMIN", "EMPLOYEE"}, admit: true},
		{name: "missing role", required: []string{"ADMIN"}, admit: false},
		{name: "case sensitive", required: []string{"hr"}, admit: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := p.RoleGuard(t.Context(), tc.required)
			if d.Admit != tc.admit {
				t.Fatalf("expected admit=%v, got %+v", tc.admit, d)
			}
			if !tc.admit && (d.Target != "/" || d.ReturnURL != "") {
				t.Fatalf("expected landing redirect, got %+v", d)
			}
		})
	}
}

func TestMenuGuard(t *testing.T) {
	_, srv := newStubBackend(t)
	p := newTestPortal(t, srv.URL, portalOptions{})

	if d := p.MenuGuard(t.Context(), "/admin/holidays"); !d.Admit {
		t.Fatalf("expected admit with no menu loaded, got %+v", d)
	}

	mustSignIn(t, p, "asha", "correct-horse")
	p.FetchMenu(t.Context())

	cases := []struct {
		url   string
		admit bool
	}{
		{url: "/employees", admit: true},
		{url: "employees?page=3#top", admit: true},
		{url: "/employees/", admit: true},
		{url: "/dashboard", admit: true},
		{url: "/admin/holidays", admit: false},
		{url: "/reports", admit: false},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			d := p.MenuGuard(t.Context(), tc.url)
			if d.Admit != tc.admit {
				t.Fatalf("expected admit=%v, got %+v", tc.admit, d)
			}
			if !tc.admit && (d.Target != "/" || d.ReturnURL != "" || d.Location() != "/") {
				t.Fatalf("expected landing redirect, got %+v", d)
			}
		})
	}
}

func TestMenuGuardFailsOpenWhenFetchFails(t *testing.T) {
	srv := newHandlerBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"returnCode":"500","returnMessage":"Menu service down"}`)
	})
	p := newTestPortal(t, srv.URL, portalOptions{})

	if nodes := p.FetchMenu(t.Context()); len(nodes) != 0 {
		t.Fatalf("expected empty menu, got %v", nodes)
	}
	if got := p.Menu().Err(); got != "Menu service down" {
		t.Fatalf("unexpected menu error %q", got)
	}
	if d := p.MenuGuard(t.Context(), "/anything"); !d.Admit {
		t.Fatalf("expected admit after failed fetch, got %+v", d)
	}
	if got := p.MetricsSnapshot().Counters[MetricMenuFetchFailure]; got != 1 {
		t.Fatalf("expected 1 menu failure, got %d", got)
	}
}
