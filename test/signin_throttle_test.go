//go:build integration
// +build integration

package test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/hrportal"
)

func TestThrottledSignInSurfacesBackendMessage(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, nil)

	for range 3 {
		if _, err := p.SignIn(t.Context(), "asha", "nope"); !errors.Is(err, hrportal.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	_, err := p.SignIn(t.Context(), "asha", "correct-horse")
	re, ok := hrportal.AsRequestError(err)
	if !ok {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if re.Status != http.StatusTooManyRequests || re.Message != "Too many sign-in attempts. Try again later." {
		t.Fatalf("unexpected error %+v", re)
	}
	if p.IsAuthenticated() {
		t.Fatal("throttled sign-in must not establish a session")
	}

	e.mr.FastForward(time.Minute + time.Second)
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("expected sign-in after the window, got %v", err)
	}
}

func TestRoleFilteredMenuAndGuards(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, func(c *hrportal.Config) { c.Menu.FetchOnSignIn = true })
	if _, err := p.SignIn(t.Context(), "root", "admin-pass"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if d := p.MenuGuard(t.Context(), "/admin/holidays"); !d.Admit {
		t.Fatalf("expected admin menu to admit holidays, got %+v", d)
	}
	if d := p.MenuGuard(t.Context(), "/employees"); d.Admit {
		t.Fatal("expected employees to be outside the admin menu")
	}

	var holidays []map[string]any
	if err := p.Get(t.Context(), hrportal.PathHolidays, nil, &holidays); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(holidays) == 0 {
		t.Fatal("expected holidays")
	}
}
