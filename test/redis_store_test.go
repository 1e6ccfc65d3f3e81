//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/session"
)

func TestSessionSurvivesRestartThroughRedis(t *testing.T) {
	e := newEnv(t)
	first := e.portal(t, scoped("tab-1"))
	signed, err := first.SignIn(t.Context(), "asha", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	first.Close()

	second := e.portal(t, scoped("tab-1"))
	restored, ok := second.CurrentSession()
	if !ok || restored.Token != signed.Token || restored.Username != "asha" {
		t.Fatalf("expected restored session, got %+v", restored)
	}
	if err := second.Get(t.Context(), hrportal.PathEmployees, nil, nil); err != nil {
		t.Fatalf("restored session should authorize calls: %v", err)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	e := newEnv(t)
	a := e.portal(t, scoped("tab-a"))
	if _, err := a.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	b := e.portal(t, scoped("tab-b"))
	if b.IsAuthenticated() {
		t.Fatal("scope tab-b must not see tab-a's session")
	}
	if !e.mr.Exists("hrportal:tab-a:currentUser") || e.mr.Exists("hrportal:tab-b:currentUser") {
		t.Fatalf("unexpected keys %v", e.mr.Keys())
	}
}

func TestSessionTTL(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, func(c *hrportal.Config) { c.Session.TTL = time.Hour })
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if ttl := e.mr.TTL("hrportal:default:currentUser"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	e.mr.FastForward(time.Hour + time.Second)
	restarted := e.portal(t, nil)
	if restarted.IsAuthenticated() {
		t.Fatal("expired blob must not be restored")
	}
}

func TestRefreshRewritesStoredToken(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, nil)
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	e.stub.ExpireTokens()
	if err := p.Get(t.Context(), hrportal.PathEmployees, nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	current, _ := p.CurrentSession()
	stored, err := session.NewRedisStore(e.rdb, "hrportal", "default", 0).Load(t.Context())
	if err != nil || stored == nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.Token != current.Token || stored.EmployeeID != "E-007" {
		t.Fatalf("stored session out of date: %+v", stored)
	}
}

func TestCorruptBlobIsIgnored(t *testing.T) {
	e := newEnv(t)
	if err := e.mr.Set("hrportal:default:currentUser", "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	p := e.portal(t, nil)
	if p.IsAuthenticated() {
		t.Fatal("corrupt blob must be treated as absent")
	}
	if _, err := p.SignIn(t.Context(), "asha", "correct-horse"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
}

func TestRedisOutageDoesNotBreakSignIn(t *testing.T) {
	e := newEnv(t)
	p := e.portal(t, nil)
	e.mr.Close()

	s, err := p.SignIn(t.Context(), "asha", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn should not depend on the store: %v", err)
	}
	if cur, ok := p.CurrentSession(); !ok || cur.Token != s.Token {
		t.Fatal("session must be current even when persisting fails")
	}
}
