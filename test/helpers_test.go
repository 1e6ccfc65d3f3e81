//go:build integration
// +build integration

package test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/internal/hrstub"
	"github.com/MrEthical07/hrportal/internal/rate"
	"github.com/MrEthical07/hrportal/menu"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var users = []hrstub.User{
	{ID: 7, Username: "asha", Password: "correct-horse", Email: "asha@example.com", EmployeeID: "E-007", Roles: []string{"HR"}},
	{ID: 1, Username: "root", Password: "admin-pass", Email: "root@example.com", EmployeeID: "E-001", Roles: []string{"ADMIN"}},
}

var menus = map[string][]menu.Node{
	"HR":    {{ID: 1, Label: "Employees", RoutePath: menu.Route("/employees"), Sequence: 1}},
	"ADMIN": {{ID: 2, Label: "Holidays", RoutePath: menu.Route("/admin/holidays"), Sequence: 1}},
}

type env struct {
	mr      *miniredis.Miniredis
	rdb     *redis.Client
	stub    *hrstub.Server
	backend *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stub, err := hrstub.New(hrstub.Config{
		Users:         users,
		Menus:         menus,
		SignInLimiter: rate.New(rdb, rate.Config{Prefix: "hrstub", MaxAttempts: 3, Window: time.Minute}),
	})
	if err != nil {
		t.Fatalf("hrstub.New failed: %v", err)
	}
	backend := httptest.NewServer(stub)
	t.Cleanup(backend.Close)

	return &env{mr: mr, rdb: rdb, stub: stub, backend: backend}
}

func (e *env) portal(t *testing.T, configure func(*hrportal.Config)) *hrportal.Portal {
	t.Helper()
	cfg := hrportal.DefaultConfig()
	cfg.API.BaseURL = e.backend.URL
	cfg.Metrics.Enabled = true
	if configure != nil {
		configure(&cfg)
	}
	p, err := hrportal.New().WithConfig(cfg).WithRedis(e.rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func scoped(scope string) func(*hrportal.Config) {
	return func(c *hrportal.Config) { c.Session.Scope = scope }
}
