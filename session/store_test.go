package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSession() *Session {
	return &Session{
		ID:         42,
		Username:   "jdoe",
		Email:      "jdoe@example.com",
		Roles:      []string{"ADMIN", "EMPLOYEE"},
		Token:      "tok-1",
		EmployeeID: "E-42",
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "hr", "tab-1", 0)
	ctx := context.Background()

	if got := store.Key(); got != "hr:tab-1:currentUser" {
		t.Fatalf("unexpected key %q", got)
	}

	got, err := store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected absent session, got %v err=%v", got, err)
	}

	want := sampleSession()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mr.Exists(store.Key()) {
		t.Fatal("expected key to exist after Save")
	}

	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if mr.Exists(store.Key()) {
		t.Fatal("expected key to be removed")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "hr", "", time.Minute)

	if err := store.Save(context.Background(), sampleSession()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL("hr:currentUser"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	got, err := store.Load(context.Background())
	if err != nil || got != nil {
		t.Fatalf("expected expired session to be absent, got %v err=%v", got, err)
	}
}

func TestRedisStoreCorruptBlob(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "hr", "tab", 0)

	if err := mr.Set(store.Key(), "not-json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := store.Load(context.Background())
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := NewRedisStore(rdb, "hr", "tab", 0)
	mr.Close()

	if err := store.Save(context.Background(), sampleSession()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from Save, got %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from Load, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if got, err := store.Load(ctx); err != nil || got != nil {
		t.Fatalf("expected absent session, got %v err=%v", got, err)
	}

	want := sampleSession()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected credentials file removed, stat err=%v", err)
	}
}

func TestFileStoreCorruptBlob(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := os.WriteFile(store.Path(), []byte("[1,2"), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestMemoryStoreDefaultsRoles(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.SetRaw([]byte(`{"id":1,"username":"a","token":"t"}`))
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Roles == nil || len(got.Roles) != 0 {
		t.Fatalf("expected empty non-nil roles, got %#v", got.Roles)
	}

	store.SetRaw([]byte("garbage"))
	if _, err := store.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != nil {
		t.Fatalf("expected absent after Clear, got %v err=%v", got, err)
	}
}

func TestNopStoreNeverPersists(t *testing.T) {
	var store Store = NopStore{}
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != nil {
		t.Fatalf("expected nothing stored, got %v err=%v", got, err)
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := sampleSession()
	c := s.Clone()
	c.Roles[0] = "MUTATED"

	if s.Roles[0] != "ADMIN" {
		t.Fatal("clone shares roles slice with original")
	}
	if !s.HasRole("EMPLOYEE") || s.HasRole("employee") {
		t.Fatal("HasRole must be exact match")
	}

	var nilSession *Session
	if nilSession.Clone() != nil || nilSession.HasRole("ADMIN") {
		t.Fatal("nil session helpers must be safe")
	}
}

func TestSessionClonePreservesEmptyRoles(t *testing.T) {
	s := &Session{Username: "asha", Token: "T1", Roles: []string{}}
	if c := s.Clone(); c.Roles == nil || len(c.Roles) != 0 {
		t.Fatalf("expected empty non-nil roles, got %#v", c.Roles)
	}
	if c := s.WithToken("T2"); c.Roles == nil {
		t.Fatal("WithToken dropped empty roles")
	}
	if c := (&Session{Token: "T1"}).Clone(); c.Roles != nil {
		t.Fatalf("nil roles must stay nil, got %#v", c.Roles)
	}
}
