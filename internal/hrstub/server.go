// Package hrstub is an in-process HR backend speaking the wire format the
// Portal consumes: the returnCode/returnMessage/data envelope, bearer tokens
// minted by the jwt package, the role-filtered menu and binary report exports.
//
// It backs the runnable shell example and the integration tests. It is not a
// model of any HR business rule.
package hrstub

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/hrportal/internal/rate"
	"github.com/MrEthical07/hrportal/jwt"
	"github.com/MrEthical07/hrportal/menu"
)

// User is an account the stub accepts.
type User struct {
	ID         int64
	Username   string
	Password   string
	Email      string
	EmployeeID string
	Roles      []string
}

// Config seeds a Server.
type Config struct {
	Users []User
	// Menus maps a role to the menu tree it sees. A user gets the tree of the
	// first of their roles listed here.
	Menus map[string][]menu.Node
	// AccessTTL defaults to 15 minutes.
	AccessTTL time.Duration
	// SignInLimiter, when set, answers 429 once a username has exhausted its
	// failed sign-in budget.
	SignInLimiter *rate.Limiter
}

type account struct {
	User
	hash string
}

type tokenState struct {
	username string
	expired  bool
}

// Server is the stub backend. It is safe for concurrent use.
type Server struct {
	jwt   *jwt.Manager
	users map[string]account
	menus map[string][]menu.Node
	limit *rate.Limiter

	mu     sync.Mutex
	tokens map[string]*tokenState

	refreshCalls  atomic.Int64
	signInCalls   atomic.Int64
	refreshDelay  atomic.Int64
	refreshFails  atomic.Bool
	refreshNoData atomic.Bool

	mux *http.ServeMux
}

// New builds a Server signing HS256 tokens with a random key.
func New(cfg Config) (*Server, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	mgr, err := jwt.NewManager(jwt.Config{
		AccessTTL:     ttl,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    key,
		Issuer:        "hrstub",
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		jwt:    mgr,
		users:  make(map[string]account, len(cfg.Users)),
		menus:  cfg.Menus,
		limit:  cfg.SignInLimiter,
		tokens: make(map[string]*tokenState),
		mux:    http.NewServeMux(),
	}
	for _, u := range cfg.Users {
		hash, err := hashPassword(u.Password, stubParams)
		if err != nil {
			return nil, fmt.Errorf("hash password of %q: %w", u.Username, err)
		}
		u.Password = ""
		s.users[u.Username] = account{User: u, hash: hash}
	}

	s.mux.HandleFunc("POST /auth/signin", s.handleSignIn)
	s.mux.HandleFunc("POST /auth/refreshtoken", s.handleRefresh)
	s.mux.HandleFunc("GET /menus", s.authorized(s.handleMenus))
	s.mux.HandleFunc("GET /employees", s.authorized(s.handleEmployees))
	s.mux.HandleFunc("GET /admin/holidays", s.authorized(requireRole("ADMIN", s.handleHolidays)))
	s.mux.HandleFunc("GET /admin/departments", s.authorized(requireRole("ADMIN", s.handleDepartments)))
	s.mux.HandleFunc("GET /reports/{kind}/export/{format}", s.authorized(s.handleExport))
	s.mux.HandleFunc("GET /diagnostics/failure", s.authorized(s.handleFailure))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ExpireTokens makes every live token fail authorization while remaining
// refreshable, as an access token past its lifetime would.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.tokens {
		st.expired = true
	}
}

// RevokeTokens forgets every token so neither calls nor refreshes succeed.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]*tokenState)
	s.mu.Unlock()
}

// SetRefreshDelay stalls every refresh by d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

// FailRefresh makes refreshes answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.refreshFails.Store(fail)
}

// RefreshWithoutToken makes refreshes succeed without carrying a token.
func (s *Server) RefreshWithoutToken(on bool) {
	s.refreshNoData.Store(on)
}

// RefreshCalls counts refresh requests received.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// SignInCalls counts sign-in requests received.
func (s *Server) SignInCalls() int64 {
	return s.signInCalls.Load()
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.signInCalls.Add(1)
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "400", "Malformed request", nil)
		return
	}
	if s.limit != nil && errors.Is(s.limit.Check(r.Context(), req.Username), rate.ErrRateLimited) {
		writeEnvelope(w, http.StatusTooManyRequests, "429", "Too many sign-in attempts. Try again later.", nil)
		return
	}
	acct, ok := s.users[req.Username]
	if ok {
		ok, _ = verifyPassword(req.Password, acct.hash)
	}
	if !ok {
		if s.limit != nil {
			_ = s.limit.RecordFailure(r.Context(), req.Username)
		}
		writeEnvelope(w, http.StatusUnauthorized, "401", "Invalid username or password", nil)
		return
	}
	if s.limit != nil {
		_ = s.limit.Reset(r.Context(), req.Username)
	}
	u := acct.User
	token, err := s.issue(u)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "500", "Token issue failed", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "200", "Success", map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"roles":      u.Roles,
		"employeeId": u.EmployeeID,
		"token":      token,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if d := time.Duration(s.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	if s.refreshFails.Load() {
		writeEnvelope(w, http.StatusUnauthorized, "401", "Refresh token expired", nil)
		return
	}

	old, ok := bearer(r)
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "401", "Missing token", nil)
		return
	}
	s.mu.Lock()
	st, known := s.tokens[old]
	if known {
		delete(s.tokens, old)
	}
	s.mu.Unlock()
	if !known {
		writeEnvelope(w, http.StatusUnauthorized, "401", "Unknown token", nil)
		return
	}
	if s.refreshNoData.Load() {
		writeEnvelope(w, http.StatusOK, "200", "Success", map[string]any{})
		return
	}

	token, err := s.issue(s.users[st.username].User)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "500", "Token issue failed", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "200", "Success", map[string]any{"token": token})
}

func (s *Server) handleMenus(w http.ResponseWriter, _ *http.Request, u User) {
	for _, role := range u.Roles {
		if nodes, ok := s.menus[role]; ok {
			writeEnvelope(w, http.StatusOK, "200", "Success", nodes)
			return
		}
	}
	writeEnvelope(w, http.StatusOK, "200", "Success", []menu.Node{})
}

func (s *Server) handleEmployees(w http.ResponseWriter, _ *http.Request, _ User) {
	out := make([]map[string]any, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, map[string]any{"id": u.ID, "username": u.Username, "employeeId": u.EmployeeID})
	}
	writeEnvelope(w, http.StatusOK, "200", "Success", out)
}

func (s *Server) handleHolidays(w http.ResponseWriter, _ *http.Request, _ User) {
	writeEnvelope(w, http.StatusOK, "200", "Success", []map[string]any{
		{"id": 1, "name": "New Year", "date": "2025-01-01"},
		{"id": 2, "name": "Labour Day", "date": "2025-05-01"},
	})
}

func (s *Server) handleDepartments(w http.ResponseWriter, _ *http.Request, _ User) {
	writeEnvelope(w, http.StatusOK, "200", "Success", []map[string]any{
		{"id": 1, "name": "People"},
		{"id": 2, "name": "Engineering"},
	})
}

func requireRole(role string, next func(http.ResponseWriter, *http.Request, User)) func(http.ResponseWriter, *http.Request, User) {
	return func(w http.ResponseWriter, r *http.Request, u User) {
		if slices.Contains(u.Roles, role) {
			next(w, r, u)
			return
		}
		writeEnvelope(w, http.StatusForbidden, "403", "Access denied", nil)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, _ User) {
	kind, format := r.PathValue("kind"), r.PathValue("format")
	switch format {
	case "excel":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	default:
		writeEnvelope(w, http.StatusBadRequest, "400", "Unsupported format", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s report %s..%s", kind, r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
}

func (s *Server) handleFailure(w http.ResponseWriter, _ *http.Request, _ User) {
	writeEnvelope(w, http.StatusOK, "500", "boom", "java.lang.IllegalStateException: boom\n\tat com.hr.Api.call(Api.java:42)")
}

// authorized admits calls carrying a live token.
func (s *Server) authorized(next func(http.ResponseWriter, *http.Request, User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r)
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, "401", "Unauthorized", nil)
			return
		}
		claims, err := s.jwt.Verify(token)
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, "401", "Unauthorized", nil)
			return
		}
		s.mu.Lock()
		st, known := s.tokens[token]
		live := known && !st.expired
		s.mu.Unlock()
		if !live {
			writeEnvelope(w, http.StatusUnauthorized, "401", "Token expired", nil)
			return
		}
		next(w, r, s.users[claims.Username].User)
	}
}

func (s *Server) issue(u User) (string, error) {
	token, err := s.jwt.Issue(jwt.Identity{
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Roles:      u.Roles,
		EmployeeID: u.EmployeeID,
	})
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = &tokenState{username: u.Username}
	s.mu.Unlock()
	return token, nil
}

func bearer(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if !strings.HasPrefix(v, prefix) || len(v) == len(prefix) {
		return "", false
	}
	return v[len(prefix):], true
}

func writeEnvelope(w http.ResponseWriter, status int, code, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"returnCode":    code,
		"returnMessage": message,
		"data":          data,
	})
}
