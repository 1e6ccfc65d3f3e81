package middleware

import (
	"context"
	"net/http"

	hrportal "github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the session attached by a guard.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return s, ok && s != nil
}

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one runs first.
func Chain(mws ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				next = mws[i](next)
			}
		}
		return next
	}
}

// RequireSession redirects to the sign-in route, with the requested URL as
// return URL, when no session exists.
func RequireSession(portal *hrportal.Portal) Middleware {
	return guard(portal, func(r *http.Request) hrportal.Decision {
		return portal.AuthGuard(r.Context(), r.URL.RequestURI())
	})
}

// RequireRoles admits sessions holding at least one of roles. No roles admits
// any session.
func RequireRoles(portal *hrportal.Portal, roles ...string) Middleware {
	return guard(portal, func(r *http.Request) hrportal.Decision {
		return portal.RoleGuard(r.Context(), roles)
	})
}

// RequireMenu admits paths the loaded menu allows.
func RequireMenu(portal *hrportal.Portal) Middleware {
	return guard(portal, func(r *http.Request) hrportal.Decision {
		return portal.MenuGuard(r.Context(), r.URL.RequestURI())
	})
}

// TrackCurrentURL attaches the request URI to the context so gateway calls
// made while serving it use it as the sign-in return URL.
func TrackCurrentURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := hrportal.WithCurrentURL(r.Context(), r.URL.RequestURI())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func guard(portal *hrportal.Portal, decide func(*http.Request) hrportal.Decision) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if portal == nil {
				http.Error(w, "portal unavailable", http.StatusServiceUnavailable)
				return
			}

			d := decide(r)
			if !d.Admit {
				http.Redirect(w, r, d.Location(), http.StatusFound)
				return
			}

			ctx := r.Context()
			if s, ok := portal.CurrentSession(); ok {
				ctx = context.WithValue(ctx, sessionContextKey{}, s)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
