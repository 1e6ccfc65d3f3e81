package test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/middleware"
	"github.com/MrEthical07/hrportal/session"
	"golang.org/x/oauth2"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = hrportal.New
	_ = hrportal.DefaultConfig
	_ = hrportal.ConfigFromEnv

	var _ *hrportal.Portal
	var _ hrportal.Config
	var _ hrportal.Decision
	var _ hrportal.RequestOptions
	var _ *hrportal.Response
	var _ *hrportal.RequestError
	var _ hrportal.Navigator = hrportal.NopNavigator{}
	var _ hrportal.Navigator = (*hrportal.RecordingNavigator)(nil)
	var _ hrportal.AuditSink
	var _ session.Store = (*session.RedisStore)(nil)
	var _ session.Store = (*session.FileStore)(nil)
	var _ session.Store = (*session.MemoryStore)(nil)

	var _ error = hrportal.ErrInvalidCredentials
	var _ error = hrportal.ErrNoSession
	var _ error = hrportal.ErrSessionExpired
	var _ error = hrportal.ErrUnauthorized
	var _ error = hrportal.ErrApplication
	var _ error = hrportal.ErrRequestFailed

	var _ func(*hrportal.Portal) middleware.Middleware = middleware.RequireSession
	var _ func(*hrportal.Portal, ...string) middleware.Middleware = middleware.RequireRoles
	var _ func(*hrportal.Portal) middleware.Middleware = middleware.RequireMenu
	var _ func(http.Handler) http.Handler = middleware.TrackCurrentURL

	var _ func(*hrportal.Portal, context.Context, string, string) (*session.Session, error) = (*hrportal.Portal).SignIn
	var _ func(*hrportal.Portal, context.Context) (*session.Session, error) = (*hrportal.Portal).Refresh
	var _ func(*hrportal.Portal, context.Context) = (*hrportal.Portal).SignOut
	var _ func(*hrportal.Portal, context.Context, string, string, any, *hrportal.RequestOptions) (*hrportal.Response, error) = (*hrportal.Portal).Request
	var _ func(*hrportal.Portal, context.Context, string, url.Values) ([]byte, error) = (*hrportal.Portal).GetBlob
	var _ func(*hrportal.Portal, context.Context, string) hrportal.Decision = (*hrportal.Portal).AuthGuard
	var _ func(*hrportal.Portal, context.Context, []string) hrportal.Decision = (*hrportal.Portal).RoleGuard
	var _ func(*hrportal.Portal, context.Context, string) hrportal.Decision = (*hrportal.Portal).MenuGuard
	var _ func(*hrportal.Portal) oauth2.TokenSource = (*hrportal.Portal).TokenSource
	var _ func(*hrportal.Portal) hrportal.PortalState = (*hrportal.Portal).State
	_ = hrportal.AuditEventGuardRedirect
}
