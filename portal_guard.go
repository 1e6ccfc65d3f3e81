package hrportal

import (
	"context"
	"strings"

	"github.com/MrEthical07/hrportal/menu"
	"github.com/MrEthical07/hrportal/permission"
)

// AuthGuard admits navigation to url when a session exists. Otherwise it
// redirects to the sign-in route with url as the return URL.
func (p *Portal) AuthGuard(ctx context.Context, url string) Decision {
	if p.IsAuthenticated() {
		return p.admit()
	}
	return p.redirect(ctx, "auth", url, Decision{
		Target:    p.config.Routes.SignInPath,
		ReturnURL: url,
	})
}

// RoleGuard admits navigation when the session holds at least one of
// required. An empty required list admits any session. Without a session it
// redirects to the sign-in route, without a return URL; a session lacking the
// roles is sent to the landing route.
func (p *Portal) RoleGuard(ctx context.Context, required []string) Decision {
	s, ok := p.CurrentSession()
	if !ok {
		return p.redirect(ctx, "role", "", Decision{Target: p.config.Routes.SignInPath})
	}
	if permission.NewRoleSet(s.Roles...).Intersects(required) {
		return p.admit()
	}
	return p.redirect(ctx, "role", "", Decision{Target: p.config.Routes.LandingPath})
}

// MenuGuard admits navigation to url when the loaded menu allows its path.
// The query string and fragment are ignored. With no menu loaded every path is
// admitted; the guard never triggers a fetch.
func (p *Portal) MenuGuard(ctx context.Context, url string) Decision {
	path := url
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = menu.NormalizePath(path)
	if p.menu.IsPathAllowed(path) {
		return p.admit()
	}
	return p.redirect(ctx, "menu", url, Decision{Target: p.config.Routes.LandingPath})
}

func (p *Portal) admit() Decision {
	p.metricInc(MetricGuardAdmit)
	return admit()
}

func (p *Portal) redirect(ctx context.Context, guard, url string, d Decision) Decision {
	d.param = p.config.Routes.ReturnURLParam
	p.metricInc(MetricGuardRedirect)

	s, _ := p.CurrentSession()
	p.emitAuditEvent(ctx, AuditEvent{
		EventType: AuditEventGuardRedirect,
		Path:      url,
		Success:   true,
	}, s, nil, func() map[string]string {
		return map[string]string{"guard": guard, "target": d.Target}
	})
	return d
}
