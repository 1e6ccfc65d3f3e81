package hrportal

import (
	"net/http"
	"time"

	"github.com/MrEthical07/hrportal/jwt"
	"golang.org/x/oauth2"
)

// TokenExpiry reads the exp claim of the current bearer token. The token is
// not verified; the backend remains the authority. ok is false without a
// session or when the token carries no readable expiry.
func (p *Portal) TokenExpiry() (time.Time, bool) {
	s, ok := p.CurrentSession()
	if !ok {
		return time.Time{}, false
	}
	return jwt.ExpiresAt(s.Token)
}

// TokenSource exposes the live session token as an oauth2.TokenSource. Each
// Token call reads the current session, so refreshes performed by the gateway
// are picked up.
func (p *Portal) TokenSource() oauth2.TokenSource {
	return portalTokenSource{p: p}
}

// AuthorizedClient returns a plain *http.Client that sends the current bearer
// token. It has no envelope handling and no 401 recovery; use it for
// streaming downloads.
func (p *Portal) AuthorizedClient() *http.Client {
	base := http.DefaultTransport
	timeout := p.config.API.Timeout
	if p.client != nil {
		if p.client.Transport != nil {
			base = p.client.Transport
		}
		timeout = p.client.Timeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: p.TokenSource(), Base: base},
	}
}

type portalTokenSource struct {
	p *Portal
}

func (ts portalTokenSource) Token() (*oauth2.Token, error) {
	s, ok := ts.p.CurrentSession()
	if !ok || s.Token == "" {
		return nil, ErrNoSession
	}
	tok := &oauth2.Token{AccessToken: s.Token, TokenType: "Bearer"}
	if exp, ok := jwt.ExpiresAt(s.Token); ok {
		tok.Expiry = exp
	}
	return tok, nil
}
