package hrportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/hrportal/internal/envelope"
	"github.com/MrEthical07/hrportal/internal/flows"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request sends one call to the backend.
//
// body may be nil, json.RawMessage (sent as is), []byte (sent as an octet
// stream), an io.Reader (buffered so the call can be replayed) or any value
// json.Marshal accepts. The bearer token of the current session is attached
// unless opts.SkipAuthorization is set or path targets the sign-in or refresh
// endpoint.
//
// A 401 is recovered at most once per call by refreshing the token and
// replaying the request; see GatewayConfig.RefreshCoordination. Every failure
// is a *RequestError.
func (p *Portal) Request(ctx context.Context, method, path string, body any, opts *RequestOptions) (*Response, error) {
	if p == nil || !p.flows.Initialized() {
		return nil, ErrPortalNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &RequestOptions{}
	}

	payload, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	target, err := p.buildURL(path, opts.Query)
	if err != nil {
		return nil, err
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	authorize := !opts.SkipAuthorization && !p.isAuthEndpoint(path)
	var token string
	if authorize {
		if s, ok := p.CurrentSession(); ok {
			token = s.Token
		}
	}

	reply, err := p.send(ctx, method, target, payload, contentType, token, requestID, opts.Header)
	if err != nil {
		return nil, p.transportFailure(method, path, requestID, err)
	}

	if reply.Status == http.StatusUnauthorized && authorize {
		next, ok, rerr := p.recoverUnauthorized(ctx, token)
		if rerr != nil {
			return nil, rerr
		}
		if ok {
			p.metricInc(MetricRequestRetried)
			p.logger.Debug("replaying request after refresh",
				zap.String("method", method),
				zap.String("path", path),
				zap.String("request_id", requestID),
			)
			reply, err = p.send(ctx, method, target, payload, contentType, next, requestID, opts.Header)
			if err != nil {
				return nil, p.transportFailure(method, path, requestID, err)
			}
		}
	}

	return p.interpret(method, path, requestID, reply, opts.Binary)
}

// Get decodes the unwrapped payload of a GET into out, which may be nil.
func (p *Portal) Get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := p.Request(ctx, http.MethodGet, path, nil, &RequestOptions{Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Post sends body and decodes the unwrapped payload into out.
func (p *Portal) Post(ctx context.Context, path string, body, out any) error {
	return p.call(ctx, http.MethodPost, path, body, out)
}

// Put sends body and decodes the unwrapped payload into out.
func (p *Portal) Put(ctx context.Context, path string, body, out any) error {
	return p.call(ctx, http.MethodPut, path, body, out)
}

// Patch sends body and decodes the unwrapped payload into out.
func (p *Portal) Patch(ctx context.Context, path string, body, out any) error {
	return p.call(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE and decodes the unwrapped payload into out.
func (p *Portal) Delete(ctx context.Context, path string, out any) error {
	return p.call(ctx, http.MethodDelete, path, nil, out)
}

// GetBlob downloads a binary payload such as a report export.
func (p *Portal) GetBlob(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := p.Request(ctx, http.MethodGet, path, nil, &RequestOptions{Query: query, Binary: true})
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

func (p *Portal) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := p.Request(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// recoverUnauthorized obtains a token to replay a 401 with. ok is false when
// the 401 must be surfaced. err is the refresh failure, after which the
// session is gone and a sign-in redirect has been scheduled.
func (p *Portal) recoverUnauthorized(ctx context.Context, sent string) (token string, ok bool, err error) {
	if p.config.Gateway.RefreshCoordination == CoordinateShared {
		return p.refreshShared(ctx, sent)
	}
	return p.refreshSingleWinner(ctx)
}

func (p *Portal) refreshSingleWinner(ctx context.Context) (string, bool, error) {
	if !p.refreshing.CompareAndSwap(false, true) {
		p.metricInc(MetricRefreshCoalesced)
		p.logger.Debug("refresh already in flight, surfacing 401")
		return "", false, nil
	}
	defer p.refreshing.Store(false)

	s, err := p.Refresh(ctx)
	if err != nil {
		p.scheduleSignInRedirect(ctx)
		return "", false, err
	}
	return s.Token, true, nil
}

// refreshShared joins concurrent 401s onto one refresh. A caller whose token
// was already replaced by a finished refresh replays with the current token
// instead of starting another one.
func (p *Portal) refreshShared(ctx context.Context, sent string) (string, bool, error) {
	if s, ok := p.CurrentSession(); ok && s.Token != "" && s.Token != sent {
		p.metricInc(MetricRefreshCoalesced)
		return s.Token, true, nil
	}

	ran := false
	v, err, _ := p.refreshGroup.Do("refresh", func() (any, error) {
		ran = true
		s, err := p.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		return s.Token, nil
	})
	if !ran {
		p.metricInc(MetricRefreshCoalesced)
	}
	if err != nil {
		if ran {
			p.scheduleSignInRedirect(ctx)
		}
		return "", false, err
	}
	return v.(string), true, nil
}

// scheduleSignInRedirect navigates to the sign-in route on its own goroutine,
// after the failing call has returned to its caller. The return URL is the
// page the call was made for.
func (p *Portal) scheduleSignInRedirect(ctx context.Context) {
	returnURL, fixed := currentURLFromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	p.redirectMu.Lock()
	if p.closed {
		p.redirectMu.Unlock()
		return
	}
	p.redirects.Add(1)
	p.redirectMu.Unlock()

	go func() {
		defer p.redirects.Done()
		if !fixed {
			returnURL = p.navigator.CurrentURL()
		}
		target := p.config.Routes.SignInPath
		p.navigator.Navigate(target, returnURL)
		p.metricInc(MetricSignInRedirect)
		p.logger.Info("redirecting to sign-in",
			zap.String("target", target),
			zap.String("return_url", returnURL),
		)
		p.emitAudit(ctx, AuditEventRedirectSignIn, true, nil, nil, func() map[string]string {
			return map[string]string{"target": target, "return_url": returnURL}
		})
	}()
}

// callAuthEndpoint is the flows.Caller used by sign-in and refresh. It posts
// JSON without any 401 handling.
func (p *Portal) callAuthEndpoint(ctx context.Context, path string, payload any, bearer string) (flows.Reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, contentType, err := encodeBody(payload)
	if err != nil {
		return flows.Reply{}, fmt.Errorf("encode request body: %w", err)
	}
	target, err := p.buildURL(path, nil)
	if err != nil {
		return flows.Reply{}, err
	}
	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	r, err := p.send(ctx, http.MethodPost, target, body, contentType, bearer, requestID, nil)
	if err != nil {
		return flows.Reply{}, err
	}
	return flows.Reply{Status: r.Status, Header: r.Header, Body: r.Body}, nil
}

type reply struct {
	Status int
	Header http.Header
	Body   []byte
}

func (p *Portal) send(ctx context.Context, method, target string, body []byte, contentType, bearer, requestID string, extra http.Header) (reply, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return reply{}, err
	}

	req.Header.Set("Accept", "application/json, */*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ua := p.config.API.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set(p.config.Gateway.RequestIDHeader, requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	limit := p.config.Gateway.MaxResponseBytes
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	p.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return reply{}, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(raw)) > limit {
		return reply{}, fmt.Errorf("response body exceeds %d bytes", limit)
	}

	return reply{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// interpret maps a final reply onto a Response or a *RequestError.
func (p *Portal) interpret(method, path, requestID string, r reply, binary bool) (*Response, error) {
	if r.Status < 200 || r.Status >= 300 {
		env := envelope.Parse(r.Body)
		kind, cause := KindTransport, ErrRequestFailed
		if r.Status == http.StatusUnauthorized {
			kind, cause = KindAuthentication, ErrUnauthorized
			p.metricInc(MetricUnauthorizedSurfaced)
		} else {
			p.metricInc(MetricTransportError)
		}
		err := newRequestError(kind, cause, r.Status, envelope.ErrorMessage(r.Body))
		err.ReturnMessage = env.ReturnMessage()
		err.Detail = env.Detail()
		err.Method, err.Path, err.RequestID = method, path, requestID
		p.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", r.Status),
			zap.String("request_id", requestID),
		)
		return nil, err
	}

	resp := &Response{Status: r.Status, Header: r.Header, Raw: r.Body}
	if binary {
		return resp, nil
	}

	data, failure := envelope.Unwrap(r.Body)
	if failure != nil {
		p.metricInc(MetricApplicationError)
		err := newRequestError(KindApplication, ErrApplication, r.Status, failure.Message)
		err.ReturnMessage = failure.ReturnMessage
		err.Detail = failure.Detail
		err.Method, err.Path, err.RequestID = method, path, requestID
		p.logger.Debug("application error",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("code", failure.Code),
			zap.String("request_id", requestID),
		)
		return nil, err
	}
	resp.Data = data
	return resp, nil
}

func (p *Portal) transportFailure(method, path, requestID string, cause error) error {
	p.metricInc(MetricTransportError)
	err := newRequestError(KindTransport, ErrRequestFailed, 0, cause.Error())
	err.err = cause
	err.Method, err.Path, err.RequestID = method, path, requestID
	p.logger.Debug("request transport failure",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Error(cause),
	)
	return err
}

// buildURL resolves path against API.BaseURL. Absolute http(s) URLs are used
// verbatim. Query values that are empty are dropped.
func (p *Portal) buildURL(path string, query url.Values) (string, error) {
	var target string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		target = path
	} else {
		target = strings.TrimRight(p.config.API.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	if len(q) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("build url %q: %w", path, err)
	}
	merged := u.Query()
	for k, vs := range q {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

// isAuthEndpoint matches calls to the sign-in or refresh endpoints, which
// never carry a bearer token and never trigger a refresh.
func (p *Portal) isAuthEndpoint(path string) bool {
	for _, ep := range []string{p.config.API.SignInPath, p.config.API.RefreshPath} {
		ep = strings.Trim(ep, "/")
		if ep != "" && strings.Contains(path, ep) {
			return true
		}
	}
	return false
}

func encodeBody(body any) ([]byte, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return v, "application/json", nil
	case []byte:
		return v, "application/octet-stream", nil
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return nil, "", err
		}
		return b, "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return b, "application/json", nil
	}
}
