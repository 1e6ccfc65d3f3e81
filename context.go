package hrportal

import "context"

type requestIDContextKey struct{}
type currentURLContextKey struct{}

// WithRequestID fixes the X-Request-ID the gateway sends for calls made with
// ctx. Without it every call gets a fresh uuid.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithCurrentURL records the page a call is made on behalf of. Server-rendered
// shells serve many users at once and set this per request; it takes
// precedence over Navigator.CurrentURL when building the sign-in return URL.
func WithCurrentURL(ctx context.Context, u string) context.Context {
	return context.WithValue(ctx, currentURLContextKey{}, u)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func currentURLFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	u, ok := ctx.Value(currentURLContextKey{}).(string)
	return u, ok && u != ""
}
