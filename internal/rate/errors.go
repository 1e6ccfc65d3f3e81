package rate

import "errors"

var (
	// ErrRateLimited reports a username with no sign-in attempts left in the window.
	ErrRateLimited = errors.New("sign-in attempts exhausted")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
