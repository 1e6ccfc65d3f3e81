package hrportal

import "errors"

var (
	// ErrInvalidCredentials marks every sign-in failure, whatever its cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession is returned when an operation needs a session and none exists.
	ErrNoSession = errors.New("no session")
	// ErrSessionExpired marks a failed token refresh. The session is already
	// signed out when this error is returned.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthorized marks a 401 that the gateway surfaced to the caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestFailed marks transport failures: no response, or a non-2xx status.
	ErrRequestFailed = errors.New("request failed")
	// ErrApplication marks a 2xx response whose envelope reports a failure code.
	ErrApplication = errors.New("application error")
	// ErrPortalNotReady is returned by a nil or unbuilt Portal.
	ErrPortalNotReady = errors.New("portal not initialized")
	// ErrRefreshTokenMissing marks a refresh response that carried no token.
	ErrRefreshTokenMissing = errors.New("refresh response carried no token")
)

// ErrorKind classifies a RequestError.
type ErrorKind int

const (
	// KindTransport is a network failure or a non-401 HTTP error status.
	KindTransport ErrorKind = iota + 1
	// KindApplication is a 2xx response carrying a non-success returnCode.
	KindApplication
	// KindAuthentication is a 401 the gateway did not absorb.
	KindAuthentication
	// KindRefresh is a failed token refresh; the session has been signed out.
	KindRefresh
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindAuthentication:
		return "authentication"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// RequestError is the normalized shape of every failure the Portal reports.
//
// Feature code reads Status and Message; it never needs the raw transport
// error. Detail carries the envelope's data field of an application failure
// (often a server-side stack trace) separately from the user-facing Message.
type RequestError struct {
	Kind          ErrorKind
	Status        int
	Message       string
	ReturnMessage string
	Detail        string
	Method        string
	Path          string
	RequestID     string

	cause error
	err   error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap exposes the sentinel cause and, for transport failures, the
// underlying error.
func (e *RequestError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.cause != nil {
		out = append(out, e.cause)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

func newRequestError(kind ErrorKind, cause error, status int, message string) *RequestError {
	return &RequestError{
		Kind:    kind,
		Status:  status,
		Message: message,
		cause:   cause,
	}
}

// AsRequestError unwraps err to a *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ErrorMessage returns the user-facing message of err: the RequestError
// message when there is one, else err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if re, ok := AsRequestError(err); ok && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
