package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/hrportal/internal/envelope"
	"github.com/MrEthical07/hrportal/session"
)

// RefreshFallbackMessage is reported for any refresh failure the server did not
// describe.
const RefreshFallbackMessage = "Session expired. Please sign in again."

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureNoSession
	RefreshFailureTransport
	RefreshFailureHTTP
	RefreshFailureRejected
	RefreshFailureNoToken
)

// RefreshResult carries either the refreshed session or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	Status  int
	Message string
	Session *session.Session
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Path string
	Call Caller
}

// RunRefresh exchanges the current token for a new one.
//
// Only the token changes; identity fields are carried over from current. A
// reply without a token is a failure.
func RunRefresh(ctx context.Context, current *session.Session, deps RefreshDeps) RefreshResult {
	if current == nil || strings.TrimSpace(current.Token) == "" {
		return RefreshResult{
			Failure: RefreshFailureNoSession,
			Message: "No token to refresh",
		}
	}

	reply, err := deps.Call(ctx, deps.Path, struct{}{}, current.Token)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureTransport,
			Err:     err,
			Message: RefreshFallbackMessage,
		}
	}
	if !reply.OK() {
		return RefreshResult{
			Failure: RefreshFailureHTTP,
			Status:  reply.Status,
			Message: failureMessage(reply.Body, RefreshFallbackMessage),
		}
	}

	if _, fail := envelope.Unwrap(reply.Body); fail != nil {
		return RefreshResult{
			Failure: RefreshFailureRejected,
			Status:  reply.Status,
			Message: fail.Message,
		}
	}

	token := strings.TrimSpace(newAuthPayload(reply.Body).token())
	if token == "" {
		return RefreshResult{
			Failure: RefreshFailureNoToken,
			Status:  reply.Status,
			Message: RefreshFallbackMessage,
		}
	}

	return RefreshResult{
		Status:  reply.Status,
		Session: current.WithToken(token),
	}
}
