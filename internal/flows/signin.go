package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/hrportal/session"
)

const (
	// SignInFallbackMessage is reported when a failed sign-in carries no
	// readable message.
	SignInFallbackMessage = "Invalid username or password. Please try again."
	// SignInRejectedMessage is the default for a non-success returnCode.
	SignInRejectedMessage = "Login failed"
)

// SignInFailureKind classifies sign-in failures for root-level mapping.
type SignInFailureKind int

const (
	SignInFailureNone SignInFailureKind = iota
	SignInFailureTransport
	SignInFailureHTTP
	SignInFailureRejected
	SignInFailureNoToken
)

// SignInResult carries either the new session or failure metadata.
type SignInResult struct {
	Failure SignInFailureKind
	Err     error
	Status  int
	Message string
	Session *session.Session
}

// SignInDeps captures sign-in flow dependencies.
type SignInDeps struct {
	Path string
	Call Caller
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RunSignIn posts the credentials and normalizes the backend's answer.
//
// Priority: a present non-success returnCode fails with returnMessage; the
// payload is data when present, else the body; a missing token fails; identity
// fields come from the payload, then the body.
func RunSignIn(ctx context.Context, username, password string, deps SignInDeps) SignInResult {
	reply, err := deps.Call(ctx, deps.Path, signInRequest{Username: username, Password: password}, "")
	if err != nil {
		return SignInResult{
			Failure: SignInFailureTransport,
			Err:     err,
			Message: SignInFallbackMessage,
		}
	}
	if !reply.OK() {
		return SignInResult{
			Failure: SignInFailureHTTP,
			Status:  reply.Status,
			Message: failureMessage(reply.Body, SignInFallbackMessage),
		}
	}

	p := newAuthPayload(reply.Body)
	if p.rejected() {
		msg := p.body.ReturnMessage()
		if msg == "" {
			msg = SignInRejectedMessage
		}
		return SignInResult{
			Failure: SignInFailureRejected,
			Status:  reply.Status,
			Message: msg,
		}
	}

	token := strings.TrimSpace(p.token())
	if token == "" {
		msg := p.body.ReturnMessage()
		if msg == "" {
			msg = SignInFallbackMessage
		}
		return SignInResult{
			Failure: SignInFailureNoToken,
			Status:  reply.Status,
			Message: msg,
		}
	}

	return SignInResult{
		Status:  reply.Status,
		Session: p.sessionFrom(username, token),
	}
}
