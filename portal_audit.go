package hrportal

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/hrportal/session"
)

// Audit event types. AuditConfig.Events selects among them.
const (
	AuditEventSignInSuccess  = "sign_in_success"
	AuditEventSignInFailure  = "sign_in_failure"
	AuditEventRefreshSuccess = "refresh_success"
	AuditEventRefreshFailure = "refresh_failure"
	AuditEventSignOut        = "sign_out"
	AuditEventRedirectSignIn = "redirect_sign_in"
	AuditEventGuardRedirect  = "guard_redirect"
)

var auditEventTypes = []string{
	AuditEventSignInSuccess,
	AuditEventSignInFailure,
	AuditEventRefreshSuccess,
	AuditEventRefreshFailure,
	AuditEventSignOut,
	AuditEventRedirectSignIn,
	AuditEventGuardRedirect,
}

// AuditErrorCode is the stable error label carried by failed audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrNoSession          AuditErrorCode = "no_session"
	auditErrRefreshTokenMissed AuditErrorCode = "refresh_token_missing"
	auditErrSessionExpired     AuditErrorCode = "session_expired"
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrApplication        AuditErrorCode = "application_error"
	auditErrRequestFailed      AuditErrorCode = "request_failed"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (p *Portal) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	s *session.Session,
	err error,
	metadataBuilder func() map[string]string,
) {
	p.emitAuditEvent(ctx, AuditEvent{EventType: eventType, Success: success}, s, err, metadataBuilder)
}

func (p *Portal) emitAuditEvent(
	ctx context.Context,
	event AuditEvent,
	s *session.Session,
	err error,
	metadataBuilder func() map[string]string,
) {
	if p == nil || p.audit == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	event.RequestID = requestIDFromContext(ctx)
	if s != nil {
		event.UserID = s.ID
		event.Username = s.Username
	}
	if metadataBuilder != nil {
		event.Metadata = metadataBuilder()
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	p.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrNoSession):
		return auditErrNoSession
	case errors.Is(err, ErrRefreshTokenMissing):
		return auditErrRefreshTokenMissed
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrApplication):
		return auditErrApplication
	case errors.Is(err, ErrRequestFailed):
		return auditErrRequestFailed
	default:
		return auditErrInternal
	}
}
