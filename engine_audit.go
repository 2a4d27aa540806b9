package goLogin

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goLogin/cookie"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLoginLockedOut     = "login_locked_out"
	auditEventLoginThrottled     = "login_throttled"
	auditEventStepUpRequired     = "stepup_required"
	auditEventSessionReused      = "session_reused"
	auditEventSessionEvicted     = "session_evicted"
	auditEventSessionTokenReject = "session_token_rejected"
	auditEventIDPLoginSuccess    = "idp_login_success"
	auditEventIDPAutoRegister    = "idp_auto_register"
	auditEventRegisterSuccess    = "register_success"
	auditEventRegisterFailure    = "register_failure"
	auditEventLogout             = "logout"
	auditEventThrottleDegraded   = "throttle_degraded"
)

// AuditErrorCode defines a public type used by goLogin APIs.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrLockedOut          AuditErrorCode = "locked_out"
	auditErrThrottled          AuditErrorCode = "throttled"
	auditErrNotFound           AuditErrorCode = "not_found"
	auditErrInvalidToken       AuditErrorCode = "invalid_session_token"
	auditErrPrecondition       AuditErrorCode = "precondition_failed"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLockedOut):
		return auditErrLockedOut
	case errors.Is(err, ErrAttemptsThrottled):
		return auditErrThrottled
	case errors.Is(err, ErrNotFound), errors.Is(err, cookie.ErrNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrInvalidSessionToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrPreconditionFailed):
		return auditErrPrecondition
	case errors.Is(err, ErrDependencyUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	loginName string,
	organization string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    eventType,
		UserID:       userID,
		LoginName:    loginName,
		Organization: organization,
		SessionID:    sessionID,
		IP:           clientIPFromContext(ctx),
		Success:      success,
		Metadata:     metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}
