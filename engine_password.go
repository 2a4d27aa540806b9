package goLogin

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goLogin/cookie"
)

// PasswordCheckRequest is the input to CheckPassword.
type PasswordCheckRequest struct {
	LoginName    string
	Password     string
	Organization string
	RequestID    string
}

// CheckPassword verifies the password against the identity API, reusing the
// cached session for the login name when one exists, then persists the
// session reference and runs the step-up evaluation.
//
// CheckPassword may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) CheckPassword(ctx context.Context, jar cookie.Jar, req PasswordCheckRequest) (*CheckResult, error) {
	if e == nil || e.api == nil {
		return nil, ErrEngineNotReady
	}
	if req.LoginName == "" {
		return nil, ErrMissingLoginName
	}
	if req.Password == "" {
		return nil, ErrMissingPassword
	}

	throttled, err := e.limiter.Throttled(ctx, req.LoginName)
	if err != nil {
		// The throttle is advisory; the authoritative lockout lives in the
		// identity API. A dead throttle backend degrades to pass-through.
		e.emitAudit(ctx, auditEventThrottleDegraded, false, "", req.LoginName,
			req.Organization, "", err, nil)
	} else if throttled {
		e.metricInc(MetricLoginThrottled)
		e.emitAudit(ctx, auditEventLoginThrottled, false, "", req.LoginName,
			req.Organization, "", ErrAttemptsThrottled, nil)
		return nil, ErrAttemptsThrottled
	}

	store := e.Sessions(jar)
	created, err := e.checkPasswordOnSession(ctx, store, req)
	if err != nil {
		return e.handlePasswordFailure(ctx, req, err)
	}

	if err := e.limiter.Reset(ctx, req.LoginName); err != nil {
		e.emitAudit(ctx, auditEventThrottleDegraded, false, "", req.LoginName,
			req.Organization, "", err, nil)
	}

	if _, err := e.persistRecord(store, created, req.RequestID); err != nil {
		return nil, err
	}

	result, err := e.finishLogin(ctx, created.Session, req.Organization, req.RequestID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, userIDOf(created.Session),
		req.LoginName, req.Organization, created.ID, nil, nil)
	return result, nil
}

// checkPasswordOnSession updates the cached session for the login name when
// one exists, falling back to a fresh session when the cached token is
// rejected.
func (e *Engine) checkPasswordOnSession(ctx context.Context, store *cookie.Store, req PasswordCheckRequest) (*CreatedSession, error) {
	checks := SessionChecks{
		Password: &PasswordCheck{Password: req.Password},
	}

	record, err := store.GetByLoginName(req.LoginName, req.Organization)
	if err == nil {
		created, err := e.api.SetSessionChecks(ctx, record.ID, record.Token, checks)
		if err == nil {
			return created, nil
		}
		code := apiCode(err)
		if code != CodeInvalidSessionToken && code != CodeNotFound {
			return nil, err
		}
		_ = store.Remove(record, true, 0)
		e.metricInc(MetricSessionTokenRejected)
	}

	checks.User = &UserCheck{
		LoginName:    req.LoginName,
		Organization: req.Organization,
	}
	return e.api.CreateSession(ctx, checks, e.config.Login.SessionLifetime)
}

// handlePasswordFailure maps a failed check into either the terminal
// LockedOut result or an error, recording the failed attempt either way.
func (e *Engine) handlePasswordFailure(ctx context.Context, req PasswordCheckRequest, checkErr error) (*CheckResult, error) {
	if apiCode(checkErr) == CodeResourceExhausted {
		settings, err := e.api.GetLockoutSettings(ctx, req.Organization)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}

		locked := &LockoutResult{
			AttemptsUsed: settings.MaxPasswordAttempts,
			AttemptsMax:  settings.MaxPasswordAttempts,
			Message: fmt.Sprintf("Account locked: %d of %d password attempts used.",
				settings.MaxPasswordAttempts, settings.MaxPasswordAttempts),
		}
		e.metricInc(MetricLoginLockedOut)
		e.emitAudit(ctx, auditEventLoginLockedOut, false, "", req.LoginName,
			req.Organization, "", ErrLockedOut, nil)
		return &CheckResult{Locked: locked}, nil
	}

	mapped := mapAPIError(checkErr)
	if errors.Is(mapped, ErrInvalidCredentials) {
		if _, err := e.limiter.RecordFailure(ctx, req.LoginName); err != nil {
			e.emitAudit(ctx, auditEventThrottleDegraded, false, "", req.LoginName,
				req.Organization, "", err, nil)
		}
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, "", req.LoginName,
		req.Organization, "", mapped, nil)
	return nil, mapped
}

// ChangePassword sets a new password for the login name and is called by
// the password-change remediation page.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) ChangePassword(ctx context.Context, loginName, organization, newPassword string) error {
	if e == nil || e.api == nil {
		return ErrEngineNotReady
	}
	if loginName == "" {
		return ErrMissingLoginName
	}
	if newPassword == "" {
		return ErrMissingPassword
	}

	users, err := e.api.ListUsersByLoginName(ctx, loginName, organization)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if len(users) != 1 {
		return fmt.Errorf("%w: login name is not unique", ErrNotFound)
	}

	if err := e.api.SetPassword(ctx, users[0].ID, newPassword); err != nil {
		return mapAPIError(err)
	}
	return nil
}

func userIDOf(s *AuthSession) string {
	if s == nil || s.Factors.User == nil {
		return ""
	}
	return s.Factors.User.ID
}

func loginNameOf(s *AuthSession) string {
	if s == nil || s.Factors.User == nil {
		return ""
	}
	return s.Factors.User.LoginName
}
