package goLogin

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goLogin/cookie"
)

// RegisterRequest is the input to RegisterUser.
type RegisterRequest struct {
	Email        string
	GivenName    string
	FamilyName   string
	Password     string
	Organization string
	RequestID    string
}

// RegisterUser creates the user at the identity API, opens a session with
// the password already checked, and runs the step-up evaluation. With email
// verification required, the first step after registration is the verify
// page.
//
// RegisterUser may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) RegisterUser(ctx context.Context, jar cookie.Jar, req RegisterRequest) (*CheckResult, error) {
	if e == nil || e.api == nil {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email required", ErrPreconditionFailed)
	}
	if req.Password == "" {
		return nil, ErrMissingPassword
	}

	user, err := e.api.AddHumanUser(ctx, NewHumanUser{
		Organization: req.Organization,
		Email:        req.Email,
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		Password:     req.Password,
	})
	if err != nil {
		mapped := mapAPIError(err)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email,
			req.Organization, "", mapped, nil)
		return nil, mapped
	}

	created, err := e.api.CreateSession(ctx, SessionChecks{
		User:     &UserCheck{UserID: user.ID},
		Password: &PasswordCheck{Password: req.Password},
	}, e.config.Login.SessionLifetime)
	if err != nil {
		return nil, mapAPIError(err)
	}

	store := e.Sessions(jar)
	if _, err := e.persistRecord(store, created, req.RequestID); err != nil {
		return nil, err
	}

	result, err := e.finishLogin(ctx, created.Session, req.Organization, req.RequestID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, user.ID, user.LoginName,
		req.Organization, created.ID, nil, nil)
	return result, nil
}
