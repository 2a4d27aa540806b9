package goLogin

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goLogin/cookie"
)

// StartIDPFlowRequest names the external provider and the URLs the provider
// should return the browser to.
type StartIDPFlowRequest struct {
	IDPID      string
	SuccessURL string
	FailureURL string
}

// IDPCallbackRequest carries the intent reference delivered to the callback
// page after the external provider ceremony.
type IDPCallbackRequest struct {
	IntentID     string
	IntentToken  string
	Organization string
	RequestID    string
}

// StartIDPFlow asks the identity API to begin an external-IdP flow and
// returns the provider URL to send the browser to.
//
// StartIDPFlow may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) StartIDPFlow(ctx context.Context, req StartIDPFlowRequest) (string, error) {
	if e == nil || e.api == nil {
		return "", ErrEngineNotReady
	}
	if req.IDPID == "" {
		return "", fmt.Errorf("%w: idp id required", ErrPreconditionFailed)
	}

	authURL, err := e.api.StartIDPFlow(ctx, req.IDPID, req.SuccessURL, req.FailureURL)
	if err != nil {
		return "", mapAPIError(err)
	}
	return authURL, nil
}

// HandleIDPCallback retrieves the completed intent, auto-registers the user
// when the external identity is not linked yet, creates a session carrying
// the intent check, and runs the step-up evaluation.
//
// HandleIDPCallback may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) HandleIDPCallback(ctx context.Context, jar cookie.Jar, req IDPCallbackRequest) (*CheckResult, error) {
	if e == nil || e.api == nil {
		return nil, ErrEngineNotReady
	}
	if req.IntentID == "" || req.IntentToken == "" {
		return nil, fmt.Errorf("%w: intent reference required", ErrPreconditionFailed)
	}

	intent, err := e.api.GetIDPIntent(ctx, req.IntentID, req.IntentToken)
	if err != nil {
		return nil, mapAPIError(err)
	}

	userID := intent.UserID
	if userID == "" {
		user, err := e.linkOrRegisterFromIntent(ctx, req.Organization, intent)
		if err != nil {
			return nil, err
		}
		userID = user.ID
	}

	created, err := e.api.CreateSession(ctx, SessionChecks{
		User: &UserCheck{UserID: userID},
		Intent: &IntentCheck{
			IntentID: req.IntentID,
			Token:    req.IntentToken,
		},
	}, e.config.Login.SessionLifetime)
	if err != nil {
		mapped := mapAPIError(err)
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, "", req.Organization, "", mapped, nil)
		return nil, mapped
	}

	store := e.Sessions(jar)
	if _, err := e.persistRecord(store, created, req.RequestID); err != nil {
		return nil, err
	}

	result, err := e.finishLogin(ctx, created.Session, req.Organization, req.RequestID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricIDPLoginSuccess)
	e.emitAudit(ctx, auditEventIDPLoginSuccess, true, userID, "", req.Organization,
		created.ID, nil, func() map[string]string {
			return map[string]string{"idp_id": intent.IDPID}
		})
	return result, nil
}

// linkOrRegisterFromIntent resolves an unlinked external identity to a local
// user: an existing user whose login name matches the provider-reported email
// gets the identity linked, otherwise a new user is registered.
func (e *Engine) linkOrRegisterFromIntent(ctx context.Context, organization string, intent *IDPIntent) (*User, error) {
	info := intent.Information

	if info.Email != "" && info.EmailVerified {
		users, err := e.api.ListUsersByLoginName(ctx, info.Email, organization)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		if len(users) == 1 {
			user := users[0]
			if err := e.api.AddIDPLink(ctx, user.ID, IDPLink{
				IDPID:    intent.IDPID,
				UserID:   info.ID,
				UserName: info.UserName,
			}); err != nil {
				return nil, mapAPIError(err)
			}
			return &user, nil
		}
	}

	return e.registerFromIntent(ctx, organization, intent)
}

// registerFromIntent creates a local user from the provider-reported
// profile with the external identity linked.
func (e *Engine) registerFromIntent(ctx context.Context, organization string, intent *IDPIntent) (*User, error) {
	info := intent.Information
	user, err := e.api.AddHumanUser(ctx, NewHumanUser{
		Organization:  organization,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		IDPLink: &IDPLink{
			IDPID:    intent.IDPID,
			UserID:   info.ID,
			UserName: info.UserName,
		},
	})
	if err != nil {
		mapped := mapAPIError(err)
		if errors.Is(mapped, ErrInvalidCredentials) {
			// CodeInvalidArgument on user creation is a malformed profile,
			// not a credential problem.
			mapped = fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
		}
		return nil, mapped
	}

	e.emitAudit(ctx, auditEventIDPAutoRegister, true, user.ID, user.LoginName,
		organization, "", nil, func() map[string]string {
			return map[string]string{"idp_id": intent.IDPID}
		})
	return user, nil
}
