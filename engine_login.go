package goLogin

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goLogin/cookie"
)

// LockoutResult reports a spent password-attempt budget.
type LockoutResult struct {
	AttemptsUsed uint64
	AttemptsMax  uint64
	Message      string
}

// CheckResult is the outcome of one command handler call. Exactly one of
// the following holds: Locked is set (terminal failure shown to the user),
// Action is set with the remediation Redirect, or only Redirect is set and
// the login is complete.
type CheckResult struct {
	Session  *AuthSession
	Action   *Action
	Redirect Redirect
	Locked   *LockoutResult
}

// persistRecord writes the session reference into the cookie store, keyed
// for later lookup by login name and id.
func (e *Engine) persistRecord(store *cookie.Store, created *CreatedSession, requestID string) (cookie.Record, error) {
	session := created.Session

	record := cookie.Record{
		ID:        created.ID,
		Token:     created.Token,
		RequestID: requestID,
	}
	if user := session.Factors.User; user != nil {
		record.LoginName = user.LoginName
		record.Organization = user.OrganizationID
	}
	record.CreationTS = session.CreationDate.Unix()
	record.ChangeTS = session.ChangeDate.Unix()
	if !session.ExpirationDate.IsZero() {
		record.ExpirationTS = session.ExpirationDate.Unix()
	}

	if err := store.Add(record, true, 0); err != nil {
		return cookie.Record{}, err
	}
	return record, nil
}

// finishLogin runs the step-up evaluation for a freshly checked session and
// produces either the remediation redirect or the final one.
func (e *Engine) finishLogin(ctx context.Context, session *AuthSession, organization, requestID string) (*CheckResult, error) {
	userFactor := session.Factors.User
	if userFactor == nil {
		return nil, fmt.Errorf("%w: session has no user", ErrPreconditionFailed)
	}

	user, err := e.api.GetUserByID(ctx, userFactor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	loginSettings, err := e.api.GetLoginSettings(ctx, user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	passwordExpiry, err := e.api.GetPasswordExpirySettings(ctx, user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	methods, err := e.api.GetActiveAuthMethods(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	action := EvaluateStepUp(EvalInput{
		Session:                  session,
		User:                     user,
		LoginSettings:            loginSettings,
		PasswordExpiry:           passwordExpiry,
		AuthMethods:              methods,
		RequireEmailVerification: e.config.StepUp.RequireEmailVerification,
		Organization:             organization,
		RequestID:                requestID,
	})
	if action != nil {
		e.metricInc(MetricStepUpRequired)
		e.emitAudit(ctx, auditEventStepUpRequired, true, user.ID, user.LoginName,
			user.OrganizationID, session.ID, nil, func() map[string]string {
				return map[string]string{
					"kind":   action.Kind.String(),
					"method": action.Method.String(),
				}
			})
		return &CheckResult{
			Session:  session,
			Action:   action,
			Redirect: actionRedirect(action),
		}, nil
	}

	return &CheckResult{
		Session:  session,
		Redirect: e.finalRedirect(session.ID, user.LoginName, requestID, loginSettings),
	}, nil
}

// finalRedirect computes where a fully satisfied login lands: the OIDC
// continuation when a request id is present, otherwise the tenant's default
// redirect URI, otherwise the plain signed-in page.
func (e *Engine) finalRedirect(sessionID, loginName, requestID string, settings *LoginSettings) Redirect {
	if requestID != "" {
		return Redirect{
			Path: PathLogin,
			Params: RedirectParams{
				SessionID: sessionID,
				RequestID: requestID,
			},
		}
	}
	if settings != nil && settings.DefaultRedirectURI != "" {
		return Redirect{Path: settings.DefaultRedirectURI}
	}
	if e.config.Login.DefaultRedirectURI != "" {
		return Redirect{Path: e.config.Login.DefaultRedirectURI}
	}
	return Redirect{
		Path:   PathSignedIn,
		Params: RedirectParams{LoginName: loginName},
	}
}

// Logout removes the cached record for the login name. Logging out a login
// name with no cached session is a no-op.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Logout(ctx context.Context, jar cookie.Jar, loginName, organization string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if loginName == "" {
		return ErrMissingLoginName
	}

	store := e.Sessions(jar)
	record, err := store.GetByLoginName(loginName, organization)
	if err != nil {
		return nil
	}

	if err := store.Remove(record, true, 0); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", loginName, organization, record.ID, nil, nil)
	return nil
}
