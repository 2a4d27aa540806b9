package goLogin

import (
	"context"
	"errors"
	"time"
)

// APICode classifies identity-API failures. The orchestrator interprets
// codes; message text is passed through for user-facing display only.
type APICode uint8

const (
	// CodeUnknown is an exported constant or variable used by the login orchestrator.
	CodeUnknown APICode = iota
	// CodeNotFound is an exported constant or variable used by the login orchestrator.
	CodeNotFound
	// CodeInvalidArgument covers malformed requests and failed credential checks.
	CodeInvalidArgument
	// CodeFailedPrecondition covers operations on users in the wrong state,
	// e.g. setting a password on a user not yet initialized.
	CodeFailedPrecondition
	// CodeInvalidSessionToken means the stored session token was rejected;
	// the corresponding cookie record must be cleaned up.
	CodeInvalidSessionToken
	// CodeResourceExhausted means the wrong-password attempt budget is spent
	// and the account is locked.
	CodeResourceExhausted
	// CodeUnavailable covers transport and backend failures.
	CodeUnavailable
)

// APIError is the error shape of every identity-API call.
type APIError struct {
	Code    APICode
	Message string
}

// Error describes the error operation and its observable behavior.
func (e *APIError) Error() string {
	if e.Message == "" {
		return "identity api error"
	}
	return e.Message
}

func apiCode(err error) APICode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeUnknown
}

// UserCheck resolves the session's user either by id or by login name
// within an optional organization.
type UserCheck struct {
	UserID       string
	LoginName    string
	Organization string
}

// PasswordCheck verifies the user's password on the session.
type PasswordCheck struct {
	Password string
}

// IntentCheck verifies a completed external-IdP intent on the session.
type IntentCheck struct {
	IntentID string
	Token    string
}

// SessionChecks is the closed set of checks this tier can request. WebAuthn
// and OTP ceremonies are driven by the browser against the identity API
// directly and never pass through here.
type SessionChecks struct {
	User     *UserCheck
	Password *PasswordCheck
	Intent   *IntentCheck
}

// CreatedSession is returned by session create/set-checks calls. The token
// authorizes subsequent reads and updates of the session and is persisted
// only in the session cookie.
type CreatedSession struct {
	ID      string
	Token   string
	Session *AuthSession
}

// NewHumanUser is the registration payload.
type NewHumanUser struct {
	Organization           string
	Email                  string
	EmailVerified          bool
	GivenName              string
	FamilyName             string
	Password               string
	PasswordChangeRequired bool
	IDPLink                *IDPLink
}

// IDPLink ties a local user to an identity at an external provider.
type IDPLink struct {
	IDPID    string
	UserID   string
	UserName string
}

// IDPUserInfo is the profile the external provider reported for an intent.
type IDPUserInfo struct {
	ID            string
	UserName      string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// IDPIntent is the retrieved result of an external-IdP flow. UserID is the
// linked local user, empty when the external identity is not linked yet.
type IDPIntent struct {
	IDPID       string
	UserID      string
	Information IDPUserInfo
}

// IdentityAPI is the remote identity platform as consumed by this tier.
// Every call is one network round-trip; failures are *APIError values
// classified by APICode. Implementations must be safe for concurrent use.
type IdentityAPI interface {
	CreateSession(ctx context.Context, checks SessionChecks, lifetime time.Duration) (*CreatedSession, error)
	GetSession(ctx context.Context, id, token string) (*AuthSession, error)
	SetSessionChecks(ctx context.Context, id, token string, checks SessionChecks) (*CreatedSession, error)

	GetUserByID(ctx context.Context, id string) (*User, error)
	ListUsersByLoginName(ctx context.Context, loginName, organization string) ([]User, error)

	GetLoginSettings(ctx context.Context, organization string) (*LoginSettings, error)
	GetLockoutSettings(ctx context.Context, organization string) (*LockoutSettings, error)
	GetPasswordExpirySettings(ctx context.Context, organization string) (*PasswordExpirySettings, error)
	GetActiveAuthMethods(ctx context.Context, userID string) ([]AuthMethod, error)

	SetPassword(ctx context.Context, userID, password string) error
	AddHumanUser(ctx context.Context, user NewHumanUser) (*User, error)
	AddIDPLink(ctx context.Context, userID string, link IDPLink) error

	StartIDPFlow(ctx context.Context, idpID, successURL, failureURL string) (string, error)
	GetIDPIntent(ctx context.Context, intentID, token string) (*IDPIntent, error)
}
