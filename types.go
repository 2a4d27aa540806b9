package goLogin

import "time"

// AuthMethod identifies one authentication method a user can have enrolled.
type AuthMethod uint8

const (
	// MethodUnspecified marks the generic method-selection step; it is never
	// an enrolled method.
	MethodUnspecified AuthMethod = iota
	// MethodPassword is an exported constant or variable used by the login orchestrator.
	MethodPassword
	// MethodPasskey is an exported constant or variable used by the login orchestrator.
	MethodPasskey
	// MethodTOTP is an exported constant or variable used by the login orchestrator.
	MethodTOTP
	// MethodOTPSMS is an exported constant or variable used by the login orchestrator.
	MethodOTPSMS
	// MethodOTPEmail is an exported constant or variable used by the login orchestrator.
	MethodOTPEmail
	// MethodU2F is an exported constant or variable used by the login orchestrator.
	MethodU2F
)

// String describes the string operation and its observable behavior.
func (m AuthMethod) String() string {
	switch m {
	case MethodPassword:
		return "password"
	case MethodPasskey:
		return "passkey"
	case MethodTOTP:
		return "totp"
	case MethodOTPSMS:
		return "otp_sms"
	case MethodOTPEmail:
		return "otp_email"
	case MethodU2F:
		return "u2f"
	default:
		return "unspecified"
	}
}

// Factor is one verified check on a session. A zero VerifiedAt means the
// factor has never been verified.
type Factor struct {
	VerifiedAt time.Time
}

// Verified reports whether the factor has been verified.
func (f *Factor) Verified() bool {
	return f != nil && !f.VerifiedAt.IsZero()
}

// WebAuthNFactor distinguishes a true passkey ceremony (UserVerified) from a
// bare security-key assertion.
type WebAuthNFactor struct {
	VerifiedAt   time.Time
	UserVerified bool
}

// Verified reports whether the WebAuthn factor has been verified.
func (f *WebAuthNFactor) Verified() bool {
	return f != nil && !f.VerifiedAt.IsZero()
}

// UserFactor carries the user resolved on the session.
type UserFactor struct {
	VerifiedAt     time.Time
	ID             string
	LoginName      string
	OrganizationID string
	DisplayName    string
}

// SessionFactors is the set of checks verified on a session. Factors are
// only ever added or re-timestamped by the identity API, never individually
// revoked; the session expires or is removed as a whole.
type SessionFactors struct {
	User     *UserFactor
	Password *Factor
	WebAuthN *WebAuthNFactor
	TOTP     *Factor
	OTPEmail *Factor
	OTPSMS   *Factor
	U2F      *Factor
	Intent   *Factor
}

// AuthSession is the authoritative session object held by the identity API.
// This tier never mutates it directly; it requests checks and re-reads.
//
// AuthSession instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthSession struct {
	ID             string
	Factors        SessionFactors
	CreationDate   time.Time
	ChangeDate     time.Time
	ExpirationDate time.Time // zero = no expiry
}

// Expired reports whether the session's expiration date has passed.
func (s *AuthSession) Expired(now time.Time) bool {
	return !s.ExpirationDate.IsZero() && !s.ExpirationDate.After(now)
}

// User is the human user profile as served by the identity API.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User struct {
	ID                     string
	LoginName              string
	OrganizationID         string
	Email                  string
	EmailVerified          bool
	PasswordChangeRequired bool
	PasswordChangedAt      time.Time
	MFAInitSkippedAt       time.Time
}

// LoginSettings is the tenant-scoped login policy. Fetched per evaluation
// and never cached beyond request scope: a hidden cache can go stale across
// tenants.
type LoginSettings struct {
	ForceMFA            bool
	ForceMFALocalOnly   bool
	MFAInitSkipLifetime time.Duration
	DefaultRedirectURI  string
}

// LockoutSettings is the tenant-scoped lockout policy.
type LockoutSettings struct {
	MaxPasswordAttempts uint64
}

// PasswordExpirySettings is the tenant-scoped password-age policy. A zero
// MaxAgeDays disables expiry.
type PasswordExpirySettings struct {
	MaxAgeDays uint64
}
