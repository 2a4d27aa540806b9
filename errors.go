package goLogin

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the login orchestrator.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrMissingLoginName is an exported constant or variable used by the login orchestrator.
	ErrMissingLoginName = errors.New("login name required")
	// ErrMissingPassword is an exported constant or variable used by the login orchestrator.
	ErrMissingPassword = errors.New("password required")
	// ErrInvalidCredentials is an exported constant or variable used by the login orchestrator.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when a cookie record, session, or user lookup
	// misses. Recoverable: callers start a fresh login.
	ErrNotFound = errors.New("not found")
	// ErrLockedOut is an exported constant or variable used by the login orchestrator.
	ErrLockedOut = errors.New("account locked")
	// ErrDependencyUnavailable is returned when the identity API or a
	// required settings fetch fails. Never treated as a pass.
	ErrDependencyUnavailable = errors.New("identity backend unavailable")
	// ErrInvalidSessionToken is returned when the identity API rejects a
	// stored session token. The offending cookie record is removed.
	ErrInvalidSessionToken = errors.New("session token invalid")
	// ErrPreconditionFailed is an exported constant or variable used by the login orchestrator.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrAttemptsThrottled is returned by the front-tier throttle before the
	// identity API is consulted at all.
	ErrAttemptsThrottled = errors.New("too many password attempts, try again later")
)
