package goLogin

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goLogin/cookie"
)

// Config defines a public type used by goLogin APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie   CookieConfig
	Login    LoginConfig
	StepUp   StepUpConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by goLogin APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string
	Secret   []byte
	MaxBytes int
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
LOGIN CONFIG
====================================
*/

// LoginConfig defines a public type used by goLogin APIs.
//
// LoginConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginConfig struct {
	// SessionLifetime is requested on every session create call.
	SessionLifetime time.Duration
	// DefaultRedirectURI is the instance-level fallback when neither a
	// request id nor a tenant default is present.
	DefaultRedirectURI string
}

/*
====================================
STEP-UP CONFIG
====================================
*/

// StepUpConfig defines a public type used by goLogin APIs.
//
// StepUpConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StepUpConfig struct {
	// RequireEmailVerification gates logins on a verified email address.
	RequireEmailVerification bool
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig configures the optional Redis-backed front-tier password
// attempt throttle. The authoritative lockout lives in the identity API;
// this throttle only sheds repeated attempts before they reach it.
type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goLogin APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goLogin APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. Callers adjust fields and
// pass the result to Builder.WithConfig; the cookie secret must still be set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Name:     cookie.DefaultName,
			MaxBytes: cookie.DefaultMaxBytes,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		Login: LoginConfig{
			SessionLifetime: 24 * time.Hour,
		},
		StepUp: StepUpConfig{
			RequireEmailVerification: false,
		},
		Throttle: ThrottleConfig{
			Enabled:     false,
			MaxAttempts: 5,
			Window:      15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Cookie.Secret = cloneBytes(cfg.Cookie.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	// Cookie
	if len(c.Cookie.Secret) == 0 {
		return errors.New("Cookie Secret is required")
	}
	if c.Cookie.MaxBytes <= 0 {
		return errors.New("Cookie MaxBytes must be > 0")
	}
	if c.Cookie.MaxBytes > 4096 {
		return errors.New("Cookie MaxBytes must not exceed the 4096 byte browser limit")
	}

	// Login
	if c.Login.SessionLifetime <= 0 {
		return errors.New("Login SessionLifetime must be > 0")
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.MaxAttempts <= 0 {
			return errors.New("Throttle MaxAttempts must be > 0 when enabled")
		}
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle Window must be > 0 when enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
