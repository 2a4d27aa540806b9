package goLogin

import (
	"errors"

	"github.com/MrEthical07/goLogin/cookie"
	"github.com/MrEthical07/goLogin/internal/limiters"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goLogin APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	api    IdentityAPI
	redis  *redis.Client

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithIdentityAPI describes the withidentityapi operation and its observable behavior.
func (b *Builder) WithIdentityAPI(api IdentityAPI) *Builder {
	b.api = api
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithCookieSecret describes the withcookiesecret operation and its observable behavior.
func (b *Builder) WithCookieSecret(secret []byte) *Builder {
	b.config.Cookie.Secret = cloneBytes(secret)
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.api == nil {
		return nil, errors.New("identity api required")
	}

	if cfg.Throttle.Enabled && b.redis == nil {
		return nil, errors.New("Throttle requires redis client")
	}

	codec, err := cookie.NewCodec(cfg.Cookie.Secret)
	if err != nil {
		return nil, err
	}

	var limiter *limiters.PasswordLimiter
	if cfg.Throttle.Enabled {
		limiter = limiters.NewPasswordLimiter(b.redis, limiters.PasswordConfig{
			Enabled:     true,
			MaxAttempts: cfg.Throttle.MaxAttempts,
			Window:      cfg.Throttle.Window,
		})
	}

	engine := &Engine{
		config:  cfg,
		api:     b.api,
		codec:   codec,
		limiter: limiter,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true
	return engine, nil
}
