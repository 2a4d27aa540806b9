package limiters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// PasswordConfig holds configuration for the password attempt throttle.
type PasswordConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

// ErrThrottleUnavailable indicates the throttle backend is unreachable.
var ErrThrottleUnavailable = errors.New("throttle backend unavailable")

// PasswordLimiter counts failed password checks per login name inside a
// rolling window.
type PasswordLimiter struct {
	redis  redis.UniversalClient
	config PasswordConfig
}

// NewPasswordLimiter creates a new password attempt throttle.
func NewPasswordLimiter(redisClient redis.UniversalClient, cfg PasswordConfig) *PasswordLimiter {
	return &PasswordLimiter{redis: redisClient, config: cfg}
}

func (l *PasswordLimiter) key(loginName string) string {
	return "pw:" + strings.ToLower(loginName)
}

// Throttled reports whether the login name has spent its attempt budget.
func (l *PasswordLimiter) Throttled(ctx context.Context, loginName string) (bool, error) {
	if l == nil || !l.config.Enabled || loginName == "" {
		return false, nil
	}

	count, err := l.redis.Get(ctx, l.key(loginName)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}

	return count >= int64(l.config.MaxAttempts), nil
}

// RecordFailure increments the failure counter for a login name.
// Returns true if the attempt budget is now spent.
func (l *PasswordLimiter) RecordFailure(ctx context.Context, loginName string) (bool, error) {
	if l == nil || !l.config.Enabled || loginName == "" {
		return false, nil
	}

	count, err := l.redis.Incr(ctx, l.key(loginName)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}

	if count == 1 && l.config.Window > 0 {
		// TTL on first failure makes the counter a rolling window.
		if err := l.redis.Expire(ctx, l.key(loginName), l.config.Window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
		}
	}

	return count >= int64(l.config.MaxAttempts), nil
}

// Reset clears the failure counter after a successful check.
func (l *PasswordLimiter) Reset(ctx context.Context, loginName string) error {
	if l == nil || !l.config.Enabled || loginName == "" {
		return nil
	}

	if err := l.redis.Del(ctx, l.key(loginName)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	return nil
}
