package limiters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestPasswordLimiterDisabled(t *testing.T) {
	l := NewPasswordLimiter(nil, PasswordConfig{Enabled: false})

	throttled, err := l.Throttled(context.Background(), "alice@acme")
	if err != nil || throttled {
		t.Fatalf("disabled limiter must never throttle: throttled=%v err=%v", throttled, err)
	}
	if _, err := l.RecordFailure(context.Background(), "alice@acme"); err != nil {
		t.Fatalf("RecordFailure on disabled limiter failed: %v", err)
	}
}

func TestPasswordLimiterThresholdReached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	l := NewPasswordLimiter(rdb, PasswordConfig{Enabled: true, MaxAttempts: 3, Window: time.Minute})

	for i := 0; i < 2; i++ {
		exceeded, err := l.RecordFailure(ctx, "alice@acme")
		if err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
		if exceeded {
			t.Fatalf("budget must not be spent after %d failures", i+1)
		}
	}

	exceeded, err := l.RecordFailure(ctx, "alice@acme")
	if err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if !exceeded {
		t.Fatal("third failure should spend the budget")
	}

	throttled, err := l.Throttled(ctx, "alice@acme")
	if err != nil {
		t.Fatalf("Throttled failed: %v", err)
	}
	if !throttled {
		t.Fatal("login name should be throttled")
	}
}

func TestPasswordLimiterWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	l := NewPasswordLimiter(rdb, PasswordConfig{Enabled: true, MaxAttempts: 1, Window: time.Minute})

	if _, err := l.RecordFailure(ctx, "alice@acme"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	throttled, err := l.Throttled(ctx, "alice@acme")
	if err != nil {
		t.Fatalf("Throttled failed: %v", err)
	}
	if throttled {
		t.Fatal("counter should have expired with the window")
	}
}

func TestPasswordLimiterReset(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	l := NewPasswordLimiter(rdb, PasswordConfig{Enabled: true, MaxAttempts: 1, Window: time.Minute})

	if _, err := l.RecordFailure(ctx, "alice@acme"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if err := l.Reset(ctx, "alice@acme"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	throttled, err := l.Throttled(ctx, "alice@acme")
	if err != nil {
		t.Fatalf("Throttled failed: %v", err)
	}
	if throttled {
		t.Fatal("reset should clear the throttle")
	}
}

func TestPasswordLimiterBackendDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewPasswordLimiter(rdb, PasswordConfig{Enabled: true, MaxAttempts: 1, Window: time.Minute})
	mr.Close()

	if _, err := l.Throttled(context.Background(), "alice@acme"); !errors.Is(err, ErrThrottleUnavailable) {
		t.Fatalf("expected ErrThrottleUnavailable, got %v", err)
	}
}
