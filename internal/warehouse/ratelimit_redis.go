package warehouse

import (
	"context"
	"errors"
	"time"
)

type fixedWindowAllower interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RedisLimiter shares one fixed-window budget across every process
// talking to the vendor, backed by a redis counter.
type RedisLimiter struct {
	client fixedWindowAllower
	scope  string
	limit  int64
	window time.Duration
}

// NewRedisLimiter builds a cluster-wide limiter on the given scope.
func NewRedisLimiter(client fixedWindowAllower, scope string, limit int64, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if scope == "" {
		return nil, errors.New("rate limit scope required")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("limit and window must be positive")
	}
	return &RedisLimiter{client: client, scope: scope, limit: limit, window: window}, nil
}

func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		allowed, _, err := l.client.FixedWindowAllow(ctx, l.scope, l.limit, l.window)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		// The counter resets when its window key expires; retry then.
		timer := time.NewTimer(l.window)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
