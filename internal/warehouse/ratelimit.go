package warehouse

import (
	"context"
	"sync"
	"time"
)

// Limiter gates outbound vendor calls. Wait blocks until a request may
// proceed or the context is canceled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindowLimiter allows at most maxRequests per rolling window in
// this process. The vendor enforces the same limit server-side; waiting
// client-side avoids burning the quota on rejected calls.
type SlidingWindowLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu    sync.Mutex
	times []time.Time
}

// NewSlidingWindowLimiter builds a limiter for maxRequests per window.
func NewSlidingWindowLimiter(maxRequests int, window time.Duration) *SlidingWindowLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &SlidingWindowLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.times) < l.maxRequests {
			l.times = append(l.times, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window - now.Sub(l.times[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *SlidingWindowLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.times[:0]
	for _, t := range l.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.times = kept
}
