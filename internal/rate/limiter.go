// Package rate is a fixed-window limiter for login and public onboarding
// endpoints.
package rate

import (
	"context"
	"fmt"
	"time"
)

// WindowStore counts hits inside a rolling fixed window.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	return &Limiter{store: store, perMinute: perMinute}
}

// Allow records one hit for the key and reports whether it is still under
// the per-minute budget. When blocked it also returns the seconds to wait.
// A zero budget disables limiting.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	if key == "" {
		return false, 0, fmt.Errorf("rate limit key is required")
	}
	if l.perMinute == 0 {
		return true, 0, nil
	}
	if l.store == nil {
		return false, 0, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, "rl:"+key, time.Minute)
	if err != nil {
		return false, 0, err
	}
	if count > int64(l.perMinute) {
		return false, ceilSeconds(ttl), nil
	}
	return true, 0, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
