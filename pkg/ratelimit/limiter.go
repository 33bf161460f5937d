package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter enforces a sliding-window rate limit: at most Limit events per
// key within any Window-sized interval. Exceeding the limit denies the
// request immediately; nothing is queued or delayed.
type Limiter struct {
	store  Store
	config Config
}

// Config defines the sliding window parameters.
type Config struct {
	Limit  int           `env:"RATE_LIMIT_MAX" envDefault:"10"`     // Maximum events per window
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"` // Sliding window size
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

// New creates a sliding-window limiter backed by the given store.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Limiter{
		store:  store,
		config: config,
	}, nil
}

// Allow records one event for key and reports whether it fits the window.
// The event is counted even when denied, matching the behavior of counting
// rejected attempts against the caller.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	remaining, resetAt, err := l.store.Hit(ctx, key, l.config)
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the recorded events for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
