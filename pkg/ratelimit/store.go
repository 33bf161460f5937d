package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// Hit records one event for key and returns the remaining allowance
	// within the current window. A negative remaining means the event
	// exceeded the limit and the request should be denied.
	// resetAt is when the oldest counted event leaves the window.
	Hit(ctx context.Context, key string, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the recorded events for the given key.
	Reset(ctx context.Context, key string) error
}
