package ratelimit

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int       // Maximum events per window
	Remaining int       // Allowance left after this event; negative when denied
	ResetAt   time.Time // When the oldest counted event leaves the window
}

// Allowed reports whether the event fit within the window.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next attempt.
// Returns 0 if the event was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}
