// Package ratelimit provides a sliding-window rate limiter with pluggable
// storage backends.
//
// A Limiter enforces "at most N events per key within any window-sized
// interval". Events over the limit are denied immediately — nothing is
// queued or delayed — which makes the limiter suitable for rejecting
// abusive upload bursts at the validation stage.
//
// Two stores are provided: MemoryStore for single-process deployments and
// tests, and RedisStore for sharing one limit across instances.
//
// # Usage
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimit.New(store, ratelimit.Config{
//		Limit:  10,
//		Window: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, userID)
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		return fmt.Errorf("rate limited, retry in %s", res.RetryAfter())
//	}
package ratelimit
