// Package redis manages the Redis connection behind the distributed
// rate-limit store.
//
// Connect retries the initial dial and verifies it with a ping; the
// resulting client feeds ratelimit.NewRedisStore so upload limits are
// shared across instances:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := ratelimit.NewRedisStore(client)
package redis
