// Package cache provides a generic, thread-safe in-memory cache with
// per-entry TTL expiry and LRU eviction.
//
// Entries expire after the configured TTL and are pruned lazily on access;
// when the cache reaches its configured capacity the least recently used
// entry is evicted. The cache is intended for read-mostly metadata that is
// invalidated explicitly on writes, not as a source of truth.
//
// # Usage
//
//	c := cache.New[string, *filemeta.Record](1024, 5*time.Minute)
//
//	c.Set(rec.ID, rec)
//
//	if rec, ok := c.Get(id); ok {
//		// serve cached record
//	}
//
//	// Invalidate after any mutation of the underlying record.
//	c.Delete(id)
//
// All operations are safe for concurrent use and run in O(1).
package cache
