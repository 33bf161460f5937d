// Package taskqueue provides the bounded asynchronous execution layer
// behind the upload pipeline: a typed task queue with a semaphore-bounded
// worker pool, and a fixed-interval scheduler for maintenance jobs.
//
// Enqueue a payload and its type routes it to the handler registered for
// that type:
//
//	type CompressTask struct{ FileID string }
//
//	worker.RegisterHandlers(taskqueue.NewTaskHandler(
//		func(ctx context.Context, t CompressTask) error { ... },
//	))
//	_ = enqueuer.Enqueue(ctx, CompressTask{FileID: id})
//
// Enqueue returns as soon as the task is stored; processing failures are
// logged and retried up to the attempt limit, never propagated back to the
// enqueuer. The Scheduler covers the timer-driven sweeps (grant expiry,
// deleted-file reaping) that run outside the request path.
package taskqueue
