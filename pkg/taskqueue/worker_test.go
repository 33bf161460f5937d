package taskqueue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/taskqueue"
)

type testTask struct {
	Value string `json:"value"`
}

type failingTask struct {
	Reason string `json:"reason"`
}

func startWorker(t *testing.T, storage taskqueue.Storage, handlers ...taskqueue.Handler) *taskqueue.Worker {
	t.Helper()

	worker, err := taskqueue.NewWorker(storage,
		taskqueue.WithPullInterval(10*time.Millisecond),
		taskqueue.WithMaxConcurrentTasks(2),
	)
	require.NoError(t, err)
	worker.RegisterHandlers(handlers...)

	require.NoError(t, worker.Start(context.Background()))
	t.Cleanup(func() { _ = worker.Stop() })
	return worker
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorker_ProcessesEnqueuedTask(t *testing.T) {
	t.Parallel()

	storage := taskqueue.NewMemoryStorage()
	enqueuer, err := taskqueue.NewEnqueuer(storage)
	require.NoError(t, err)

	var got atomic.Value
	handler := taskqueue.NewTaskHandler(func(_ context.Context, task testTask) error {
		got.Store(task.Value)
		return nil
	})
	startWorker(t, storage, handler)

	require.NoError(t, enqueuer.Enqueue(context.Background(), testTask{Value: "hello"}))

	waitFor(t, func() bool { return got.Load() != nil })
	assert.Equal(t, "hello", got.Load())
}

func TestWorker_RetriesThenFails(t *testing.T) {
	t.Parallel()

	storage := taskqueue.NewMemoryStorage()
	enqueuer, err := taskqueue.NewEnqueuer(storage, taskqueue.WithDefaultMaxAttempts(2))
	require.NoError(t, err)

	var attempts atomic.Int32
	handler := taskqueue.NewTaskHandler(func(_ context.Context, task failingTask) error {
		attempts.Add(1)
		return errors.New(task.Reason)
	})
	startWorker(t, storage, handler)

	require.NoError(t, enqueuer.Enqueue(context.Background(), failingTask{Reason: "boom"}))

	waitFor(t, func() bool { return attempts.Load() >= 2 })

	// The attempt budget is respected: no third attempt appears.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	storage := taskqueue.NewMemoryStorage()
	enqueuer, err := taskqueue.NewEnqueuer(storage, taskqueue.WithDefaultMaxAttempts(1))
	require.NoError(t, err)

	var panicked atomic.Bool
	var completed atomic.Bool
	panicHandler := taskqueue.NewTaskHandler(func(_ context.Context, _ failingTask) error {
		panicked.Store(true)
		panic("handler exploded")
	})
	okHandler := taskqueue.NewTaskHandler(func(_ context.Context, _ testTask) error {
		completed.Store(true)
		return nil
	})
	startWorker(t, storage, panicHandler, okHandler)

	ctx := context.Background()
	require.NoError(t, enqueuer.Enqueue(ctx, failingTask{Reason: "panic"}))
	require.NoError(t, enqueuer.Enqueue(ctx, testTask{Value: "still works"}))

	// The panic is contained; the worker keeps processing other tasks.
	waitFor(t, func() bool { return panicked.Load() && completed.Load() })
}

func TestWorker_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	storage := taskqueue.NewMemoryStorage()
	enqueuer, err := taskqueue.NewEnqueuer(storage)
	require.NoError(t, err)

	var mu sync.Mutex
	current, peak := 0, 0
	handler := taskqueue.NewTaskHandler(func(_ context.Context, _ testTask) error {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return nil
	})
	startWorker(t, storage, handler)

	ctx := context.Background()
	for range 6 {
		require.NoError(t, enqueuer.Enqueue(ctx, testTask{Value: "x"}))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return peak > 0 && current == 0
	})

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2, "concurrency must respect the semaphore bound")
}

func TestWorker_StartValidation(t *testing.T) {
	t.Parallel()

	worker, err := taskqueue.NewWorker(taskqueue.NewMemoryStorage())
	require.NoError(t, err)

	assert.ErrorIs(t, worker.Start(context.Background()), taskqueue.ErrNoHandlers)

	_, err = taskqueue.NewWorker(nil)
	assert.ErrorIs(t, err, taskqueue.ErrStorageNil)
}

func TestScheduler_RunsJobsOnInterval(t *testing.T) {
	t.Parallel()

	scheduler := taskqueue.NewScheduler()

	var runs atomic.Int32
	require.NoError(t, scheduler.AddJob("sweep", 20*time.Millisecond, func(_ context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, scheduler.Start(context.Background()))
	t.Cleanup(func() { _ = scheduler.Stop() })

	waitFor(t, func() bool { return runs.Load() >= 2 })
}

func TestScheduler_DuplicateJobRejected(t *testing.T) {
	t.Parallel()

	scheduler := taskqueue.NewScheduler()
	noop := func(_ context.Context) error { return nil }

	require.NoError(t, scheduler.AddJob("sweep", time.Minute, noop))
	assert.ErrorIs(t, scheduler.AddJob("sweep", time.Minute, noop), taskqueue.ErrJobAlreadyExists)
}
