package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Worker pulls tasks from storage and dispatches them to registered
// handlers on a semaphore-bounded pool, so CPU-heavy work like image
// processing never blocks the request path. Processing failures are logged
// and retried by the storage layer, never surfaced to the enqueuer.
type Worker struct {
	storage  Storage
	handlers map[string]Handler
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pullInterval time.Duration
	taskTimeout  time.Duration
	logger       *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// WorkerOption configures Worker construction.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pullInterval  time.Duration
	taskTimeout   time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// WithPullInterval sets how often the worker polls for pending tasks.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithTaskTimeout bounds a single handler invocation.
func WithTaskTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.taskTimeout = d
		}
	}
}

// WithMaxConcurrentTasks bounds how many handlers run at once.
func WithMaxConcurrentTasks(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithWorkerLogger sets the logger. Defaults to slog.Default().
func WithWorkerLogger(log *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// NewWorker creates a task worker over the given storage.
func NewWorker(storage Storage, opts ...WorkerOption) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	options := &workerOptions{
		pullInterval:  250 * time.Millisecond,
		taskTimeout:   5 * time.Minute,
		maxConcurrent: 4,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		storage:      storage,
		handlers:     make(map[string]Handler),
		sem:          make(chan struct{}, options.maxConcurrent),
		pullInterval: options.pullInterval,
		taskTimeout:  options.taskTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandlers registers handlers by their task names.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start begins pulling and processing tasks in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("task worker started",
		slog.Int("max_concurrent", cap(w.sem)),
		slog.Duration("pull_interval", w.pullInterval))
	return nil
}

// Stop shuts the worker down, draining in-flight tasks.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("task worker stopped")
	return nil
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				// Guard the WaitGroup against racing Stop's Wait.
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()
					w.pullAndProcess()
				}()
			default:
				// All slots busy; next tick retries.
			}
		}
	}
}

func (w *Worker) pullAndProcess() {
	task, err := w.storage.ClaimTask(w.ctx)
	if err != nil {
		if !errors.Is(err, ErrNoTaskToClaim) && !errors.Is(err, context.Canceled) {
			w.logger.Error("failed to claim task", slog.String("error", err.Error()))
		}
		return
	}

	w.processTask(task)
}

func (w *Worker) processTask(task *Task) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked",
				slog.String("task_id", task.ID.String()),
				slog.String("task_name", task.Name),
				slog.Any("panic", r))
			w.recordFailure(task, fmt.Errorf("panic in handler: %v", r))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[task.Name]
	w.mu.RUnlock()

	if !ok {
		w.logger.Error("no handler registered for task",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.Name))
		w.recordFailure(task, ErrHandlerNotFound)
		return
	}

	// Detached from the worker context so graceful shutdown lets in-flight
	// tasks finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.taskTimeout)
	defer cancel()

	if err := handler.Handle(ctx, task.Payload); err != nil {
		w.logger.Error("task failed",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.Name),
			slog.Int("attempt", task.Attempts),
			slog.Int("max_attempts", task.MaxAttempts),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		w.recordFailure(task, err)
		return
	}

	if err := w.storage.CompleteTask(w.ctx, task.ID); err != nil {
		w.logger.Error("failed to mark task completed",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	w.logger.Debug("task completed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.Name),
		slog.Duration("duration", time.Since(start)))
}

func (w *Worker) recordFailure(task *Task, execErr error) {
	if err := w.storage.FailTask(w.ctx, task.ID, execErr.Error()); err != nil {
		w.logger.Error("failed to record task failure",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
	}
}
