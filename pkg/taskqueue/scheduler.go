package taskqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one periodic job invocation.
type JobFunc func(ctx context.Context) error

// Scheduler runs registered jobs on fixed intervals, outside the request
// path. Job failures are logged and the next tick runs regardless; a
// missed sweep only delays cleanup, never correctness.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*scheduledJob
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type scheduledJob struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// SchedulerOption configures Scheduler construction.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger. Defaults to slog.Default().
func WithSchedulerLogger(log *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		jobs:   make(map[string]*scheduledJob),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a job to run every interval. Must be called before Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, run JobFunc) error {
	if interval <= 0 || run == nil {
		return ErrNoScheduledJobs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return ErrJobAlreadyExists
	}
	s.jobs[name] = &scheduledJob{name: name, interval: interval, run: run}

	s.logger.Info("registered periodic job",
		slog.String("job", name),
		slog.Duration("interval", interval))
	return nil
}

// Start launches one ticker goroutine per job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	if len(s.jobs) == 0 {
		return ErrNoScheduledJobs
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}
	return nil
}

// Stop halts all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	s.wg.Wait()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job *scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.run(ctx); err != nil {
				s.logger.Error("periodic job failed",
					slog.String("job", job.name),
					slog.String("error", err.Error()))
			}
		}
	}
}
