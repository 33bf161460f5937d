package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process Storage. Tasks live only as long as the
// process; suitable for the fire-and-forget image pipeline where a lost
// task just means a record without derived artifacts.
type MemoryStorage struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*Task
	pending []uuid.UUID // FIFO claim order
}

// NewMemoryStorage creates an empty in-memory task storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
	}
}

func (s *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *task
	s.tasks[task.ID] = &cp
	s.pending = append(s.pending, task.ID)
	return nil
}

func (s *MemoryStorage) ClaimTask(_ context.Context) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.pending) > 0 {
		id := s.pending[0]
		s.pending = s.pending[1:]

		task, ok := s.tasks[id]
		if !ok || task.Status != TaskStatusPending {
			continue
		}

		task.Status = TaskStatusProcessing
		task.Attempts++
		cp := *task
		return &cp, nil
	}
	return nil, ErrNoTaskToClaim
}

func (s *MemoryStorage) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	return nil
}

func (s *MemoryStorage) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	task.Error = &errorMsg
	if task.Attempts < task.MaxAttempts {
		task.Status = TaskStatusPending
		s.pending = append(s.pending, taskID)
		return nil
	}

	now := time.Now()
	task.Status = TaskStatusFailed
	task.ProcessedAt = &now
	return nil
}

// GetTask returns a copy of the task, mainly for tests and inspection.
func (s *MemoryStorage) GetTask(taskID uuid.UUID) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	cp := *task
	return &cp, true
}
