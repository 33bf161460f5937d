package taskqueue

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists tasks and hands them to workers.
type Storage interface {
	// CreateTask stores a new pending task.
	CreateTask(ctx context.Context, task *Task) error
	// ClaimTask atomically takes the oldest pending task and marks it
	// processing. Returns ErrNoTaskToClaim when the queue is empty.
	ClaimTask(ctx context.Context) (*Task, error)
	// CompleteTask marks a task completed.
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
	// FailTask records the error and either requeues the task (attempts
	// remaining) or marks it failed.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
}
