package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enqueuer submits tasks for background processing. Enqueue returns as soon
// as the task is stored; the caller never waits for processing.
type Enqueuer struct {
	storage            Storage
	defaultMaxAttempts int
}

// EnqueuerOption configures Enqueuer construction.
type EnqueuerOption func(*Enqueuer)

// WithDefaultMaxAttempts sets how many times tasks are attempted before
// being marked failed. Defaults to 3.
func WithDefaultMaxAttempts(n int) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 {
			e.defaultMaxAttempts = n
		}
	}
}

// NewEnqueuer creates an enqueuer over the given storage.
func NewEnqueuer(storage Storage, opts ...EnqueuerOption) (*Enqueuer, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	e := &Enqueuer{
		storage:            storage,
		defaultMaxAttempts: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enqueue stores a task carrying the JSON-encoded payload. The task routes
// to the handler registered for the payload's type.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	task := &Task{
		ID:          uuid.New(),
		Name:        qualifiedStructName(payload),
		Payload:     data,
		Status:      TaskStatusPending,
		MaxAttempts: e.defaultMaxAttempts,
		CreatedAt:   time.Now(),
	}

	if err := e.storage.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task %q: %w", task.Name, err)
	}
	return nil
}
