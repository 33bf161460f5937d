package taskqueue

import "errors"

var (
	ErrStorageNil       = errors.New("storage is nil")
	ErrPayloadNil       = errors.New("payload is nil")
	ErrNoTaskToClaim    = errors.New("no task to claim")
	ErrTaskNotFound     = errors.New("task not found")
	ErrHandlerNotFound  = errors.New("no handler registered for task")
	ErrNoHandlers       = errors.New("no handlers registered")
	ErrAlreadyStarted   = errors.New("already started")
	ErrNotStarted       = errors.New("not started")
	ErrNoScheduledJobs  = errors.New("no scheduled jobs registered")
	ErrJobAlreadyExists = errors.New("job already registered")
)
