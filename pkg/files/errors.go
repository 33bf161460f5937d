package files

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrDependencyNil = errors.New("required dependency is nil")

	// ErrNotFound covers both a missing id and a soft-deleted record: a
	// deleted file is indistinguishable from an absent one to callers.
	ErrNotFound = errors.New("file not found")
	// ErrAccessDenied means the file exists but the requester lacks the
	// capability. Kept distinct from ErrNotFound on every path.
	ErrAccessDenied = errors.New("access denied")
	// ErrMissingBytes tags a data-integrity event: the record exists but
	// its stored bytes are gone. Always wrapped together with ErrNotFound.
	ErrMissingBytes = errors.New("stored bytes missing")

	ErrNotDeleted = errors.New("file is not deleted")
)
