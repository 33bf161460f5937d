package validate

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")

	// Validation failures, all rejected before any storage write.
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrRateLimited     = errors.New("upload rate limit exceeded")
)
