package files

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/filekit/filekit/pkg/filemeta"
	"github.com/filekit/filekit/pkg/validate"
)

// BatchFailure records one item's failure inside a batch upload.
type BatchFailure struct {
	OriginalName string
	Code         string
	Message      string
}

// BatchResult collects the per-item outcomes of one batch upload.
type BatchResult struct {
	BatchID   string
	Successes []*filemeta.Record
	Failures  []BatchFailure
}

// Failure codes reported in BatchResult.
const (
	CodeInvalidFile     = "invalid_file"
	CodeUnsupportedType = "unsupported_type"
	CodeTooLarge        = "too_large"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal_error"
)

// BatchUpload uploads each item independently: one item's failure is
// recorded with its own code and never aborts or rolls back the others.
func (s *Service) BatchUpload(ctx context.Context, items []UploadInput) *BatchResult {
	result := &BatchResult{BatchID: uuid.NewString()}

	for _, item := range items {
		record, err := s.Upload(ctx, item)
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				OriginalName: item.OriginalName,
				Code:         failureCode(err),
				Message:      err.Error(),
			})
			continue
		}
		result.Successes = append(result.Successes, record)
	}

	s.log.InfoContext(ctx, "batch upload finished",
		"batch_id", result.BatchID,
		"succeeded", len(result.Successes),
		"failed", len(result.Failures))
	return result
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, validate.ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, validate.ErrTooLarge):
		return CodeTooLarge
	case errors.Is(err, validate.ErrUnsupportedType):
		return CodeUnsupportedType
	case errors.Is(err, validate.ErrInvalidFile):
		return CodeInvalidFile
	default:
		return CodeInternal
	}
}
