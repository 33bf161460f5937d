package filemeta

import "errors"

var (
	ErrNotFound            = errors.New("file record not found")
	ErrDuplicateHash       = errors.New("live record with this content hash already exists")
	ErrDuplicateStoredName = errors.New("record with this stored name already exists")
	ErrInvalidRecord       = errors.New("invalid record")
	ErrNotDeleted          = errors.New("record is not deleted")

	ErrFailedToMigrate = errors.New("failed to run migrations")
)
