package blob

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidPath   = errors.New("invalid path") // Prevents path traversal attacks
	ErrNilReader     = errors.New("reader is nil")

	ErrObjectNotFound    = errors.New("object not found")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrIsDirectory       = errors.New("path is a directory")

	ErrFailedToWriteObject     = errors.New("failed to write object")
	ErrFailedToReadObject      = errors.New("failed to read object")
	ErrFailedToDeleteObject    = errors.New("failed to delete object")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToDeleteDirectory = errors.New("failed to delete directory")
	ErrFailedToStatPath        = errors.New("failed to stat path")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
	ErrFailedToLoadConfig      = errors.New("failed to load AWS config")
)
