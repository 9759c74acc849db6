package types

import "errors"

// Error taxonomy. Callers wrap these with fmt.Errorf("...: %w") and test
// with errors.Is.
var (
	// ErrIO reports a failure reading a file's content or metadata.
	ErrIO = errors.New("i/o error")

	// ErrNotADirectory reports a walk root or base path that is missing or
	// not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrUniqueness reports an insert whose content hash is already indexed.
	ErrUniqueness = errors.New("content hash already indexed")

	// ErrDestinationExists reports a category destination that already exists.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrConfig reports a malformed skip list or category map.
	ErrConfig = errors.New("invalid configuration")
)
