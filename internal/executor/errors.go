package executor

import "errors"

// Common executor errors.
var (
	// ErrInvalidConfig indicates a configuration value outside its allowed range.
	ErrInvalidConfig = errors.New("invalid executor configuration")

	// ErrNoItems indicates an empty input sequence.
	ErrNoItems = errors.New("items slice cannot be empty")

	// ErrNilOperation indicates a nil operation function.
	ErrNilOperation = errors.New("operation cannot be nil")

	// ErrIncompleteRun indicates an internal contract violation: the run was
	// finalized before every item received an outcome. This is a defect in the
	// executor itself, never a consequence of user data.
	ErrIncompleteRun = errors.New("run finalized with missing outcomes")

	// ErrRunCancelled tags outcomes synthesized for items that never reached a
	// terminal result because the run's context was cancelled.
	ErrRunCancelled = errors.New("run cancelled")

	// ErrBatchAborted tags outcomes synthesized for items whose batch was
	// aborted by an infrastructure-level failure escaping the per-item
	// retry boundary.
	ErrBatchAborted = errors.New("batch aborted")
)
