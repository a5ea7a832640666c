package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic handling while still providing human-readable messages.
var (
	// ErrInvalidFetchTimeout is returned when the per-fetch timeout is not
	// positive. A zero timeout would fail every audit fetch immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRunTimeout is returned when the run timeout is negative.
	// Use zero to disable the pipeline-wide deadline.
	ErrInvalidRunTimeout = errors.New("invalid run timeout: must be non-negative")

	// ErrInvalidConcurrency is returned when the audit concurrency is not
	// positive. Zero concurrency would mean no audits ever run.
	ErrInvalidConcurrency = errors.New("invalid audit concurrency: must be positive")

	// ErrInvalidCandidateCap is returned when the audit candidate cap is
	// not positive.
	ErrInvalidCandidateCap = errors.New("invalid candidate cap: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use zero to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrProfileNotFound is returned when a query names a scoring profile
	// that the profile file does not define.
	ErrProfileNotFound = errors.New("scoring profile not found")
)
