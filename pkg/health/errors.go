package health

import "errors"

var (
	// ErrCheckFailed is returned by Err when one or more checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is joined with a check's error when the run timed out.
	ErrCheckTimeout = errors.New("health: check timeout")
)
