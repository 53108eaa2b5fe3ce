package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	// ErrStopped marks a delivery that was never attempted because the run stopped.
	ErrStopped = errors.New("worker stopped")
)
