package derangement

import "errors"

// Sentinel kinds for assignment errors.
var (
	// ErrInvalidInput means no derangement can exist for the roster:
	// fewer than two participants, a blank name, or a repeated name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAssignment means the retry ceiling was hit before a derangement was found.
	ErrAssignment = errors.New("assignment failed")
)
