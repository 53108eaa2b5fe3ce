package sorter

import "errors"

// Sentinel kinds for sorter errors.
var (
	ErrBaseDir      = errors.New("base directory not readable")
	ErrNoFiles      = errors.New("no files found")
	ErrTargetExists = errors.New("target already exists")
)
