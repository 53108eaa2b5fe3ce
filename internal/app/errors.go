package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	// ErrNoSender means a LIVE dispatch had no mail sender to deliver through.
	ErrNoSender = errors.New("no mail sender configured")
	// ErrNoCollector means Run was called without a participant source.
	ErrNoCollector = errors.New("no participant collector configured")
)

// Stage names a step of a run.
type Stage string

// Run stages, in order.
const (
	StageCollect Stage = "collect"
	StageSave    Stage = "save"
	StageLoad    Stage = "load"
	StageAssign  Stage = "assign"
)

// StageError is a fatal run failure tagged with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
