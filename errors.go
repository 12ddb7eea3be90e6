package reviewvec

import (
	"errors"
	"fmt"
)

// Stage names a step of a run.
type Stage string

const (
	StageLoad     Stage = "load"
	StageSnapshot Stage = "snapshot"
	StageWrite    Stage = "write"
)

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSinkRequired is returned when no sink is provided.
	ErrSinkRequired = errors.New("sink required")

	// ErrInputRequired is returned when a run has no input path.
	ErrInputRequired = errors.New("input path required")

	// ErrSnapshotRequired is returned when a run has no snapshot path.
	ErrSnapshotRequired = errors.New("snapshot path required")
)

// StageError reports which step of a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
