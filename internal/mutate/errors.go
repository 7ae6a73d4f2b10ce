package mutate

import "fmt"

// MutationInFlightError rejects a second commit for a task whose previous
// move has not resolved yet. Rejected locally; no state changes.
type MutationInFlightError struct {
	TaskID string
}

func (e MutationInFlightError) Error() string {
	return fmt.Sprintf("mutation already in flight for %s", e.TaskID)
}

type NotFoundError struct {
	TaskID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// RemoteMoveError wraps a failed remote move; it is recoverable and the
// local state has already been rolled back when it surfaces.
type RemoteMoveError struct {
	TaskID string
	Reason error
}

func (e RemoteMoveError) Error() string {
	return fmt.Sprintf("remote move failed for %s: %v", e.TaskID, e.Reason)
}

func (e RemoteMoveError) Unwrap() error { return e.Reason }

// RenormalizationError wraps a failed column renormalization. The move that
// required it has been rolled back; the column keeps its prior positions.
type RenormalizationError struct {
	Status string
	Reason error
}

func (e RenormalizationError) Error() string {
	return fmt.Sprintf("renormalization failed for column %s: %v", e.Status, e.Reason)
}

func (e RenormalizationError) Unwrap() error { return e.Reason }
