// Package drag tracks the lifecycle of one in-progress move on the board:
// which task is grabbed, which column/slot it currently hovers over, and the
// provisional placement. It never touches task data; committing hands a move
// plan to the mutation coordinator and everything else is ephemeral.
package drag

import (
	"errors"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"
)

var (
	// ErrSessionActive is returned by Begin while another drag is in flight.
	// Only one session may be active at a time per client.
	ErrSessionActive = errors.New("drag session already active")
	// ErrNoSession is returned by UpdateTarget/Commit outside an active drag.
	ErrNoSession = errors.New("no active drag session")
)

type State int

const (
	StateIdle State = iota
	StateActive
)

// Controller is the drag state machine: Idle -> Active -> (commit|cancel) ->
// Idle. It is not safe for concurrent use; the owning event loop drives it.
type Controller struct {
	state State

	taskID       string
	fromStatus   model.Status
	fromPosition int64

	targetStatus model.Status
	targetIndex  int
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) State() State { return c.state }

// TaskID returns the grabbed task's id, or "" when idle.
func (c *Controller) TaskID() string {
	if c.state != StateActive {
		return ""
	}
	return c.taskID
}

// Target returns the current hover target while a drag is active.
func (c *Controller) Target() (model.Status, int, bool) {
	if c.state != StateActive {
		return "", 0, false
	}
	return c.targetStatus, c.targetIndex, true
}

// Begin starts a drag for taskID, capturing its current status and position
// from the snapshot. The initial target is the task's own slot, so an
// immediate Commit is a no-op move.
func (c *Controller) Begin(tasks []model.Task, taskID string) error {
	if c.state == StateActive {
		return ErrSessionActive
	}
	task, ok := board.FindTask(tasks, taskID)
	if !ok {
		// Unknown task: stay Idle, no state change.
		return board.UnknownTaskError{ID: taskID}
	}

	c.state = StateActive
	c.taskID = task.ID
	c.fromStatus = task.Status
	c.fromPosition = task.Position
	c.targetStatus = task.Status
	c.targetIndex = indexWithoutTask(board.Partition(tasks)[task.Status], task.ID)
	return nil
}

// UpdateTarget records the column/slot the drag currently hovers over. It is
// idempotent and has no effect beyond the session's own state. The index is
// clamped to [0, len(column)] where the column excludes the dragged task.
func (c *Controller) UpdateTarget(tasks []model.Task, status model.Status, index int) error {
	if c.state != StateActive {
		return ErrNoSession
	}
	if !status.Valid() {
		return board.ErrInvalidStatus
	}

	col := board.Partition(tasks)[status]
	maxIdx := len(col)
	for _, t := range col {
		if t.ID == c.taskID {
			maxIdx--
			break
		}
	}
	if index < 0 {
		index = 0
	}
	if index > maxIdx {
		index = maxIdx
	}

	c.targetStatus = status
	c.targetIndex = index
	return nil
}

// Commit resolves the session's final target into a move plan and returns to
// Idle. The caller hands the plan to the mutation coordinator; a plan marked
// NoOp should be dropped without issuing any mutation.
func (c *Controller) Commit(tasks []model.Task) (board.MovePlan, error) {
	if c.state != StateActive {
		return board.MovePlan{}, ErrNoSession
	}

	fromStatus, fromPosition := c.fromStatus, c.fromPosition
	plan, err := board.PlanMove(tasks, c.taskID, c.targetStatus, c.targetIndex)
	c.reset()
	if err != nil {
		return board.MovePlan{}, err
	}
	// Rollback must restore the values captured at drag start, not whatever
	// the snapshot holds at drop time.
	plan.FromStatus = fromStatus
	plan.FromPosition = fromPosition
	return plan, nil
}

// Cancel discards the session without producing a mutation.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	*c = Controller{}
}

func indexWithoutTask(col []model.Task, taskID string) int {
	idx := 0
	for _, t := range col {
		if t.ID == taskID {
			return idx
		}
		idx++
	}
	return idx
}
