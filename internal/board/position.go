package board

import (
	"errors"
	"fmt"

	"flowboard-cli/internal/model"
)

// Spacing is the gap between freshly assigned positions. Inserting between
// neighbors uses the midpoint, so each insertion at the same spot halves the
// available gap; when the midpoint collides with a neighbor the column is
// renormalized back to Spacing-sized gaps.
const Spacing = 100

type UnknownTaskError struct {
	ID string
}

func (e UnknownTaskError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

var ErrInvalidStatus = errors.New("invalid status")

// RenormalizePlan lists a column's surviving tasks in display order; applying
// it assigns index*Spacing to each. Relative order is unchanged, so applying
// a renormalization is invisible in the UI.
type RenormalizePlan struct {
	Status  model.Status
	TaskIDs []string
}

// Positions returns the position each task in the plan receives.
func (p RenormalizePlan) Positions() map[string]int64 {
	out := make(map[string]int64, len(p.TaskIDs))
	for i, id := range p.TaskIDs {
		out[id] = int64(i) * Spacing
	}
	return out
}

// MovePlan is the outcome of planning one move: where the task goes, what it
// must be restored to on failure, and whether the target column has to be
// renormalized first. NoOp means the move lands exactly where the task
// already is and no write should be issued.
type MovePlan struct {
	TaskID string

	FromStatus   model.Status
	FromPosition int64

	ToStatus   model.Status
	ToPosition int64

	// Renormalize, when non-nil, rewrites the target column (excluding the
	// moved task) to Spacing-sized gaps. It must be committed atomically
	// before the move itself; ToPosition is computed against the
	// renormalized neighbors.
	Renormalize *RenormalizePlan

	NoOp bool
}

// PlanMove computes the position for inserting task movedID at insertAt in
// the toStatus column, given the current flat task list.
//
// insertAt is an index into the target column's display order with the moved
// task removed (for a cross-column move nothing is removed; for a same-column
// move the task's own slot does not count). Out-of-range indexes are clamped.
//
// The same-column and cross-column cases share one code path: the move is
// always "insert into the target ordering", and the source column needs no
// updates because removal just excludes the task from its partition.
func PlanMove(tasks []model.Task, movedID string, toStatus model.Status, insertAt int) (MovePlan, error) {
	if !toStatus.Valid() {
		return MovePlan{}, ErrInvalidStatus
	}
	moved, ok := FindTask(tasks, movedID)
	if !ok {
		return MovePlan{}, UnknownTaskError{ID: movedID}
	}

	cols := Partition(tasks)
	col := cols[toStatus]

	// Target sequence without the moved task, and the slot it currently
	// occupies in that coordinate system (for same-column no-op detection).
	rest := make([]model.Task, 0, len(col))
	curAt := -1
	for _, t := range col {
		if t.ID == movedID {
			curAt = len(rest)
			continue
		}
		rest = append(rest, t)
	}

	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(rest) {
		insertAt = len(rest)
	}

	plan := MovePlan{
		TaskID:       movedID,
		FromStatus:   moved.Status,
		FromPosition: moved.Position,
		ToStatus:     toStatus,
	}

	if moved.Status == toStatus && insertAt == curAt {
		plan.ToPosition = moved.Position
		plan.NoOp = true
		return plan, nil
	}

	pos, exhausted := positionAt(rest, insertAt)
	if !exhausted {
		plan.ToPosition = pos
		return plan, nil
	}

	// Gap exhausted between the insertion neighbors: renormalize the target
	// column, then retry the same insertion against the new spacing.
	ids := make([]string, len(rest))
	for i, t := range rest {
		ids[i] = t.ID
	}
	plan.Renormalize = &RenormalizePlan{Status: toStatus, TaskIDs: ids}
	// After renormalization the neighbors sit at (insertAt-1)*Spacing and
	// insertAt*Spacing, so the midpoint always exists.
	plan.ToPosition = int64(insertAt)*Spacing - Spacing/2
	return plan, nil
}

// positionAt computes the position for inserting at index i into col (sorted,
// moved task excluded). exhausted reports that the midpoint collides with a
// neighbor, i.e. there is no representable integer strictly between them.
func positionAt(col []model.Task, i int) (pos int64, exhausted bool) {
	n := len(col)
	switch {
	case n == 0:
		return Spacing, false
	case i <= 0:
		// Head insert. Negative positions are fine; there is no lower bound.
		return col[0].Position - Spacing, false
	case i >= n:
		return col[n-1].Position + Spacing, false
	}
	lo := col[i-1].Position
	hi := col[i].Position
	mid := lo + (hi-lo)/2
	if mid == lo || mid == hi {
		return 0, true
	}
	return mid, false
}
