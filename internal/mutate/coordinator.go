// Package mutate owns every write to the board's task list. Moves are
// applied optimistically: the local list changes first, the remote write
// follows, and a failed write rolls the task back to exactly where it was.
package mutate

import (
	"context"
	"sync"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"
)

// Remote is the persistence collaborator. Both operations are last-write-wins
// on the remote side; RenormalizeColumn must be all-or-nothing.
type Remote interface {
	MoveTask(ctx context.Context, taskID string, status model.Status, position int64) error
	RenormalizeColumn(ctx context.Context, status model.Status, orderedTaskIDs []string) error
}

type EventKind string

const (
	EventMoveSucceeded         EventKind = "move_succeeded"
	EventMoveFailed            EventKind = "move_failed"
	EventRenormalizationFailed EventKind = "renormalization_failed"
)

// Event is one entry of the coordinator's outcome stream, consumed by the
// presentation layer for toasts/logging.
type Event struct {
	Kind   EventKind
	TaskID string
	Status model.Status
	Err    error
}

type priorPlacement struct {
	status   model.Status
	position int64
}

// Coordinator is the sole writer of task status/position. Presenters read
// snapshots via Tasks and render board.Partition over them; no other code
// path may write those fields.
//
// Commit applies locally and records the pending mutation synchronously; the
// remote call happens in Pending.Resolve, which the caller runs from
// whatever goroutine suits it (a tea.Cmd in the TUI, inline in the CLI).
type Coordinator struct {
	mu       sync.Mutex
	remote   Remote
	tasks    []model.Task
	pending  map[string]*Pending
	detached bool
	events   chan Event
}

func NewCoordinator(remote Remote, tasks []model.Task) *Coordinator {
	c := &Coordinator{
		remote:  remote,
		pending: map[string]*Pending{},
		events:  make(chan Event, 64),
	}
	c.tasks = append(c.tasks, tasks...)
	return c
}

// Events streams move outcomes. Resolve also returns its event directly, so
// the stream is a fan-out for consumers outside the resolving call path; if
// nobody drains it and the buffer fills, further events are dropped rather
// than blocking resolution.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Tasks returns a snapshot copy of the current local task list.
func (c *Coordinator) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// SetTasks replaces the local list, e.g. after a background re-fetch.
// Pending bookkeeping is kept: in-flight tasks stay non-draggable.
func (c *Coordinator) SetTasks(tasks []model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = make([]model.Task, len(tasks))
	copy(c.tasks, tasks)
}

// InFlight reports whether taskID has an unresolved pending mutation. The
// UI treats such tasks as temporarily non-draggable.
func (c *Coordinator) InFlight(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[taskID]
	return ok
}

// Detach marks the owning view as torn down. Outstanding resolutions still
// run to completion and clear their bookkeeping, but stop touching the local
// task list.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// Pending is one outstanding optimistic move. It is created by Commit and
// consumed exactly once by Resolve.
type Pending struct {
	c    *Coordinator
	plan board.MovePlan
	// prior holds pre-apply placements for every task Commit touched (the
	// moved task, plus the renormalized column members when applicable), so
	// rollback restores them bit-for-bit.
	prior map[string]priorPlacement

	resolved bool
}

// TaskID returns the moved task's id.
func (p *Pending) TaskID() string { return p.plan.TaskID }

// Commit applies a planned move to local state and registers the pending
// mutation. A NoOp plan returns (nil, nil): nothing applied, nothing to
// resolve. A plan for a task that is already in flight is rejected with
// MutationInFlightError and changes nothing.
func (c *Coordinator) Commit(plan board.MovePlan) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if plan.NoOp {
		return nil, nil
	}
	if _, busy := c.pending[plan.TaskID]; busy {
		return nil, MutationInFlightError{TaskID: plan.TaskID}
	}
	idx := c.indexOfLocked(plan.TaskID)
	if idx < 0 && !c.detached {
		return nil, NotFoundError{TaskID: plan.TaskID}
	}

	p := &Pending{c: c, plan: plan, prior: map[string]priorPlacement{}}

	// Renormalized positions are applied optimistically together with the
	// move: the retried destination position is only correct against the
	// renormalized spacing. Relative order is unchanged either way.
	if plan.Renormalize != nil {
		for id, pos := range plan.Renormalize.Positions() {
			i := c.indexOfLocked(id)
			if i < 0 {
				continue
			}
			p.prior[id] = priorPlacement{status: c.tasks[i].Status, position: c.tasks[i].Position}
			c.tasks[i].Position = pos
		}
	}
	if idx >= 0 {
		p.prior[plan.TaskID] = priorPlacement{status: c.tasks[idx].Status, position: c.tasks[idx].Position}
		c.tasks[idx].Status = plan.ToStatus
		c.tasks[idx].Position = plan.ToPosition
	} else {
		p.prior[plan.TaskID] = priorPlacement{status: plan.FromStatus, position: plan.FromPosition}
	}

	c.pending[plan.TaskID] = p
	return p, nil
}

// BatchResult reports the per-task outcome of CommitBatch's apply phase.
type BatchResult struct {
	TaskID  string
	Pending *Pending
	Err     error
}

// CommitBatch applies an ordered list of independent moves. Each entry
// follows the normal commit protocol on its own: no-ops are skipped,
// in-flight tasks are rejected individually, and partial failure during
// resolution is reported per task, never rolled back as a group.
func (c *Coordinator) CommitBatch(plans []board.MovePlan) []BatchResult {
	out := make([]BatchResult, 0, len(plans))
	for _, plan := range plans {
		p, err := c.Commit(plan)
		out = append(out, BatchResult{TaskID: plan.TaskID, Pending: p, Err: err})
	}
	return out
}

// Resolve performs the remote write(s) for this pending move and reconciles
// local state. It blocks on the network, returns the outcome event exactly
// once, and also publishes it to the coordinator's event stream. Calling
// Resolve again returns a zero Event and does nothing.
//
// When the plan requires renormalization, that batch write must land first
// as its own atomic unit; if it fails, the whole move is rolled back and the
// column keeps its prior positions.
func (p *Pending) Resolve(ctx context.Context) Event {
	c := p.c

	c.mu.Lock()
	if p.resolved {
		c.mu.Unlock()
		return Event{}
	}
	p.resolved = true
	c.mu.Unlock()

	if p.plan.Renormalize != nil {
		if err := c.remote.RenormalizeColumn(ctx, p.plan.Renormalize.Status, p.plan.Renormalize.TaskIDs); err != nil {
			p.finish(true)
			return c.emit(Event{
				Kind:   EventRenormalizationFailed,
				TaskID: p.plan.TaskID,
				Status: p.plan.Renormalize.Status,
				Err:    RenormalizationError{Status: string(p.plan.Renormalize.Status), Reason: err},
			})
		}
	}

	if err := c.remote.MoveTask(ctx, p.plan.TaskID, p.plan.ToStatus, p.plan.ToPosition); err != nil {
		// The renormalization (if any) already committed remotely and is
		// order-preserving, so only the moved task is rolled back.
		p.rollbackTask(p.plan.TaskID)
		p.finish(false)
		return c.emit(Event{
			Kind:   EventMoveFailed,
			TaskID: p.plan.TaskID,
			Status: p.plan.ToStatus,
			Err:    RemoteMoveError{TaskID: p.plan.TaskID, Reason: err},
		})
	}

	p.finish(false)
	return c.emit(Event{Kind: EventMoveSucceeded, TaskID: p.plan.TaskID, Status: p.plan.ToStatus})
}

func (c *Coordinator) emit(ev Event) Event {
	select {
	case c.events <- ev:
	default:
	}
	return ev
}

// rollbackTask restores one touched task to its pre-commit placement.
func (p *Pending) rollbackTask(taskID string) {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	prior, ok := p.prior[taskID]
	if !ok {
		return
	}
	if i := c.indexOfLocked(taskID); i >= 0 {
		c.tasks[i].Status = prior.status
		c.tasks[i].Position = prior.position
	}
}

// finish clears the pending entry; rollbackAll additionally restores every
// task the commit touched (the full pre-move column state).
func (p *Pending) finish(rollbackAll bool) {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if rollbackAll && !c.detached {
		for id, prior := range p.prior {
			if i := c.indexOfLocked(id); i >= 0 {
				c.tasks[i].Status = prior.status
				c.tasks[i].Position = prior.position
			}
		}
	}
	delete(c.pending, p.plan.TaskID)
}

func (c *Coordinator) indexOfLocked(taskID string) int {
	for i := range c.tasks {
		if c.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}
