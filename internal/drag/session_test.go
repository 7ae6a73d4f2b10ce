package drag

import (
	"errors"
	"testing"
	"time"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"
)

func boardTasks() []model.Task {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, st model.Status, pos int64, i int) model.Task {
		return model.Task{ID: id, Status: st, Position: pos, Title: id, CreatedAt: now.Add(time.Duration(i) * time.Second)}
	}
	return []model.Task{
		mk("taskA", model.StatusTodo, 100, 0),
		mk("taskB", model.StatusTodo, 200, 1),
		mk("taskC", model.StatusTodo, 300, 2),
		mk("taskD", model.StatusInProgress, 100, 3),
	}
}

func TestBegin_CapturesSource(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskB"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if c.State() != StateActive {
		t.Fatalf("expected Active, got %v", c.State())
	}
	if c.TaskID() != "taskB" {
		t.Fatalf("expected taskB grabbed, got %q", c.TaskID())
	}
	st, idx, ok := c.Target()
	if !ok || st != model.StatusTodo || idx != 1 {
		t.Fatalf("expected initial target todo/1, got %s/%d ok=%v", st, idx, ok)
	}
}

func TestBegin_UnknownTaskStaysIdle(t *testing.T) {
	c := NewController()
	err := c.Begin(boardTasks(), "task-missing")
	if err == nil {
		t.Fatalf("expected error for unknown task")
	}
	if c.State() != StateIdle {
		t.Fatalf("controller must stay Idle after rejected Begin")
	}
}

func TestBegin_WhileActiveRejected(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskA"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.Begin(tasks, "taskB"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if c.TaskID() != "taskA" {
		t.Fatalf("rejected Begin must not change the active session")
	}
}

func TestUpdateTarget_IdempotentAndClamped(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskA"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := c.UpdateTarget(tasks, model.StatusInProgress, 1); err != nil {
			t.Fatalf("UpdateTarget: %v", err)
		}
	}
	st, idx, _ := c.Target()
	if st != model.StatusInProgress || idx != 1 {
		t.Fatalf("expected in_progress/1 after repeated updates, got %s/%d", st, idx)
	}

	// Out-of-range indexes clamp to the column bounds (dragged task excluded:
	// todo has 3 tasks, 2 without taskA).
	if err := c.UpdateTarget(tasks, model.StatusTodo, 99); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}
	if _, idx, _ := c.Target(); idx != 2 {
		t.Fatalf("expected clamp to 2, got %d", idx)
	}
	if err := c.UpdateTarget(tasks, model.StatusTodo, -5); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}
	if _, idx, _ := c.Target(); idx != 0 {
		t.Fatalf("expected clamp to 0, got %d", idx)
	}
}

func TestUpdateTarget_RequiresActiveSession(t *testing.T) {
	c := NewController()
	if err := c.UpdateTarget(boardTasks(), model.StatusTodo, 0); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestCommit_ProducesPlanAndReturnsToIdle(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskC"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.UpdateTarget(tasks, model.StatusTodo, 0); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}

	plan, err := c.Commit(tasks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if plan.TaskID != "taskC" || plan.ToStatus != model.StatusTodo || plan.ToPosition != 0 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.FromStatus != model.StatusTodo || plan.FromPosition != 300 {
		t.Fatalf("plan must carry drag-start snapshot, got %s@%d", plan.FromStatus, plan.FromPosition)
	}
	if c.State() != StateIdle {
		t.Fatalf("controller must return to Idle after Commit")
	}
}

func TestCommit_WithoutMovementIsNoOpPlan(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskB"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	plan, err := c.Commit(tasks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !plan.NoOp {
		t.Fatalf("grab-then-drop in place must plan a no-op, got %+v", plan)
	}
}

func TestCancel_DiscardsSession(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskA"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c.Cancel()
	if c.State() != StateIdle {
		t.Fatalf("expected Idle after Cancel")
	}
	if _, err := c.Commit(tasks); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Commit after Cancel must fail with ErrNoSession, got %v", err)
	}
	// A new drag can start immediately.
	if err := c.Begin(tasks, "taskB"); err != nil {
		t.Fatalf("Begin after Cancel: %v", err)
	}
}

func TestCommit_CrossColumnMove(t *testing.T) {
	tasks := boardTasks()
	c := NewController()
	if err := c.Begin(tasks, "taskA"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.UpdateTarget(tasks, model.StatusBlocked, 0); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}
	plan, err := c.Commit(tasks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if plan.ToStatus != model.StatusBlocked || plan.ToPosition != board.Spacing {
		t.Fatalf("expected blocked@%d, got %s@%d", board.Spacing, plan.ToStatus, plan.ToPosition)
	}
}
