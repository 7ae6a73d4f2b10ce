package board

import (
	"testing"
	"time"

	"flowboard-cli/internal/model"
)

func todoTasks(positions ...int64) []model.Task {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{"taskA", "taskB", "taskC", "taskD", "taskE"}
	out := make([]model.Task, 0, len(positions))
	for i, p := range positions {
		out = append(out, mkTask(ids[i], model.StatusTodo, p, now.Add(time.Duration(i)*time.Second)))
	}
	return out
}

func TestPlanMove_HeadInsertGoesBelowFirst(t *testing.T) {
	// Column todo: [100, 200, 300]; moving the third task to index 0 yields
	// position 0 and order [taskC, taskA, taskB].
	tasks := todoTasks(100, 200, 300)

	plan, err := PlanMove(tasks, "taskC", model.StatusTodo, 0)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.NoOp {
		t.Fatalf("expected a real move, got no-op")
	}
	if plan.ToPosition != 0 {
		t.Fatalf("expected position 0, got %d", plan.ToPosition)
	}
	if plan.Renormalize != nil {
		t.Fatalf("unexpected renormalization")
	}

	tasks[2].Position = plan.ToPosition
	cols := Partition(tasks)
	todo := cols[model.StatusTodo]
	if got := []string{todo[0].ID, todo[1].ID, todo[2].ID}; got[0] != "taskC" || got[1] != "taskA" || got[2] != "taskB" {
		t.Fatalf("unexpected order after move: %v", got)
	}
}

func TestPlanMove_TailInsert(t *testing.T) {
	tasks := todoTasks(100, 200, 300)
	plan, err := PlanMove(tasks, "taskA", model.StatusTodo, 2)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.ToPosition != 400 {
		t.Fatalf("expected position 400, got %d", plan.ToPosition)
	}
}

func TestPlanMove_MidpointInsert(t *testing.T) {
	tasks := todoTasks(100, 200, 300)
	plan, err := PlanMove(tasks, "taskC", model.StatusTodo, 1)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.ToPosition != 150 {
		t.Fatalf("expected midpoint 150, got %d", plan.ToPosition)
	}
}

func TestPlanMove_EmptyColumnYieldsSpacing(t *testing.T) {
	// Moving from todo (position 150) into empty blocked yields position 100
	// and leaves todo's other positions untouched.
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		mkTask("taskA", model.StatusTodo, 150, now),
		mkTask("taskB", model.StatusTodo, 250, now.Add(time.Second)),
	}

	plan, err := PlanMove(tasks, "taskA", model.StatusBlocked, 0)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.ToStatus != model.StatusBlocked || plan.ToPosition != 100 {
		t.Fatalf("expected blocked@100, got %s@%d", plan.ToStatus, plan.ToPosition)
	}
	if plan.FromStatus != model.StatusTodo || plan.FromPosition != 150 {
		t.Fatalf("unexpected from snapshot: %s@%d", plan.FromStatus, plan.FromPosition)
	}
	if tasks[1].Position != 250 {
		t.Fatalf("source column positions must be untouched, got %d", tasks[1].Position)
	}
}

func TestPlanMove_SamePositionIsNoOp(t *testing.T) {
	tasks := todoTasks(100, 200, 300)
	// taskB sits at index 1; re-inserting it at index 1 changes nothing.
	plan, err := PlanMove(tasks, "taskB", model.StatusTodo, 1)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if !plan.NoOp {
		t.Fatalf("expected no-op plan, got %+v", plan)
	}
	if plan.ToPosition != 200 {
		t.Fatalf("no-op plan must keep the current position, got %d", plan.ToPosition)
	}
}

func TestPlanMove_GapExhaustionTriggersRenormalization(t *testing.T) {
	// [100, 101, 102]: no integer strictly between 100 and 101. Inserting
	// there renormalizes the column and retries against the new spacing.
	tasks := todoTasks(100, 101, 102)

	plan, err := PlanMove(tasks, "taskC", model.StatusTodo, 1)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.Renormalize == nil {
		t.Fatalf("expected renormalization plan")
	}
	if got := plan.Renormalize.TaskIDs; len(got) != 2 || got[0] != "taskA" || got[1] != "taskB" {
		t.Fatalf("unexpected renormalize order: %v", got)
	}
	positions := plan.Renormalize.Positions()
	if positions["taskA"] != 0 || positions["taskB"] != 100 {
		t.Fatalf("unexpected renormalized positions: %v", positions)
	}
	// Retried insert must land strictly between the new neighbors 0 and 100.
	if plan.ToPosition <= 0 || plan.ToPosition >= 100 {
		t.Fatalf("retried position %d not strictly between renormalized neighbors", plan.ToPosition)
	}
}

func TestPlanMove_ClampsIndex(t *testing.T) {
	tasks := todoTasks(100, 200)
	plan, err := PlanMove(tasks, "taskA", model.StatusTodo, 99)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if plan.ToPosition != 300 {
		t.Fatalf("expected clamp to tail insert at 300, got %d", plan.ToPosition)
	}
}

func TestPlanMove_UnknownTask(t *testing.T) {
	tasks := todoTasks(100)
	if _, err := PlanMove(tasks, "task-missing", model.StatusTodo, 0); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}

func TestPlanMove_InvalidStatus(t *testing.T) {
	tasks := todoTasks(100)
	if _, err := PlanMove(tasks, "taskA", model.Status("bogus"), 0); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}

func TestPlanMove_DistinctPositionsAfterAnySingleMove(t *testing.T) {
	tasks := todoTasks(100, 200, 300, 400)
	for idx := 0; idx <= 3; idx++ {
		plan, err := PlanMove(tasks, "taskD", model.StatusTodo, idx)
		if err != nil {
			t.Fatalf("PlanMove idx=%d: %v", idx, err)
		}
		if plan.NoOp {
			continue
		}
		seen := map[int64]string{plan.ToPosition: "taskD"}
		for _, task := range tasks {
			if task.ID == "taskD" {
				continue
			}
			if prev, dup := seen[task.Position]; dup {
				t.Fatalf("idx=%d: position %d shared by %s and %s", idx, task.Position, prev, task.ID)
			}
			seen[task.Position] = task.ID
		}
	}
}
