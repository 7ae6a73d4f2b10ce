package board

import (
	"testing"
	"time"

	"flowboard-cli/internal/model"
)

func mkTask(id string, status model.Status, pos int64, created time.Time) model.Task {
	return model.Task{ID: id, Status: status, Position: pos, Title: id, CreatedAt: created}
}

func TestPartition_SortsByPositionWithinColumn(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		mkTask("b", model.StatusTodo, 300, now),
		mkTask("a", model.StatusTodo, 100, now),
		mkTask("c", model.StatusInProgress, 100, now),
		mkTask("d", model.StatusTodo, 200, now),
	}

	cols := Partition(tasks)

	todo := cols[model.StatusTodo]
	if len(todo) != 3 {
		t.Fatalf("expected 3 todo tasks, got %d", len(todo))
	}
	if got := []string{todo[0].ID, todo[1].ID, todo[2].ID}; got[0] != "a" || got[1] != "d" || got[2] != "b" {
		t.Fatalf("unexpected todo order: %v", got)
	}
	if len(cols[model.StatusInProgress]) != 1 || cols[model.StatusInProgress][0].ID != "c" {
		t.Fatalf("unexpected in_progress column: %+v", cols[model.StatusInProgress])
	}
}

func TestPartition_AllColumnsPresentEvenWhenEmpty(t *testing.T) {
	cols := Partition(nil)
	for _, st := range model.Statuses {
		col, ok := cols[st]
		if !ok {
			t.Fatalf("missing column %q", st)
		}
		if len(col) != 0 {
			t.Fatalf("expected empty column %q, got %d tasks", st, len(col))
		}
	}
}

func TestPartition_DeterministicTieBreak(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	// Same position: older CreatedAt first, then ID.
	tasks := []model.Task{
		mkTask("z", model.StatusTodo, 100, now.Add(time.Second)),
		mkTask("y", model.StatusTodo, 100, now),
		mkTask("x", model.StatusTodo, 100, now.Add(time.Second)),
	}
	cols := Partition(tasks)
	todo := cols[model.StatusTodo]
	if got := []string{todo[0].ID, todo[1].ID, todo[2].ID}; got[0] != "y" || got[1] != "x" || got[2] != "z" {
		t.Fatalf("unexpected tie-break order: %v", got)
	}
}

func TestPartition_DropsUnknownStatus(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cols := Partition([]model.Task{mkTask("a", model.Status("archived"), 100, now)})
	total := 0
	for _, col := range cols {
		total += len(col)
	}
	if total != 0 {
		t.Fatalf("expected unknown-status task to be dropped, got %d tasks placed", total)
	}
}
