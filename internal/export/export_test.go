package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flowboard-cli/internal/model"
)

func exportTasks() []model.Task {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: "task-a", Status: model.StatusTodo, Position: 200, Title: "Second", CreatedAt: now},
		{ID: "task-b", Status: model.StatusTodo, Position: 100, Title: "First", Assignee: "maria", Tags: []string{"q3"}, CreatedAt: now},
		{ID: "task-c", Status: model.StatusDone, Position: 100, Title: "Shipped", Notes: "See the changelog.", CreatedAt: now, UpdatedAt: now},
	}
}

func TestRenderBoardMarkdown_ColumnsAndOrder(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(exportTasks(), RenderOptions{Title: "Sprint 12"})

	for _, want := range []string{
		"# Sprint 12",
		"## To do (2)",
		"## In progress (0)",
		"_(empty)_",
		"- **First** (task-b) @maria #q3",
		"- **Second** (task-a)",
		"## Done (1)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected output to contain %q\n%s", want, md)
		}
	}

	// Board order within a column: position 100 renders before 200.
	if strings.Index(md, "task-b") > strings.Index(md, "task-a") {
		t.Fatalf("expected task-b before task-a:\n%s", md)
	}
}

func TestRenderBoardMarkdown_IncludeNotes(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(exportTasks(), RenderOptions{IncludeNotes: true})
	if !strings.Contains(md, "  > See the changelog.") {
		t.Fatalf("expected inlined notes:\n%s", md)
	}
}

func TestRenderTaskMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderTaskMarkdown(exportTasks()[2])
	for _, want := range []string{
		"# Shipped",
		"- ID: task-c",
		"- Status: Done",
		"## Notes",
		"See the changelog.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected output to contain %q\n%s", want, md)
		}
	}
}

func TestWriteBoard_WritesPagesAndRespectsOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteBoard(exportTasks(), dir, false, RenderOptions{})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected board.md plus 3 task pages, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "tasks", "task-c.md"))
	if err != nil {
		t.Fatalf("read task page: %v", err)
	}
	if !strings.Contains(string(b), "# Shipped") {
		t.Fatalf("unexpected task page:\n%s", b)
	}

	// Second write without --overwrite fails.
	if _, err := WriteBoard(exportTasks(), dir, false, RenderOptions{}); err == nil {
		t.Fatalf("expected overwrite error")
	}
	// And succeeds with it.
	if _, err := WriteBoard(exportTasks(), dir, true, RenderOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}
