// Package export renders board snapshots as markdown, for sharing a
// board outside flowboard (wikis, PRs, status updates).
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"
)

type RenderOptions struct {
	// IncludeNotes inlines each task's notes under its entry.
	IncludeNotes bool
	// Title overrides the top-level heading. Empty means "Board".
	Title string
}

// RenderBoardMarkdown renders the whole board, one section per column in
// display order, tasks in board order.
func RenderBoardMarkdown(tasks []model.Task, opt RenderOptions) string {
	byStatus := board.Partition(tasks)

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Board"
	}
	writeLn("# " + title)

	for _, st := range model.Statuses {
		col := byStatus[st]
		board.SortColumn(col)

		writeLn("")
		writeLn(fmt.Sprintf("## %s (%d)", st.Label(), len(col)))
		writeLn("")
		if len(col) == 0 {
			writeLn("_(empty)_")
			continue
		}
		for _, t := range col {
			writeLn(taskLine(t))
			if opt.IncludeNotes && strings.TrimSpace(t.Notes) != "" {
				for _, line := range strings.Split(strings.TrimSpace(t.Notes), "\n") {
					writeLn("  > " + line)
				}
			}
		}
	}

	return buf.String()
}

// RenderTaskMarkdown renders a single task as a standalone page.
func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("- ID: " + t.ID)
	writeLn("- Status: " + t.Status.Label())
	if strings.TrimSpace(t.Assignee) != "" {
		writeLn("- Assignee: " + strings.TrimSpace(t.Assignee))
	}
	if len(t.Tags) > 0 {
		writeLn("- Tags: " + strings.Join(t.Tags, ", "))
	}
	if !t.CreatedAt.IsZero() {
		writeLn("- Created: " + t.CreatedAt.UTC().Format(time.RFC3339))
	}
	if !t.UpdatedAt.IsZero() {
		writeLn("- Updated: " + t.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		writeLn("")
		writeLn("## Notes")
		writeLn("")
		writeLn(notes)
	}

	return buf.String()
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes board.md plus a tasks/<id>.md page per task under toDir.
func WriteBoard(tasks []model.Task, toDir string, overwrite bool, opt RenderOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	tasksDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	boardPath := filepath.Join(toDir, "board.md")
	if err := writeFile(boardPath, []byte(RenderBoardMarkdown(tasks, opt)), overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{boardPath}
	for _, t := range tasks {
		p := filepath.Join(tasksDir, t.ID+".md")
		if err := writeFile(p, []byte(RenderTaskMarkdown(t)), overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}

	return WriteResult{Written: written}, nil
}

func taskLine(t model.Task) string {
	parts := []string{fmt.Sprintf("- **%s** (%s)", strings.TrimSpace(t.Title), t.ID)}
	if strings.TrimSpace(t.Assignee) != "" {
		parts = append(parts, "@"+strings.TrimSpace(t.Assignee))
	}
	for _, tag := range t.Tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
