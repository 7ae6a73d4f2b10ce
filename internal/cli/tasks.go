package cli

import (
	"fmt"
	"strings"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"
	"flowboard-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task commands",
	}
	cmd.AddCommand(newTaskAddCmd(app))
	cmd.AddCommand(newTaskListCmd(app))
	cmd.AddCommand(newTaskShowCmd(app))
	cmd.AddCommand(newTaskMoveCmd(app))
	cmd.AddCommand(newTaskDoneCmd(app))
	cmd.AddCommand(newTaskRmCmd(app))
	return cmd
}

func parseStatus(s string) (model.Status, error) {
	st := model.Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (one of: todo, in_progress, blocked, done)", s)
	}
	return st, nil
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, notes, assignee, status string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to the bottom of a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := parseStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.CreateTask(cmd.Context(), strings.TrimSpace(title), notes, assignee, tags, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&notes, "notes", "", "Task notes (markdown)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&status, "status", string(model.StatusTodo), "Column (todo|in_progress|blocked|done)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := s.LoadTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			cols := board.Partition(tasks)

			if status != "" {
				st, err := parseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": cols[st]})
			}

			// Flatten in column order so output order matches the board.
			out := make([]model.Task, 0, len(tasks))
			for _, st := range model.Statuses {
				out = append(out, cols[st]...)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only this column")
	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.GetTask(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

// moveTask plans and commits a move through the same optimistic coordinator
// the TUI uses, resolving synchronously. Scripted moves therefore follow the
// exact commit/rollback protocol of interactive drags.
func moveTask(cmd *cobra.Command, app *App, taskID string, to model.Status, index int) (model.Task, error) {
	s, err := openStore(app)
	if err != nil {
		return model.Task{}, err
	}
	tasks, err := s.LoadTasks(cmd.Context())
	if err != nil {
		return model.Task{}, err
	}

	plan, err := board.PlanMove(tasks, taskID, to, index)
	if err != nil {
		return model.Task{}, err
	}

	coord := mutate.NewCoordinator(s, tasks)
	pending, err := coord.Commit(plan)
	if err != nil {
		return model.Task{}, err
	}
	if pending == nil {
		// No-op move: nothing written.
		t, _ := board.FindTask(tasks, taskID)
		return t, nil
	}
	if ev := pending.Resolve(cmd.Context()); ev.Err != nil {
		return model.Task{}, ev.Err
	}
	t, _ := board.FindTask(coord.Tasks(), taskID)
	return t, nil
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var to string
	var index int

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a column/slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatus(to)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := moveTask(cmd, app, strings.TrimSpace(args[0]), st, index)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target column (todo|in_progress|blocked|done)")
	cmd.Flags().IntVar(&index, "index", 1<<30, "Target slot in the column (default: bottom)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Move a task to the bottom of done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := moveTask(cmd, app, strings.TrimSpace(args[0]), model.StatusDone, 1<<30)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

func newTaskRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := s.DeleteTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": id}})
		},
	}
	return cmd
}
