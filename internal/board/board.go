package board

import (
	"sort"

	"flowboard-cli/internal/model"
)

// Partition splits tasks into status columns, each sorted in display order.
// Every column in model.Statuses is present in the result, even when empty.
// Tasks with an unknown status are dropped (they cannot be rendered into a
// column and must not silently join another one).
func Partition(tasks []model.Task) map[model.Status][]model.Task {
	cols := make(map[model.Status][]model.Task, len(model.Statuses))
	for _, st := range model.Statuses {
		cols[st] = []model.Task{}
	}
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		cols[t.Status] = append(cols[t.Status], t)
	}
	for st := range cols {
		SortColumn(cols[st])
	}
	return cols
}

// SortColumn sorts tasks in place into display order: position ascending,
// ties broken by CreatedAt then ID so the order is deterministic.
func SortColumn(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return compareTasks(tasks[i], tasks[j]) < 0
	})
}

func compareTasks(a, b model.Task) int {
	if a.Position != b.Position {
		if a.Position < b.Position {
			return -1
		}
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// FindTask returns the task with the given id from a flat task list.
func FindTask(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
