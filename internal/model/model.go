package model

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Statuses is the board's column set, in display order. The set is closed:
// column definitions are not user-configurable.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusBlocked, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusBlocked:
		return "Blocked"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

type Task struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	// Position orders tasks within their status column (ascending). Values are
	// sparse integers (multiples of 100 when freshly assigned) so a single task
	// can be inserted between neighbors without rewriting the column. Position
	// values carry no meaning across columns.
	Position int64 `json:"position"`

	Title    string   `json:"title"`
	Notes    string   `json:"notes,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
