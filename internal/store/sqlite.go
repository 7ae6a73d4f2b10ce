package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when CLI and TUI run side by side.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			notes TEXT NOT NULL,
			assignee TEXT NOT NULL,
			tags_json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status, position);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const taskColumns = "id, status, position, title, notes, assignee, tags_json, created_at_unixms, updated_at_unixms"

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var tagsJSON string
	var createdMS, updatedMS int64
	if err := row.Scan(&t.ID, &t.Status, &t.Position, &t.Title, &t.Notes, &t.Assignee, &tagsJSON, &createdMS, &updatedMS); err != nil {
		return model.Task{}, err
	}
	if tagsJSON != "" && tagsJSON != "null" {
		if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
			return model.Task{}, fmt.Errorf("decode tags for %s: %w", t.ID, err)
		}
	}
	t.CreatedAt = time.UnixMilli(createdMS).UTC()
	t.UpdatedAt = time.UnixMilli(updatedMS).UTC()
	return t, nil
}

// LoadTasks returns all tasks. Ordering is applied by the caller via
// board.Partition; the query order is just a stable convenience.
func (s Store) LoadTasks(ctx context.Context) ([]model.Task, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY status, position, created_at_unixms, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Task{}, err
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, fmt.Errorf("task not found: %s", id)
	}
	return t, err
}

// CreateTask inserts a new task at the bottom of its status column.
func (s Store) CreateTask(ctx context.Context, title, notes, assignee string, tags []string, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return model.Task{}, board.ErrInvalidStatus
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Task{}, err
	}
	defer db.Close()

	id, err := newRandomID("task")
	if err != nil {
		return model.Task{}, err
	}

	// Bottom of the column: last position + spacing, or spacing for an
	// empty column.
	var position int64 = board.Spacing
	var last sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(position) FROM tasks WHERE status = ?", status).Scan(&last); err != nil {
		return model.Task{}, err
	}
	if last.Valid {
		position = last.Int64 + board.Spacing
	}

	now := time.Now().UTC()
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return model.Task{}, err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, status, position, title, notes, assignee, string(tagsJSON), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		ID: id, Status: status, Position: position,
		Title: title, Notes: notes, Assignee: assignee, Tags: tags,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

func (s Store) DeleteTask(ctx context.Context, id string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

func (s Store) UpdateTask(ctx context.Context, t model.Task) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, notes = ?, assignee = ?, tags_json = ?, updated_at_unixms = ? WHERE id = ?",
		t.Title, t.Notes, t.Assignee, string(tagsJSON), time.Now().UTC().UnixMilli(), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	return nil
}

// MoveTask updates a single task's status and position (last write wins).
// Implements the coordinator's Remote interface.
func (s Store) MoveTask(ctx context.Context, taskID string, status model.Status, position int64) error {
	if !status.Valid() {
		return board.ErrInvalidStatus
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, position = ?, updated_at_unixms = ? WHERE id = ?",
		status, position, time.Now().UTC().UnixMilli(), taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}
	return nil
}

// RenormalizeColumn rewrites positions for every listed task to
// index*Spacing inside one transaction, so the column is updated
// all-or-nothing. Implements the coordinator's Remote interface.
func (s Store) RenormalizeColumn(ctx context.Context, status model.Status, orderedTaskIDs []string) error {
	if !status.Valid() {
		return board.ErrInvalidStatus
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixMilli()
	for i, id := range orderedTaskIDs {
		res, err := tx.ExecContext(ctx,
			"UPDATE tasks SET position = ?, updated_at_unixms = ? WHERE id = ? AND status = ?",
			int64(i)*board.Spacing, now, id, status)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("task not in column %s: %s", status, id)
		}
	}
	return tx.Commit()
}
