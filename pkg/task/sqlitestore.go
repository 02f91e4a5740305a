package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore is a task store over database/sql with the modernc SQLite
// driver. The caller opens the handle; see internal/db.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *SQLiteStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at, id)`)
	return err
}

// List returns every task in creation order.
func (s *SQLiteStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// Get retrieves a single task by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, sqlError(err))
	}
	return t, nil
}

// Create inserts a new task with a generated ID.
func (s *SQLiteStore) Create(ctx context.Context, data map[string]any) (*Task, error) {
	f, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	description := ""
	if f.Description != nil {
		description = *f.Description
	}
	now := time.Now().UnixNano()

	t, err := scanTask(s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+selectColumns,
		newID(), nullable(f.Name), description, now, now))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Update merges the supplied fields into the stored task.
func (s *SQLiteStore) Update(ctx context.Context, id string, data map[string]any) (*Task, error) {
	f, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	set, args := setClause(f, time.Now().UnixNano(), questionPlaceholder)
	args = append(args, id)

	t, err := scanTask(s.db.QueryRowContext(ctx, `UPDATE tasks SET `+set+` WHERE id = ? RETURNING `+selectColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, sqlError(err))
	}
	return t, nil
}

// Delete removes a task and returns it as it was.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = ? RETURNING `+selectColumns, id))
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, sqlError(err))
	}
	return t, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

func sqlError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
