package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at, id)`)
	return err
}

// List returns every task in creation order.
func (s *PgStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, pgError(err))
	}
	return t, nil
}

// Create inserts a new task with a generated ID.
func (s *PgStore) Create(ctx context.Context, data map[string]any) (*Task, error) {
	f, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	description := ""
	if f.Description != nil {
		description = *f.Description
	}
	now := time.Now().Truncate(time.Microsecond)

	t, err := scanTask(s.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+selectColumns,
		newID(), nullable(f.Name), description, now))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Update merges the supplied fields into the stored task.
func (s *PgStore) Update(ctx context.Context, id string, data map[string]any) (*Task, error) {
	f, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	set, args := setClause(f, time.Now().Truncate(time.Microsecond), dollarPlaceholder)
	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s", set, len(args), selectColumns)

	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, pgError(err))
	}
	return t, nil
}

// Delete removes a task and returns it as it was.
func (s *PgStore) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+selectColumns, id))
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, pgError(err))
	}
	return t, nil
}

// Close releases the pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

func pgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
