package task

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const selectColumns = "id, name, description"

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// setClause builds the SET list for a partial update. updated_at is always
// written so an empty body still touches the row and returns it.
func setClause(f fields, updatedAt any, placeholder func(int) string) (string, []any) {
	sets := []string{"updated_at = " + placeholder(1)}
	args := []any{updatedAt}
	if f.Name != nil {
		args = append(args, *f.Name)
		sets = append(sets, "name = "+placeholder(len(args)))
	}
	if f.Description != nil {
		args = append(args, *f.Description)
		sets = append(sets, "description = "+placeholder(len(args)))
	}
	return strings.Join(sets, ", "), args
}

// nullable turns an absent value into SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func questionPlaceholder(int) string {
	return "?"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	if err := row.Scan(&t.ID, &t.Name, &t.Description); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTaskRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Task, error) {
	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}
