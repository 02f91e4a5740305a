package task

import (
	"context"
	"errors"
	"fmt"
)

// Task is the single resource served by the API.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ErrNotFound is returned by Get, Update and Delete when no task has the id.
var ErrNotFound = errors.New("task not found")

// FieldError reports a body value that cannot be stored in its column.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for field %s: %s", e.Field, e.Reason)
}

// Store is the contract for task persistence.
type Store interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	Create(ctx context.Context, data map[string]any) (*Task, error)
	Update(ctx context.Context, id string, data map[string]any) (*Task, error)
	Delete(ctx context.Context, id string) (*Task, error)
	EnsureTable(ctx context.Context) error
	Close()
}

// fields is the column view of a request body. A nil pointer means the key
// was absent and the column keeps its value (or its default on insert).
type fields struct {
	Name        *string
	Description *string
}

// parseFields maps known body keys onto columns. Unknown keys, and id, are
// ignored. A null name counts as absent; a null description clears it.
func parseFields(data map[string]any) (fields, error) {
	var f fields
	for k, v := range data {
		switch k {
		case "name":
			s, err := stringValue(k, v)
			if err != nil {
				return f, err
			}
			f.Name = s
		case "description":
			s, err := stringValue(k, v)
			if err != nil {
				return f, err
			}
			if s == nil {
				empty := ""
				s = &empty
			}
			f.Description = s
		}
	}
	return f, nil
}

func stringValue(field string, v any) (*string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &x, nil
	default:
		return nil, &FieldError{Field: field, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
}
