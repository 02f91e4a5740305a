package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	t.Run("known keys", func(t *testing.T) {
		f, err := parseFields(map[string]any{"name": "Test", "description": "two"})
		require.NoError(t, err)
		require.NotNil(t, f.Name)
		require.NotNil(t, f.Description)
		assert.Equal(t, "Test", *f.Name)
		assert.Equal(t, "two", *f.Description)
	})

	t.Run("unknown keys and id are ignored", func(t *testing.T) {
		f, err := parseFields(map[string]any{"id": "client-id", "priority": 3})
		require.NoError(t, err)
		assert.Nil(t, f.Name)
		assert.Nil(t, f.Description)
	})

	t.Run("nil body", func(t *testing.T) {
		f, err := parseFields(nil)
		require.NoError(t, err)
		assert.Nil(t, f.Name)
	})

	t.Run("null name is absent, null description clears", func(t *testing.T) {
		f, err := parseFields(map[string]any{"name": nil, "description": nil})
		require.NoError(t, err)
		assert.Nil(t, f.Name)
		require.NotNil(t, f.Description)
		assert.Equal(t, "", *f.Description)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := parseFields(map[string]any{"name": 42.0})
		require.Error(t, err)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "name", fe.Field)
		assert.Equal(t, "invalid value for field name: expected string, got float64", err.Error())
	})
}
