package handlers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/handlers"
)

type transformOut struct {
	Transformed map[string]any `json:"transformed"`
	FieldCount  int            `json:"field_count"`
}

func runTransform(t *testing.T, payload string) (transformOut, error) {
	t.Helper()

	raw, err := handlers.NewDataTransform().Handle(context.Background(), json.RawMessage(payload))
	if err != nil {
		return transformOut{}, err
	}
	var out transformOut
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, nil
}

func TestDataTransform(t *testing.T) {
	t.Parallel()

	t.Run("name", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "data_transform", handlers.NewDataTransform().Name())
	})

	t.Run("passes data through without select or rename", func(t *testing.T) {
		t.Parallel()

		out, err := runTransform(t, `{"data":{"a":1,"b":"x"}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1), "b": "x"}, out.Transformed)
		assert.Equal(t, 2, out.FieldCount)
	})

	t.Run("select projects fields, missing keys become null", func(t *testing.T) {
		t.Parallel()

		out, err := runTransform(t, `{"data":{"a":1,"b":2},"select":["a","missing"]}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1), "missing": nil}, out.Transformed)
		assert.Equal(t, 2, out.FieldCount)
	})

	t.Run("rename maps keys", func(t *testing.T) {
		t.Parallel()

		out, err := runTransform(t, `{"data":{"a":1,"b":2},"rename":{"a":"alpha"}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"alpha": float64(1), "b": float64(2)}, out.Transformed)
	})

	t.Run("select then rename compose", func(t *testing.T) {
		t.Parallel()

		out, err := runTransform(t, `{"data":{"a":1,"b":2,"c":3},"select":["a","b"],"rename":{"b":"beta"}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1), "beta": float64(2)}, out.Transformed)
		assert.Equal(t, 2, out.FieldCount)
	})

	t.Run("empty select yields empty object", func(t *testing.T) {
		t.Parallel()

		out, err := runTransform(t, `{"data":{"a":1},"select":[]}`)
		require.NoError(t, err)
		assert.Empty(t, out.Transformed)
		assert.Equal(t, 0, out.FieldCount)
	})

	t.Run("missing data fails the attempt", func(t *testing.T) {
		t.Parallel()

		_, err := runTransform(t, `{"select":["a"]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payload.data must be an object")
	})
}
