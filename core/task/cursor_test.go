package task_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/core/task"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	id := "0195f7a2-1111-7abc-9def-000000000001"

	c, err := task.DecodeCursor(task.EncodeCursor(createdAt, id))
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(createdAt))
	assert.Equal(t, id, c.ID)
}

func TestDecodeCursorMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not base64":        "not-base64!!!",
		"no separator":      base64.URLEncoding.EncodeToString([]byte("2025-03-14T09:26:53Z")),
		"bad timestamp":     base64.URLEncoding.EncodeToString([]byte("yesterday|some-id")),
		"empty payload":     base64.URLEncoding.EncodeToString(nil),
		"separator only":    base64.URLEncoding.EncodeToString([]byte("|")),
		"standard alphabet": "ab+/cd==",
	}
	for name, cursor := range cases {
		cursor := cursor
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := task.DecodeCursor(cursor)
			assert.ErrorIs(t, err, task.ErrInvalidCursor)
		})
	}
}

func TestEncodeCursorNormalizesToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2025, 3, 14, 4, 26, 53, 0, loc)

	c, err := task.DecodeCursor(task.EncodeCursor(local, "id"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.True(t, c.CreatedAt.Equal(local))
}
