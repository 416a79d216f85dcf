package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/core/queue"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewQueue(t *testing.T) {
	t.Parallel()

	t.Run("nil client", func(t *testing.T) {
		t.Parallel()

		_, err := queue.New(nil, "q")
		assert.ErrorIs(t, err, queue.ErrClientNil)
	})

	t.Run("empty key falls back to default", func(t *testing.T) {
		t.Parallel()

		mr, client := newTestRedis(t)
		q, err := queue.New(client, "")
		require.NoError(t, err)

		require.NoError(t, q.Enqueue(context.Background(), "t1", 0))
		assert.True(t, mr.Exists(queue.DefaultQueueName))
	})
}

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, client := newTestRedis(t)
	q, err := queue.New(client, "test:queue")
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(ctx, "first", 10))
	require.NoError(t, q.Enqueue(ctx, "second", -10))
	require.NoError(t, q.Enqueue(ctx, "third", 0))

	// Priority is advisory only; consumption order is insertion order.
	for _, want := range []string{"first", "second", "third"} {
		got, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestQueueDequeueTimeout(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	q, err := queue.New(client, "test:empty")
	require.NoError(t, err)

	id, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestQueueDequeueMalformedEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, client := newTestRedis(t)
	q, err := queue.New(client, "test:bad")
	require.NoError(t, err)

	require.NoError(t, client.LPush(ctx, "test:bad", "not json").Err())

	_, err = q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, queue.ErrDequeueFailed)
}
