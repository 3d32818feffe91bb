package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	payload := testPayload{ID: "test-1", Count: 1}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload.ID, msgData.ID)
	assert.Equal(t, payload.Count, msgData.Count)

	assert.NoError(t, message.Ack())
	// double ack should error
	assert.Error(t, message.Ack())
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &testPayload{ID: "retry-test"}))

	// nack through every allowed retry
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
		message, err := queue.Consume(consumeCtx)
		cancel()
		require.NoError(t, err, "attempt %d", attempt)
		require.NoError(t, message.Nack(fmt.Errorf("processing failed")))
	}

	// retries exhausted: nothing is re-queued
	consumeCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(consumeCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueTryPublishDropsOldestWhenFull(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 2
	queue := NewQueue[testPayload](config)

	assert.True(t, queue.TryPublish(&testPayload{ID: "1"}))
	assert.True(t, queue.TryPublish(&testPayload{ID: "2"}))
	// buffer is full: the oldest message makes room for the newest
	assert.True(t, queue.TryPublish(&testPayload{ID: "3"}))
	assert.Equal(t, 2, queue.Size())

	message, err := queue.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", message.T().ID)
	message, err = queue.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", message.T().ID)
}

func TestQueueConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
