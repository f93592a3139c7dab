package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueDeliversEveryTask(t *testing.T) {
	q := NewMemoryQueue(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, q.Enqueue(ctx, id))
	}

	var (
		mu   sync.Mutex
		seen = map[uint]int{}
		all  = make(chan struct{})
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, 2, func(_ context.Context, m Message) error {
			mu.Lock()
			defer mu.Unlock()
			seen[m.ResumeID]++
			if len(seen) == 3 {
				close(all)
			}
			return nil
		})
	}()

	select {
	case <-all:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks not delivered")
	}
	cancel()
	<-done

	assert.Equal(t, map[uint]int{1: 1, 2: 1, 3: 1}, seen)
}

func TestMemoryQueueRetriesUntilMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(10)
	q.Backoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan Message, 10)
	go q.Consume(ctx, 1, func(_ context.Context, m Message) error {
		calls <- m
		return errors.New("storage hiccup")
	})
	require.NoError(t, q.Enqueue(ctx, 9))

	for i := 0; i < MaxAttempts; i++ {
		select {
		case m := <-calls:
			assert.Equal(t, i+1, m.Attempt)
			assert.Equal(t, i == MaxAttempts-1, m.Final())
		case <-time.After(2 * time.Second):
			t.Fatalf("attempt %d never ran", i+1)
		}
	}
	select {
	case <-calls:
		t.Fatal("handler ran more than MaxAttempts times")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryQueueClosedRejectsEnqueue(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(context.Background(), 1), ErrClosed)
}

func TestNewQueueTypes(t *testing.T) {
	q, err := New(config.QueueConfig{Type: "memory", Buffer: 5})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, q)

	_, err = New(config.QueueConfig{Type: "rabbitmq"})
	assert.Error(t, err, "empty url must fail before dialing")

	_, err = New(config.QueueConfig{Type: "kafka"})
	assert.Error(t, err)
}
