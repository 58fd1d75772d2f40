package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueueDrainsOnStop(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []interface{}
	)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Payload)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 10})

	require.ErrorIs(t, q.Submit("note", 0), ErrQueueClosed)
	q.Start(context.Background())
	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Submit("note", i))
	}
	q.Stop()

	assert.ElementsMatch(t, []interface{}{1, 2, 3, 4, 5}, seen)
	assert.ErrorIs(t, q.Submit("note", 6), ErrQueueClosed)
	q.Stop()
}

func TestQueueRejectsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	q := NewQueue("test", func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.Submit("a", nil))
	<-started
	require.NoError(t, q.Submit("b", nil))
	assert.ErrorIs(t, q.Submit("c", nil), ErrQueueFull)

	close(release)
	go func() { <-started }()
	q.Stop()
}

func TestQueueLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	q := NewQueue("test", func(context.Context, Job) error {
		return errors.New("sink unavailable")
	}, QueueConfig{Logger: zap.New(core)})
	q.Start(context.Background())
	require.NoError(t, q.Submit("note", nil))
	q.Stop()

	entries := logs.FilterMessage("job failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "note", entries[0].ContextMap()["type"])
}
