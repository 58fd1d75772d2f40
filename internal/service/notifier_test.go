package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifierWritesStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetricsService()
	notifier := NewLogNotifier(zap.New(core), metrics)

	notifier.Notify(context.Background(), Notification{
		Event:   "skater.created",
		Message: "Skater created successfully",
		Fields:  map[string]string{"skater_id": "42"},
	})

	entries := logs.FilterMessage("notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "skater.created", fields["event"])
	assert.Equal(t, "42", fields["skater_id"])
}

func TestLogNotifierToleratesNilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogNotifier(nil, nil).Notify(context.Background(), Notification{Event: "x"})
	})
}

func TestAsyncNotifierDeliversAfterStop(t *testing.T) {
	sink := &recordingNotifier{}
	core, logs := observer.New(zap.WarnLevel)
	notifier := NewAsyncNotifier(sink, 2, 8, zap.New(core))

	notifier.Notify(context.Background(), Notification{Event: "early"})
	notifier.Start(context.Background())
	for _, event := range []string{"a", "b", "c"} {
		notifier.Notify(context.Background(), Notification{Event: event})
	}
	notifier.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, sink.events)
	require.Len(t, logs.FilterMessage("notification dropped").All(), 1)
}
