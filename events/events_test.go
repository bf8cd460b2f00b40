package events_test

import (
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/events"
)

func TestEmitQueuesUntilFlush(t *testing.T) {
	hub := events.NewEventHub()
	defer hub.Shutdown()

	assert.NilError(t, hub.EmitEvent(map[string]any{"step": 1}))
	assert.NilError(t, hub.EmitEvent(map[string]any{"step": 2}))
	assert.Equal(t, hub.EventQueueLength(), 2)

	// no connections registered, flushing just empties the queue
	hub.FlushEvents()
	assert.Equal(t, hub.EventQueueLength(), 0)
}

func TestEmitRejectsUnserializable(t *testing.T) {
	hub := events.NewEventHub()
	defer hub.Shutdown()

	err := hub.EmitEvent(make(chan int))
	assert.ErrorContains(t, err, "json serializable")
	assert.Equal(t, hub.ConnectionAmount(), 0)
}

func TestStepResultsRejectUnserializable(t *testing.T) {
	results := events.NewStepResults(1)
	assert.ErrorContains(t, results.AddEvent(make(chan int)), "json serializable")
}
