package ruleflow

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruleflow-dev/ruleflow/events"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

// FlowOption represents an option that can be used to augment how the flow
// will be run.
type FlowOption func(*Flow)

// WithNamespace sets the flow's namespace. The default comes from
// RULEFLOW_NAMESPACE. The namespace prefixes every persisted key.
func WithNamespace(namespace string) FlowOption {
	return func(f *Flow) {
		f.namespace = namespace
	}
}

// WithStepChannel sets the channel that decides when Evolve is executed. If
// unset, a loop interval from the config is used. Tests can pass in a
// channel controlled by the test for fine-grained control over when steps
// are executed.
func WithStepChannel(ch <-chan time.Time) FlowOption {
	return func(f *Flow) {
		f.stepChannel = ch
	}
}

// WithStepDoneChannel sets a channel that will be notified each time a step
// completes. The completed step number will be pushed to the channel. This
// option is useful in tests when assertions need to be performed at the end
// of a step.
func WithStepDoneChannel(ch chan<- uint64) FlowOption {
	return func(f *Flow) {
		f.stepDoneChannel = ch
	}
}

// WithStorage attaches snapshot persistence. The flow saves a snapshot after
// every step and tries to recover from one on Start.
func WithStorage(store *redis.Storage) FlowOption {
	return func(f *Flow) {
		f.storage = store
	}
}

// WithEventHub attaches a hub that step results are broadcast to.
func WithEventHub(hub *events.EventHub) FlowOption {
	return func(f *Flow) {
		f.eventHub = hub
	}
}

// WithMaxSteps bounds EvolveUntilInert.
func WithMaxSteps(n int) FlowOption {
	return func(f *Flow) {
		f.maxSteps = n
	}
}

func WithPrettyLog() FlowOption {
	return func(*Flow) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
