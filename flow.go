// Package ruleflow evolves one-dimensional substitution systems. A Flow owns
// a rule set, an initial space, and the event log of everything that has
// happened; it can be stepped synchronously or run on its own loop with
// snapshot persistence and step-result broadcasting.
package ruleflow

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruleflow-dev/ruleflow/event"
	"github.com/ruleflow-dev/ruleflow/events"
	"github.com/ruleflow-dev/ruleflow/flowstage"
	flowlog "github.com/ruleflow-dev/ruleflow/log"
	"github.com/ruleflow-dev/ruleflow/rule"
	"github.com/ruleflow-dev/ruleflow/space"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

type Flow struct {
	namespace string
	source    string

	ruleSet *rule.Set
	initial []*space.Linear
	eventLog *event.Log

	// Storage
	storage *redis.Storage

	// Core modules
	flowStage *flowstage.Manager
	eventHub  *events.EventHub

	// Step
	maxSteps                     int
	step                         *atomic.Uint64
	stepResults                  *events.StepResults
	stepChannel                  <-chan time.Time
	stepDoneChannel              chan<- uint64
	// addChannelWaitingForNextStep accepts a channel which will be closed
	// after a step has been completed.
	addChannelWaitingForNextStep chan chan struct{}
}

// NewFlow creates a flow over the given rule set and initial spaces. The
// initial spaces become the creation event of the flow's history.
func NewFlow(set *rule.Set, initial []*space.Linear, opts ...FlowOption) (*Flow, error) {
	// Load config. Fallback value is used if it's not set.
	cfg, err := loadConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to start flow")
	}
	cfg.setLogger()

	if len(initial) == 0 {
		return nil, eris.New("a flow needs at least one initial space")
	}

	step := new(atomic.Uint64)

	flow := &Flow{
		namespace: cfg.Namespace,

		ruleSet: set,
		initial: initial,
		eventLog: event.NewLog(initial),

		// Core modules
		flowStage: flowstage.NewManager(),

		// Step
		maxSteps:                     cfg.MaxSteps,
		step:                         step,
		stepResults:                  events.NewStepResults(step.Load()),
		stepChannel:                  time.Tick(cfg.StepInterval), //nolint:staticcheck // its ok.
		stepDoneChannel:              nil,                         // Will be injected via options
		addChannelWaitingForNextStep: make(chan chan struct{}),
	}

	if cfg.RedisAddress != "" {
		store := redis.NewRedisStorage(redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		}, cfg.Namespace)
		flow.storage = &store
	}

	// Apply options
	for _, opt := range opts {
		opt(flow)
	}

	log.Info().Msgf("Created a new flow in namespace %q", flow.namespace)
	return flow, nil
}

// Namespace returns the flow's namespace.
func (f *Flow) Namespace() string {
	return f.namespace
}

// SetSource records the flow-language source the flow was built from, so
// snapshots can carry it.
func (f *Flow) SetSource(source string) {
	f.source = source
}

// Source returns the flow-language source the flow was built from, if any.
func (f *Flow) Source() string {
	return f.source
}

// RuleSet returns the flow's rule set. It can be swapped at any step
// boundary to evolve under new rules.
func (f *Flow) RuleSet() *rule.Set {
	return f.ruleSet
}

// SetRuleSet replaces the flow's rule set.
func (f *Flow) SetRuleSet(set *rule.Set) {
	f.ruleSet = set
}

// CurrentStep returns the number of completed evolution steps.
func (f *Flow) CurrentStep() uint64 {
	return f.step.Load()
}

// CurrentEvent returns the latest event.
func (f *Flow) CurrentEvent() *event.Event {
	return f.eventLog.Current()
}

// Events returns the full event history, creation event first.
func (f *Flow) Events() []*event.Event {
	return f.eventLog.Events()
}

// EventLog returns the flow's event log.
func (f *Flow) EventLog() *event.Log {
	return f.eventLog
}

// Spaces returns the spaces of the latest event.
func (f *Flow) Spaces() []*space.Linear {
	return f.eventLog.Current().Spaces()
}

// IsInert reports whether the last step made no changes.
func (f *Flow) IsInert() bool {
	return f.eventLog.Current().Inert
}

// Evolve advances the flow by one step: the rule set is applied to the
// current event's spaces and, if anything changed, a new event records the
// deltas and stamps causality onto the touched cells. A step that changes
// nothing marks the current event inert instead.
func (f *Flow) Evolve() error {
	deltas, err := f.ruleSet.Apply(f.eventLog.Current().Spaces())
	if err != nil {
		return eris.Wrap(err, "evolution step failed")
	}
	if len(deltas) == 0 {
		f.eventLog.Current().Inert = true
		return nil
	}

	e := f.eventLog.Append(deltas)
	f.step.Add(1)
	flowlog.Event(&log.Logger, e, zerolog.DebugLevel)
	return nil
}

// EvolveN advances the flow n steps.
func (f *Flow) EvolveN(n int) error {
	for i := 0; i < n; i++ {
		if err := f.Evolve(); err != nil {
			return err
		}
	}
	return nil
}

// EvolveUntilInert evolves until a step changes nothing, bounded by the
// configured maximum number of steps.
func (f *Flow) EvolveUntilInert() error {
	for i := 0; i < f.maxSteps && !f.IsInert(); i++ {
		if err := f.Evolve(); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the evolution. When newInitial is nil the original initial
// spaces are reused; note their cells still carry metadata from the cleared
// run, so callers that need pristine causality pass fresh spaces.
func (f *Flow) Reset(newInitial []*space.Linear) {
	if newInitial != nil {
		f.initial = newInitial
	}
	f.eventLog = event.NewLog(f.initial)
	f.step.Store(0)
}

// Start runs the flow's evolution loop. Each time a message arrives on the
// step channel, an evolution step is attempted. If Start doesn't encounter
// any errors, it will block until the flow is shut down via Shutdown or an
// interrupt signal.
func (f *Flow) Start() error {
	// Flow stage: Init -> Starting
	ok := f.flowStage.CompareAndSwap(flowstage.Init, flowstage.Starting)
	if !ok {
		return errors.New("flow has already been started")
	}

	if f.storage != nil {
		f.flowStage.Store(flowstage.Recovering)
		if err := f.recoverFromStorage(); err != nil {
			return eris.Wrap(err, "failed to recover from storage")
		}
	}
	f.flowStage.Store(flowstage.Ready)

	// Log flow info
	flowlog.Rules(&log.Logger, f.ruleSet, zerolog.InfoLevel)
	if len(f.ruleSet.Rules) == 0 {
		log.Warn().Msg("No rules registered")
	}

	// Flow stage: Ready -> Running
	f.flowStage.Store(flowstage.Running)

	// Start the evolution loop
	f.startStepLoop(context.Background(), f.stepChannel, f.stepDoneChannel)

	// handle shutdown via a signal
	f.handleShutdown()
	<-f.flowStage.NotifyOnStage(flowstage.ShutDown)
	return nil
}

// IsRunning reports whether the evolution loop is live.
func (f *Flow) IsRunning() bool {
	return f.flowStage.Current() == flowstage.Running
}

func (f *Flow) startStepLoop(ctx context.Context, stepStart <-chan time.Time, stepDone chan<- uint64) {
	log.Info().Msg("Evolution loop started")
	go func() {
		var waitingChs []chan struct{}
	loop:
		for {
			select {
			case _, ok := <-stepStart:
				if !ok {
					panic("stepStart channel has been closed; step rate is now unbounded.")
				}
				f.stepTheEngine(ctx, stepDone)
				closeAllChannels(waitingChs)
				waitingChs = waitingChs[:0]
			case <-f.flowStage.NotifyOnStage(flowstage.ShuttingDown):
				f.drainChannelsWaitingForNextStep()
				closeAllChannels(waitingChs)
				if stepDone != nil {
					close(stepDone)
				}
				break loop
			case ch := <-f.addChannelWaitingForNextStep:
				waitingChs = append(waitingChs, ch)
			}
		}
		f.flowStage.Store(flowstage.ShutDown)
	}()
}

func (f *Flow) stepTheEngine(ctx context.Context, stepDone chan<- uint64) {
	currStep := f.CurrentStep()
	// this is the final point where errors bubble up and hit a panic. The
	// panic may point you here, but the real stack trace is in the error
	// message.
	err := f.doStep(ctx)
	if err != nil {
		bytes, errMarshal := json.Marshal(eris.ToJSON(err, true))
		if errMarshal != nil {
			panic(errMarshal)
		}
		panic(string(bytes))
	}
	if stepDone != nil {
		stepDone <- currStep
	}
}

// doStep performs one loop-driven evolution step along with its side
// effects: persistence and step-result broadcasting.
func (f *Flow) doStep(ctx context.Context) error {
	// The flow can only step if it is running or shutting down (the final
	// step).
	if f.flowStage.Current() != flowstage.Recovering &&
		f.flowStage.Current() != flowstage.Running &&
		f.flowStage.Current() != flowstage.ShuttingDown {
		return eris.Errorf("invalid flow state to step: %s", f.flowStage.Current())
	}

	log.Info().Int("step", int(f.CurrentStep())).Msg("Step started")

	if err := f.Evolve(); err != nil {
		return err
	}

	if f.storage != nil {
		if err := f.persistStep(ctx); err != nil {
			return err
		}
	}

	f.populateAndBroadcastStepResults()
	f.stepResults.Clear()
	return nil
}

func (f *Flow) persistStep(ctx context.Context) error {
	rendered := renderSpaces(f.Spaces())
	if err := f.storage.AppendHistory(ctx, f.namespace, rendered); err != nil {
		return err
	}
	return f.storage.SaveSnapshot(ctx, redis.Snapshot{
		Name:   f.namespace,
		Source: f.source,
		Step:   f.CurrentStep(),
		Spaces: rendered,
	})
}

// recoverFromStorage restores the latest persisted spaces as the flow's
// initial state. The event history before the snapshot is not replayed;
// causality tracking restarts from the recovered spaces.
func (f *Flow) recoverFromStorage() error {
	snap, err := f.storage.LoadSnapshot(context.Background(), f.namespace)
	if eris.Is(err, redis.ErrNoSnapshotFound) {
		return nil
	} else if err != nil {
		return err
	}

	recovered := make([]*space.Linear, 0, len(snap.Spaces))
	for _, s := range snap.Spaces {
		recovered = append(recovered, space.NewLinear(s))
	}
	f.Reset(recovered)
	f.step.Store(snap.Step)
	log.Info().Uint64("step", snap.Step).Msg("Recovered flow from snapshot")
	return nil
}

func (f *Flow) populateAndBroadcastStepResults() {
	f.stepResults.SetStep(f.CurrentStep())
	f.stepResults.SetSpaces(renderSpaces(f.Spaces()))
	f.stepResults.Inert = f.IsInert()
	f.stepResults.CausalDistance = f.eventLog.Current().CausalDistance

	if f.eventHub == nil {
		return
	}
	if err := f.eventHub.EmitEvent(f.stepResults); err != nil {
		log.Err(err).Msgf("failed to broadcast step results")
		return
	}
	f.eventHub.FlushEvents()
}

// Shutdown stops the evolution loop and closes the storage connection.
func (f *Flow) Shutdown() error {
	log.Info().Msg("Shutting down evolution loop.")
	ok := f.flowStage.CompareAndSwap(flowstage.Running, flowstage.ShuttingDown)
	if !ok {
		select {
		case <-f.flowStage.NotifyOnStage(flowstage.ShuttingDown):
			// Some other goroutine has already started the shutdown
			// process. Wait until the flow is actually shut down.
			<-f.flowStage.NotifyOnStage(flowstage.ShutDown)
			return nil
		default:
		}
		return errors.New("shutdown attempted before the flow was started")
	}

	// Block until the flow has stopped stepping
	<-f.flowStage.NotifyOnStage(flowstage.ShutDown)

	if f.eventHub != nil {
		f.eventHub.Shutdown()
	}

	if f.storage != nil {
		if err := f.storage.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage connection.")
			return err
		}
	}

	log.Info().Msg("Successfully shut down evolution loop.")
	return nil
}

func (f *Flow) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	go func() {
		signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
		for sig := range signalChannel {
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				err := f.Shutdown()
				if err != nil {
					log.Err(err).Msgf("There was an error during shutdown.")
				}
				return
			}
		}
	}()
}

// WaitForNextStep blocks until at least one evolution step has completed.
// It returns true if it successfully waited for a step. False may be
// returned if the flow was shut down while waiting for the next step to
// complete.
func (f *Flow) WaitForNextStep() (success bool) {
	startStep := f.CurrentStep()
	ch := make(chan struct{})
	f.addChannelWaitingForNextStep <- ch
	<-ch
	return f.CurrentStep() > startStep
}

func closeAllChannels(chs []chan struct{}) {
	for _, ch := range chs {
		close(ch)
	}
}

// drainChannelsWaitingForNextStep continually closes any channels that are
// added to the addChannelWaitingForNextStep channel. This is used when the
// flow is shut down; it ensures any calls to WaitForNextStep that happen
// after a shutdown will not block.
func (f *Flow) drainChannelsWaitingForNextStep() {
	go func() {
		for ch := range f.addChannelWaitingForNextStep {
			close(ch)
		}
	}()
}

func renderSpaces(spaces []*space.Linear) []string {
	out := make([]string, len(spaces))
	for i, s := range spaces {
		out[i] = s.String()
	}
	return out
}
