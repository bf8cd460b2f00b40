// Package flowstage tracks the lifecycle stage of a flow atomically, so the
// evolution loop, the server, and shutdown handling can coordinate without a
// shared lock.
package flowstage

import (
	"sync"
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of a flow
	Starting     Stage = "Starting"     // Flow is moved to this stage after Start() is called
	Recovering   Stage = "Recovering"   // Flow is moved to this stage while restoring a persisted evolution
	Ready        Stage = "Ready"        // Flow is moved to this stage when it's ready to start stepping
	Running      Stage = "Running"      // Flow is moved to this stage when Evolve() is first called
	ShuttingDown Stage = "ShuttingDown" // Flow is moved to this stage when it received a shutdown signal
	ShutDown     Stage = "ShutDown"     // Flow is moved to this stage when it has successfully shutdown
)

type Manager struct {
	current *atomic.Value

	mu      sync.Mutex
	waiters map[Stage][]chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
		waiters: map[Stage][]chan struct{}{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	swapped = m.current.CompareAndSwap(oldStage, newStage)
	if swapped {
		m.notify(newStage)
	}
	return swapped
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
	m.notify(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	oldStage = m.current.Swap(newStage).(Stage)
	m.notify(newStage)
	return oldStage
}

// NotifyOnStage returns a channel that is closed once the manager reaches
// the given stage. If the manager is already there the channel comes back
// closed.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	if m.Current() == stage {
		close(ch)
		return ch
	}
	m.waiters[stage] = append(m.waiters[stage], ch)
	return ch
}

func (m *Manager) notify(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.waiters[stage] {
		close(ch)
	}
	delete(m.waiters, stage)
}
