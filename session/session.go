// Package session manages named flows. A manager owns a registry of flow
// constructors and the set of live sessions, one flow per session, and can
// persist sessions through the redis storage layer.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow"
	"github.com/ruleflow-dev/ruleflow/lang"
	"github.com/ruleflow-dev/ruleflow/space"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

// DefaultConstructor is the name of the flow constructor every manager
// starts with.
const DefaultConstructor = "flowlang"

// ErrNoSession is returned when a session id is unknown or nothing is
// selected.
var ErrNoSession = eris.New("no such session")

// Constructor builds a flow from flow-language source.
type Constructor func(source string, opts ...ruleflow.FlowOption) (*ruleflow.Flow, *lang.Program, error)

// Session is one named flow. Flow and Program stay nil until source has
// been interpreted into the session.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	Flow    *ruleflow.Flow
	Program *lang.Program
}

// Manager owns the sessions and the constructor registry. All methods are
// safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	constructors map[string]Constructor
	selectedCtor string

	sessions map[string]*Session
	selected string

	compileOpts []lang.CompileOption
	flowOpts    []ruleflow.FlowOption
	storage     *redis.Storage
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCompileOptions forwards options to every compilation the manager
// performs, such as the prompt selector resolver.
func WithCompileOptions(opts ...lang.CompileOption) ManagerOption {
	return func(m *Manager) {
		m.compileOpts = opts
	}
}

// WithFlowOptions forwards options to every flow the manager builds.
func WithFlowOptions(opts ...ruleflow.FlowOption) ManagerOption {
	return func(m *Manager) {
		m.flowOpts = opts
	}
}

// WithStorage enables session persistence.
func WithStorage(store *redis.Storage) ManagerOption {
	return func(m *Manager) {
		m.storage = store
	}
}

// NewManager builds a manager with the flowlang constructor registered and
// selected.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		constructors: map[string]Constructor{},
		sessions:     map[string]*Session{},
		selectedCtor: DefaultConstructor,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.constructors[DefaultConstructor] = func(source string, flowOpts ...ruleflow.FlowOption) (*ruleflow.Flow, *lang.Program, error) {
		return ruleflow.NewFlowFromSource(source, m.compileOpts, flowOpts...)
	}
	return m
}

// Register adds a flow constructor under the given name.
func (m *Manager) Register(name string, ctor Constructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constructors[name] = ctor
}

// SelectConstructor picks which constructor Interpret uses.
func (m *Manager) SelectConstructor(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.constructors[name]; !ok {
		return eris.Errorf("no flow constructor named %q", name)
	}
	m.selectedCtor = name
	return nil
}

// Create opens a new session and selects it.
func (m *Manager) Create(name string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	m.selected = s.ID
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, eris.Wrapf(ErrNoSession, "id %q", id)
	}
	return s, nil
}

// Select makes the session with the given id current.
func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrNoSession, "id %q", id)
	}
	m.selected = id
	return nil
}

// Current returns the selected session.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[m.selected]
	if !ok {
		return nil, eris.Wrap(ErrNoSession, "nothing selected")
	}
	return s, nil
}

// List returns every session, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close discards a session. A closed selected session leaves nothing
// selected.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrNoSession, "id %q", id)
	}
	delete(m.sessions, id)
	if m.selected == id {
		m.selected = ""
	}
	return nil
}

// Interpret compiles source with the selected constructor and installs the
// resulting flow into the session, replacing any previous one.
func (m *Manager) Interpret(id string, source string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	ctor := m.constructors[m.selectedCtor]
	flowOpts := m.flowOpts
	m.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrNoSession, "id %q", id)
	}

	flow, prog, err := ctor(source, flowOpts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	s.Flow = flow
	s.Program = prog
	m.mu.Unlock()
	return s, nil
}

// Evolve advances a session's flow n steps.
func (m *Manager) Evolve(id string, n int) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if s.Flow == nil {
		return eris.Errorf("session %q has no interpreted flow", id)
	}
	return s.Flow.EvolveN(n)
}

// Save snapshots a session: its source, step count and current spaces.
func (m *Manager) Save(ctx context.Context, id string) error {
	if m.storage == nil {
		return eris.New("session persistence requires storage")
	}
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if s.Flow == nil {
		return eris.Errorf("session %q has no interpreted flow", id)
	}
	spaces := s.Flow.Spaces()
	rendered := make([]string, len(spaces))
	for i, sp := range spaces {
		rendered[i] = sp.String()
	}
	return m.storage.SaveSnapshot(ctx, redis.Snapshot{
		Name:   s.ID,
		Source: s.Flow.Source(),
		Step:   s.Flow.CurrentStep(),
		Spaces: rendered,
	})
}

// Restore opens a new session from a saved snapshot. The snapshot's source
// is reinterpreted and its spaces become the flow's creation event; the
// event history between creation and the snapshot is not replayed.
func (m *Manager) Restore(ctx context.Context, id string, name string) (*Session, error) {
	if m.storage == nil {
		return nil, eris.New("session persistence requires storage")
	}
	if err := m.storage.ValidateSchema(ctx); err != nil {
		return nil, err
	}
	snap, err := m.storage.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	s := m.Create(name)
	if _, err := m.Interpret(s.ID, snap.Source); err != nil {
		return nil, err
	}
	spaces := make([]*space.Linear, 0, len(snap.Spaces))
	for _, sp := range snap.Spaces {
		spaces = append(spaces, space.NewLinear(sp))
	}
	if len(spaces) > 0 {
		s.Flow.Reset(spaces)
	}
	return s, nil
}

// Saved lists the ids of every saved session snapshot.
func (m *Manager) Saved(ctx context.Context) ([]string, error) {
	if m.storage == nil {
		return nil, eris.New("session persistence requires storage")
	}
	return m.storage.ListSnapshots(ctx)
}
