package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/session"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

const sssSource = `
@init(AB);
ABA -> AAB;
A -> ABA;
@evolve(4);
`

func newManager(t *testing.T) (*session.Manager, *redis.Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewRedisStorage(redis.Options{Addr: mr.Addr()}, "test")
	return session.NewManager(session.WithStorage(&store)), &store
}

func TestCreateSelectsTheNewSession(t *testing.T) {
	m := session.NewManager()

	first := m.Create("first")
	second := m.Create("second")

	current, err := m.Current()
	assert.NilError(t, err)
	assert.Same(t, current, second)

	assert.NilError(t, m.Select(first.ID))
	current, err = m.Current()
	assert.NilError(t, err)
	assert.Same(t, current, first)
}

func TestInterpretInstallsAFlow(t *testing.T) {
	m := session.NewManager()
	s := m.Create("sss")

	s, err := m.Interpret(s.ID, sssSource)
	assert.NilError(t, err)
	assert.NotNil(t, s.Flow)
	assert.NotNil(t, s.Program)

	steps, err := s.Program.Steps()
	assert.NilError(t, err)
	assert.NilError(t, m.Evolve(s.ID, steps))
	assert.Equal(t, s.Flow.CurrentStep(), uint64(4))
	assert.Equal(t, s.Flow.Spaces()[0].String(), "AABABB")
}

func TestEvolveRequiresAnInterpretedFlow(t *testing.T) {
	m := session.NewManager()
	s := m.Create("empty")
	assert.ErrorContains(t, m.Evolve(s.ID, 1), "no interpreted flow")
}

func TestListIsOldestFirst(t *testing.T) {
	m := session.NewManager()
	a := m.Create("a")
	b := m.Create("b")
	c := m.Create("c")

	list := m.List()
	assert.Len(t, list, 3)
	assert.Same(t, list[0], a)
	assert.Same(t, list[1], b)
	assert.Same(t, list[2], c)
}

func TestCloseDropsSelection(t *testing.T) {
	m := session.NewManager()
	s := m.Create("gone")
	assert.NilError(t, m.Close(s.ID))

	_, err := m.Current()
	assert.ErrorIs(t, err, session.ErrNoSession)

	assert.ErrorIs(t, m.Close(s.ID), session.ErrNoSession)
}

func TestUnknownConstructor(t *testing.T) {
	m := session.NewManager()
	assert.ErrorContains(t, m.SelectConstructor("nope"), "no flow constructor")
	assert.NilError(t, m.SelectConstructor(session.DefaultConstructor))
}

func TestSaveAndRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	s := m.Create("sss")
	_, err := m.Interpret(s.ID, sssSource)
	assert.NilError(t, err)
	assert.NilError(t, m.Evolve(s.ID, 3))
	assert.NilError(t, m.Save(ctx, s.ID))

	saved, err := m.Saved(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, saved, []string{s.ID})

	restored, err := m.Restore(ctx, s.ID, "sss-restored")
	assert.NilError(t, err)
	assert.NotNil(t, restored.Flow)
	// the snapshot spaces become the restored flow's creation event
	assert.Equal(t, restored.Flow.Spaces()[0].String(), "ABAABB")

	assert.NilError(t, m.Evolve(restored.ID, 1))
	assert.Equal(t, restored.Flow.Spaces()[0].String(), "AABABB")
}

func TestSaveWithoutStorageFails(t *testing.T) {
	m := session.NewManager()
	s := m.Create("sss")
	_, err := m.Interpret(s.ID, sssSource)
	assert.NilError(t, err)
	assert.ErrorContains(t, m.Save(context.Background(), s.ID), "requires storage")
}
