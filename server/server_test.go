package server_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/codec"
	"github.com/ruleflow-dev/ruleflow/server"
	"github.com/ruleflow-dev/ruleflow/server/handler"
	"github.com/ruleflow-dev/ruleflow/session"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

const sssSource = `
@init(AB);
ABA -> AAB;
A -> ABA;
@evolve(4);
`

func newServer(t *testing.T) *server.Server {
	t.Helper()
	return server.New(session.NewManager())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		bz, err := codec.Encode(body)
		assert.NilError(t, err)
		reader = bytes.NewReader(bz)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	res, err := app.Test(req)
	assert.NilError(t, err)
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	bz, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	out, err := codec.Decode[T](bz)
	assert.NilError(t, err)
	return out
}

func createSession(t *testing.T, app *fiber.App, name string) handler.SessionInfo {
	t.Helper()
	res := doJSON(t, app, fiber.MethodPost, "/session", handler.CreateSessionRequest{Name: name})
	assert.Equal(t, res.StatusCode, fiber.StatusCreated)
	return decodeBody[handler.SessionInfo](t, res)
}

func interpret(t *testing.T, app *fiber.App, id, source string) handler.SessionInfo {
	t.Helper()
	res := doJSON(t, app, fiber.MethodPost, "/session/"+id+"/interpret", handler.InterpretRequest{Source: source})
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	return decodeBody[handler.SessionInfo](t, res)
}

func TestEventsSchemaEndpoint(t *testing.T) {
	srv := newServer(t)
	res := doJSON(t, srv.App(), fiber.MethodGet, "/events/schema", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)

	bz, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	schema := string(bz)
	for _, prop := range []string{"step", "spaces", "inert", "causalDistance", "events"} {
		assert.Contains(t, strings.Split(schema, `"`), prop)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(t)
	res := doJSON(t, srv.App(), fiber.MethodGet, "/health", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)

	health := decodeBody[handler.GetHealthResponse](t, res)
	assert.True(t, health.IsServerRunning)
	assert.Equal(t, health.ActiveSessions, 0)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t)
	app := srv.App()

	info := createSession(t, app, "sss")
	assert.Equal(t, info.Name, "sss")
	assert.False(t, info.Interpreted)

	res := doJSON(t, app, fiber.MethodGet, "/session", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	list := decodeBody[[]handler.SessionInfo](t, res)
	assert.Len(t, list, 1)
	assert.Equal(t, list[0].ID, info.ID)

	res = doJSON(t, app, fiber.MethodGet, "/session/"+info.ID, nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)

	res = doJSON(t, app, fiber.MethodDelete, "/session/"+info.ID, nil)
	assert.Equal(t, res.StatusCode, fiber.StatusNoContent)

	res = doJSON(t, app, fiber.MethodGet, "/session/"+info.ID, nil)
	assert.Equal(t, res.StatusCode, fiber.StatusNotFound)
}

func TestInterpretAndEvolve(t *testing.T) {
	srv := newServer(t)
	app := srv.App()
	info := createSession(t, app, "sss")

	info = interpret(t, app, info.ID, sssSource)
	assert.True(t, info.Interpreted)
	assert.DeepEqual(t, info.Spaces, []string{"AB"})

	// zero steps means "as many as @evolve asked for"
	res := doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/evolve", handler.EvolveRequest{})
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	info = decodeBody[handler.SessionInfo](t, res)
	assert.Equal(t, info.Step, uint64(4))
	assert.DeepEqual(t, info.Spaces, []string{"AABABB"})

	res = doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/evolve", handler.EvolveRequest{Steps: 1})
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	info = decodeBody[handler.SessionInfo](t, res)
	assert.Equal(t, info.Step, uint64(5))
}

func TestInterpretRejectsBadSource(t *testing.T) {
	srv := newServer(t)
	app := srv.App()
	info := createSession(t, app, "bad")

	res := doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/interpret",
		handler.InterpretRequest{Source: "A -> B"})
	assert.Equal(t, res.StatusCode, fiber.StatusBadRequest)
}

func TestEventsEndpoint(t *testing.T) {
	srv := newServer(t)
	app := srv.App()
	info := createSession(t, app, "sss")
	interpret(t, app, info.ID, sssSource)

	res := doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/evolve", handler.EvolveRequest{Steps: 2})
	assert.Equal(t, res.StatusCode, fiber.StatusOK)

	res = doJSON(t, app, fiber.MethodGet, "/session/"+info.ID+"/events", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	events := decodeBody[[]handler.EventInfo](t, res)
	assert.Len(t, events, 3)
	assert.Equal(t, events[0].Step, 0)
	assert.DeepEqual(t, events[2].Spaces, []string{"AABB"})
	assert.Equal(t, events[2].CausalDistance, 2)
}

func TestGraphEndpoint(t *testing.T) {
	srv := newServer(t)
	app := srv.App()
	info := createSession(t, app, "sss")
	interpret(t, app, info.ID, sssSource)
	doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/evolve", handler.EvolveRequest{Steps: 2})

	res := doJSON(t, app, fiber.MethodGet, "/session/"+info.ID+"/graph", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	g := decodeBody[struct {
		Nodes []any `json:"nodes"`
		Edges []any `json:"edges"`
	}](t, res)
	assert.Len(t, g.Nodes, 3)

	res = doJSON(t, app, fiber.MethodGet, "/session/"+info.ID+"/graph?format=dot", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	body, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "digraph causal {"))
}

func TestDocsNavEndpoint(t *testing.T) {
	srv := newServer(t)
	app := srv.App()

	res := doJSON(t, app, fiber.MethodGet, "/docs/nav", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	nav := decodeBody[struct {
		Nav []struct {
			Title string `json:"title"`
		} `json:"nav"`
	}](t, res)
	assert.True(t, len(nav.Nav) > 0)
	assert.Equal(t, nav.Nav[0].Title, "Quickstart")

	res = doJSON(t, app, fiber.MethodGet, "/docs/nav?format=text", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	body, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	assert.Contains(t, string(body), "Quickstart")
	assert.Contains(t, string(body), "---")
}

func TestSaveAndRestoreEndpoints(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewRedisStorage(redis.Options{Addr: mr.Addr()}, "test")
	manager := session.NewManager(session.WithStorage(&store))
	srv := server.New(manager)
	app := srv.App()

	info := createSession(t, app, "sss")
	interpret(t, app, info.ID, sssSource)
	doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/evolve", handler.EvolveRequest{Steps: 3})

	res := doJSON(t, app, fiber.MethodPost, "/session/"+info.ID+"/save", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusNoContent)

	res = doJSON(t, app, fiber.MethodGet, "/session/saved", nil)
	assert.Equal(t, res.StatusCode, fiber.StatusOK)
	saved := decodeBody[[]string](t, res)
	assert.DeepEqual(t, saved, []string{info.ID})

	res = doJSON(t, app, fiber.MethodPost, "/session/restore",
		handler.RestoreRequest{ID: info.ID, Name: "restored"})
	assert.Equal(t, res.StatusCode, fiber.StatusCreated)
	restored := decodeBody[handler.SessionInfo](t, res)
	assert.Equal(t, restored.Name, "restored")
	assert.DeepEqual(t, restored.Spaces, []string{"ABAABB"})
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewRedisStorage(redis.Options{Addr: mr.Addr()}, "test")
	srv := server.New(session.NewManager(session.WithStorage(&store)))

	res := doJSON(t, srv.App(), fiber.MethodPost, "/session/restore",
		handler.RestoreRequest{ID: "nope"})
	assert.Equal(t, res.StatusCode, fiber.StatusNotFound)
}
