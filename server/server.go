// Package server exposes the engine over HTTP: session management, source
// interpretation, evolution, event history, causal graphs, a websocket feed
// of step results, and the documentation navigation manifest.
package server

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/ruleflow-dev/ruleflow/docs"
	"github.com/ruleflow-dev/ruleflow/events"
	"github.com/ruleflow-dev/ruleflow/server/handler"
	"github.com/ruleflow-dev/ruleflow/session"
)

const defaultPort = "4040"

type Server struct {
	manager *session.Manager
	hub     *events.EventHub
	nav     *docs.Manifest

	app  *fiber.App
	port string

	running       atomic.Bool
	shutdownMutex sync.Mutex
}

// New builds a server over the given session manager. The documentation
// navigation defaults to the project's own manifest.
func New(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		nav:     docs.Default(),
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		port: defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.app.Get("/health", handler.GetHealth(s.manager))

	s.app.Post("/session", handler.PostSession(s.manager))
	s.app.Get("/session", handler.GetSessions(s.manager))
	s.app.Get("/session/saved", handler.GetSaved(s.manager))
	s.app.Post("/session/restore", handler.PostRestore(s.manager))
	s.app.Get("/session/:id", handler.GetSession(s.manager))
	s.app.Delete("/session/:id", handler.DeleteSession(s.manager))
	s.app.Post("/session/:id/interpret", handler.PostInterpret(s.manager))
	s.app.Post("/session/:id/evolve", handler.PostEvolve(s.manager))
	s.app.Get("/session/:id/events", handler.GetEvents(s.manager))
	s.app.Get("/session/:id/graph", handler.GetGraph(s.manager))
	s.app.Post("/session/:id/save", handler.PostSave(s.manager))

	s.app.Get("/docs/nav", handler.GetDocsNav(s.nav))

	// Registered before the websocket upgrader so plain GETs reach it.
	s.app.Get("/events/schema", handler.GetEventsSchema())

	if s.hub != nil {
		s.app.Use("/events", handler.WebSocketUpgrader)
		s.app.Get("/events", handler.WebSocketEvents(s.hub.NewWebSocketEventHandler()))
	}
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Port returns the port the server listens on.
func (s *Server) Port() string {
	return s.port
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	s.running.Store(true)
	log.Info().Msgf("Serving the flow engine at port %s", s.port)
	err := s.app.Listen(":" + s.port)
	s.running.Store(false)
	return eris.Wrap(err, "")
}

// IsRunning reports whether Serve is live.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Shutdown gracefully stops the server. Safe to call more than once.
func (s *Server) Shutdown() error {
	s.shutdownMutex.Lock()
	defer s.shutdownMutex.Unlock()
	if !s.running.Load() {
		return nil
	}
	if err := s.app.Shutdown(); err != nil {
		return eris.Wrap(err, "")
	}
	s.running.Store(false)
	log.Info().Msg("Successfully shut down server")
	return nil
}
