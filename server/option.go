package server

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruleflow-dev/ruleflow/docs"
	"github.com/ruleflow-dev/ruleflow/events"
)

type Option func(s *Server)

func WithPort(port uint) Option {
	return func(s *Server) {
		s.port = strconv.Itoa(int(port))
	}
}

// WithEventHub mounts the websocket events endpoint over the given hub.
func WithEventHub(hub *events.EventHub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithDocsNav replaces the served documentation navigation manifest.
func WithDocsNav(manifest *docs.Manifest) Option {
	return func(s *Server) {
		s.nav = manifest
	}
}

func WithCORS() Option {
	return func(s *Server) {
		s.app.Use(cors.New())
	}
}

func WithPrettyPrint() Option {
	return func(_ *Server) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
