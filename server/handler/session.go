// Package handler holds the route handlers of the flow server. Each handler
// is a closure over the piece of the engine it serves.
package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/codec"
	"github.com/ruleflow-dev/ruleflow/session"
)

// SessionInfo is the wire form of a session.
type SessionInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	Interpreted bool      `json:"interpreted"`
	Step        uint64    `json:"step"`
	Inert       bool      `json:"inert"`
	Spaces      []string  `json:"spaces,omitempty"`
}

func NewSessionInfo(s *session.Session) SessionInfo {
	info := SessionInfo{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
	if s.Flow != nil {
		info.Interpreted = true
		info.Step = s.Flow.CurrentStep()
		info.Inert = s.Flow.IsInert()
		for _, sp := range s.Flow.Spaces() {
			info.Spaces = append(info.Spaces, sp.String())
		}
	}
	return info
}

type CreateSessionRequest struct {
	Name string `json:"name"`
}

// PostSession creates a session and selects it.
func PostSession(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req, err := codec.Decode[CreateSessionRequest](c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "session name is required")
		}
		s := manager.Create(req.Name)
		return c.Status(fiber.StatusCreated).JSON(NewSessionInfo(s))
	}
}

// GetSessions lists every session, oldest first.
func GetSessions(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		sessions := manager.List()
		infos := make([]SessionInfo, 0, len(sessions))
		for _, s := range sessions {
			infos = append(infos, NewSessionInfo(s))
		}
		return c.JSON(infos)
	}
}

// GetSession returns one session by id.
func GetSession(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		s, err := manager.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(NewSessionInfo(s))
	}
}

// DeleteSession closes a session.
func DeleteSession(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if err := manager.Close(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type InterpretRequest struct {
	Source string `json:"source"`
}

// PostInterpret compiles flow-language source into the session's flow.
func PostInterpret(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req, err := codec.Decode[InterpretRequest](c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if req.Source == "" {
			return fiber.NewError(fiber.StatusBadRequest, "source is required")
		}
		s, err := manager.Interpret(c.Params("id"), req.Source)
		if err != nil {
			if eris.Is(err, session.ErrNoSession) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(NewSessionInfo(s))
	}
}

type EvolveRequest struct {
	// Steps of zero means "as many as the source's @evolve directives ask
	// for".
	Steps int `json:"steps"`
}

// PostEvolve advances the session's flow.
func PostEvolve(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req, err := codec.Decode[EvolveRequest](c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		s, err := manager.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		steps := req.Steps
		if steps == 0 && s.Program != nil {
			if steps, err = s.Program.Steps(); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		if err := manager.Evolve(s.ID, steps); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(NewSessionInfo(s))
	}
}

// PostSave snapshots the session to storage.
func PostSave(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		s, err := manager.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err := manager.Save(c.Context(), s.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type RestoreRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostRestore opens a new session from a saved snapshot.
func PostRestore(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req, err := codec.Decode[RestoreRequest](c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if req.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "snapshot id is required")
		}
		name := req.Name
		if name == "" {
			name = req.ID
		}
		s, err := manager.Restore(c.Context(), req.ID, name)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(NewSessionInfo(s))
	}
}

// GetSaved lists the ids of saved session snapshots.
func GetSaved(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ids, err := manager.Saved(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if ids == nil {
			ids = []string{}
		}
		return c.JSON(ids)
	}
}
