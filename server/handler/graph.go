package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ruleflow-dev/ruleflow/graph"
	"github.com/ruleflow-dev/ruleflow/session"
)

// EventInfo is the wire form of one event of a flow's history.
type EventInfo struct {
	Step           int      `json:"step"`
	CausalDistance int      `json:"causalDistance"`
	Inert          bool     `json:"inert"`
	Spaces         []string `json:"spaces"`
}

// GetEvents returns a session's event history, creation event first.
func GetEvents(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		s, err := manager.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if s.Flow == nil {
			return fiber.NewError(fiber.StatusBadRequest, "session has no interpreted flow")
		}
		events := s.Flow.Events()
		infos := make([]EventInfo, 0, len(events))
		for _, e := range events {
			info := EventInfo{
				Step:           e.Step,
				CausalDistance: e.CausalDistance,
				Inert:          e.Inert,
				Spaces:         []string{},
			}
			for _, sp := range e.Spaces() {
				info.Spaces = append(info.Spaces, sp.String())
			}
			infos = append(infos, info)
		}
		return c.JSON(infos)
	}
}

// GetGraph returns a session's causal graph, as JSON by default or in
// Graphviz dot form with ?format=dot.
func GetGraph(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		s, err := manager.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if s.Flow == nil {
			return fiber.NewError(fiber.StatusBadRequest, "session has no interpreted flow")
		}
		g := graph.New(s.Flow.EventLog())
		if c.Query("format") == "dot" {
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.SendString(g.DOT())
		}
		return c.JSON(g)
	}
}
