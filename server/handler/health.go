package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ruleflow-dev/ruleflow/session"
)

type GetHealthResponse struct {
	IsServerRunning bool `json:"isServerRunning"`
	ActiveSessions  int  `json:"activeSessions"`
}

func GetHealth(manager *session.Manager) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(GetHealthResponse{
			IsServerRunning: true,
			ActiveSessions:  len(manager.List()),
		})
	}
}
