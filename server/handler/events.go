package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
)

// WebSocketEvents wraps a hub's connection handler into a fiber handler.
func WebSocketEvents(wsEventHandler func(conn *websocket.Conn)) func(c *fiber.Ctx) error {
	return websocket.New(wsEventHandler)
}

// WebSocketUpgrader rejects plain HTTP requests to the events endpoint.
func WebSocketUpgrader(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return eris.Wrap(c.Next(), "")
	}
	return fiber.ErrUpgradeRequired
}
