package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/invopop/jsonschema"

	"github.com/ruleflow-dev/ruleflow/events"
)

// GetEventsSchema serves the JSON schema of the step results broadcast over
// the websocket feed, so clients can validate frames without guessing the
// wire format. The schema is reflected once at route registration.
func GetEventsSchema() func(c *fiber.Ctx) error {
	schema := jsonschema.Reflect(&events.StepResults{})
	return func(c *fiber.Ctx) error {
		return c.JSON(schema)
	}
}
