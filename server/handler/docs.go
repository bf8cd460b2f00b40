package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ruleflow-dev/ruleflow/docs"
)

// GetDocsNav serves the documentation navigation manifest, as JSON by
// default or in its plain text form with ?format=text.
func GetDocsNav(manifest *docs.Manifest) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if c.Query("format") == "text" {
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.SendString(manifest.Render())
		}
		return c.JSON(manifest)
	}
}
