package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nmgtoursjam/tours-backend/handlers"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Authenticated by signature verification, not by session.
	api.Post("/webhooks/stripe", handlers.HandleStripeWebhook)
}
