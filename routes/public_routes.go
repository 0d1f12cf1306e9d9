package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nmgtoursjam/tours-backend/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/tours", handlers.ListTours)
	api.Get("/tours/:idOrSlug", handlers.GetTour)
	api.Get("/categories", handlers.ListCategories)
	api.Get("/availability", handlers.GetAvailability)
}
