package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nmgtoursjam/tours-backend/handlers"
	"github.com/nmgtoursjam/tours-backend/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/bookings", handlers.ListBookings)
	admin.Patch("/availability/:availabilityId/block", handlers.BlockDate)
	admin.Patch("/availability/:availabilityId/unblock", handlers.UnblockDate)
	admin.Get("/uploads/signature", handlers.GenerateUploadSignature)
}
