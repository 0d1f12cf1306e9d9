package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/services"
)

// GetAvailability returns a tour's per-day availability for an inclusive
// date range (defaults to the next 30 days). Days with no ledger row are
// simply absent from the answer.
func GetAvailability(c *fiber.Ctx) error {
	tourID, err := uuid.Parse(c.Query("tour_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid tour_id"})
	}

	start := time.Now().UTC()
	end := start.AddDate(0, 0, 30)

	if s := c.Query("start"); s != "" {
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be YYYY-MM-DD"})
		}
	}
	if e := c.Query("end"); e != "" {
		end, err = time.Parse("2006-01-02", e)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be YYYY-MM-DD"})
		}
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must not be before start"})
	}

	slots, err := services.GetAvailabilityRange(tourID, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch availability"})
	}

	type dayAvailability struct {
		Date      string `json:"date"`
		Slots     int    `json:"slots"`
		Booked    int    `json:"booked"`
		Remaining int    `json:"remaining"`
		IsBlocked bool   `json:"is_blocked"`
	}

	days := make([]dayAvailability, 0, len(slots))
	for i := range slots {
		days = append(days, dayAvailability{
			Date:      slots[i].Date.Format("2006-01-02"),
			Slots:     slots[i].Slots,
			Booked:    slots[i].Booked,
			Remaining: services.RemainingCapacity(&slots[i]),
			IsBlocked: slots[i].IsBlocked,
		})
	}

	return c.JSON(fiber.Map{"availability": days, "count": len(days)})
}
