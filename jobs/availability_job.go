package jobs

import (
	"log"
	"strconv"
	"time"

	config "github.com/nmgtoursjam/tours-backend/configs"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/nmgtoursjam/tours-backend/services"
)

const defaultHorizonDays = 90

// GenerateAvailability batch-creates the per-day ledger rows every active
// tour needs for the booking horizon. Existing rows are left untouched, so
// the job is safe to run daily. Daily capacity is one departure, i.e. the
// tour's maximum group size.
func GenerateAvailability() {
	log.Println("Running job: GenerateAvailability...")

	horizon := defaultHorizonDays
	if raw := config.Config("AVAILABILITY_HORIZON_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			horizon = parsed
		}
	}

	var tours []models.Tour
	if err := database.DB.Where("is_active = ?", true).Find(&tours).Error; err != nil {
		log.Printf("🔥 Failed to load active tours: %v", err)
		return
	}

	today := services.Day(time.Now())
	created := 0
	for _, tour := range tours {
		for offset := 0; offset < horizon; offset++ {
			date := today.AddDate(0, 0, offset)

			slot := models.Availability{
				TourID: tour.ID,
				Date:   date,
				Slots:  tour.MaxGroupSize,
			}
			res := database.DB.
				Where("tour_id = ? AND date = ?", tour.ID, date).
				FirstOrCreate(&slot)
			if res.Error != nil {
				log.Printf("🔥 Failed to create availability for tour %s on %s: %v",
					tour.Slug, date.Format("2006-01-02"), res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				created++
			}
		}
	}

	if created > 0 {
		log.Printf("✅ Created %d availability rows for %d tours", created, len(tours))
	}
}
