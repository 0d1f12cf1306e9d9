package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tour{},
		&models.Availability{},
		&models.Booking{},
	)
	require.NoError(t, err)

	database.DB = db
	return db
}

func createTestTour(t *testing.T, db *gorm.DB, maxGroupSize int, price float64) *models.Tour {
	t.Helper()

	category := models.Category{Name: "Rafting Tours", Slug: "rafting-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&category).Error)

	tour := models.Tour{
		CategoryID:   category.ID,
		Title:        "Martha Brae Rafting Experience",
		Slug:         "martha-brae-" + uuid.NewString()[:8],
		Description:  "Bamboo rafting on the Martha Brae River",
		Price:        price,
		Currency:     "USD",
		Duration:     2,
		MaxGroupSize: maxGroupSize,
		Difficulty:   "EASY",
		MeetingPoint: "Martha Brae Village, Trelawny",
		City:         "Falmouth",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&tour).Error)
	return &tour
}

func createTestSlot(t *testing.T, db *gorm.DB, tourID uuid.UUID, date time.Time, slots, booked int, blocked bool) *models.Availability {
	t.Helper()

	slot := models.Availability{
		TourID:    tourID,
		Date:      Day(date),
		Slots:     slots,
		Booked:    booked,
		IsBlocked: blocked,
	}
	require.NoError(t, db.Create(&slot).Error)
	return &slot
}

func reloadSlot(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Availability {
	t.Helper()

	var slot models.Availability
	require.NoError(t, db.First(&slot, "id = ?", id).Error)
	return &slot
}

func reloadBooking(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Booking {
	t.Helper()

	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", id).Error)
	return &booking
}
