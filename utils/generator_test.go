package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGeneratorTest(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Booking{}))
	return db
}

func TestGenerateBookingNumberFormat(t *testing.T) {
	db := setupGeneratorTest(t)

	number, err := GenerateBookingNumber(db)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(number, "NMG-"))
	assert.Len(t, number, len("NMG-")+bookingNumberLength)
	for _, r := range strings.TrimPrefix(number, "NMG-") {
		assert.Contains(t, letterBytes, string(r))
	}
}

func TestGenerateBookingNumberConcurrentCallsAreDistinct(t *testing.T) {
	db := setupGeneratorTest(t)

	// Concurrent checkouts generate numbers at the same instant; each call
	// must still draw from an independent point in the random sequence.
	const workers = 8
	const perWorker = 25

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				number, err := GenerateBookingNumber(db)
				if err != nil {
					errs <- err
					return
				}
				mu.Lock()
				seen[number] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateBookingNumberAvoidsCollisions(t *testing.T) {
	db := setupGeneratorTest(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := GenerateBookingNumber(db)
		require.NoError(t, err)
		assert.False(t, seen[number])
		seen[number] = true

		booking := models.Booking{
			BookingNumber: number,
			UserID:        uuid.New(),
			TourID:        uuid.New(),
			Guests:        1,
			TotalPrice:    85,
			Currency:      "USD",
			GuestName:     "Test Guest",
			GuestEmail:    "guest@example.com",
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}
		require.NoError(t, db.Create(&booking).Error)
	}
}
