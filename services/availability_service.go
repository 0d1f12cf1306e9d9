package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"gorm.io/gorm"
)

// Day truncates a timestamp to its UTC calendar date. Availability is kept
// at day granularity, so every date that touches the ledger goes through
// this first.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetAvailability returns the ledger row for one (tour, date) pair.
func GetAvailability(tourID uuid.UUID, date time.Time) (*models.Availability, error) {
	var slot models.Availability
	err := database.DB.Where("tour_id = ? AND date = ?", tourID, Day(date)).First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetAvailabilityRange returns all ledger rows for a tour within the
// inclusive date range, ordered by date ascending. No rows is an empty
// slice, not an error.
func GetAvailabilityRange(tourID uuid.UUID, start, end time.Time) ([]models.Availability, error) {
	var slots []models.Availability
	err := database.DB.
		Where("tour_id = ? AND date >= ? AND date <= ?", tourID, Day(start), Day(end)).
		Order("date asc").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// RemainingCapacity is the number of places still bookable on a slot. A
// blocked slot has zero remaining capacity no matter what the counters say.
func RemainingCapacity(slot *models.Availability) int {
	if slot.IsBlocked {
		return 0
	}
	return slot.Slots - slot.Booked
}

// CanCommit reports whether guests places can be taken on (tour, date).
// Fails closed: a missing slot row means not bookable.
func CanCommit(tourID uuid.UUID, date time.Time, guests int) bool {
	slot, err := GetAvailability(tourID, date)
	if err != nil {
		return false
	}
	return guests <= RemainingCapacity(slot)
}

// CommitSlots takes guests places on (tour, date) as one conditional
// UPDATE, so two requests racing for the last places cannot both win. When
// the condition does not hold (slot gone, blocked, or not enough room) it
// returns a CapacityError carrying whatever remains.
func CommitSlots(tx *gorm.DB, tourID uuid.UUID, date time.Time, guests int) error {
	res := tx.Model(&models.Availability{}).
		Where("tour_id = ? AND date = ? AND is_blocked = ? AND booked + ? <= slots",
			tourID, Day(date), false, guests).
		Update("booked", gorm.Expr("booked + ?", guests))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		remaining := 0
		if slot, err := GetAvailability(tourID, date); err == nil {
			remaining = RemainingCapacity(slot)
		}
		return &CapacityError{Remaining: remaining}
	}
	return nil
}

// ReleaseSlots gives guests places back to (tour, date). The counter is
// floored at zero and a missing slot row is a no-op: payment webhooks are
// delivered at least once, so duplicate and late releases are expected and
// must reconcile silently.
func ReleaseSlots(tx *gorm.DB, tourID uuid.UUID, date time.Time, guests int) error {
	res := tx.Model(&models.Availability{}).
		Where("tour_id = ? AND date = ?", tourID, Day(date)).
		Update("booked", gorm.Expr("CASE WHEN booked >= ? THEN booked - ? ELSE 0 END", guests, guests))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("No availability row for tour %s on %s, release of %d slots skipped",
			tourID, Day(date).Format("2006-01-02"), guests)
	}
	return nil
}

// BlockDate and UnblockDate flip the operator kill switch on a date.
// Blocking does not touch existing commitments, it only stops new ones.
func BlockDate(availabilityID uuid.UUID) error {
	return setBlocked(availabilityID, true)
}

func UnblockDate(availabilityID uuid.UUID) error {
	return setBlocked(availabilityID, false)
}

func setBlocked(availabilityID uuid.UUID, blocked bool) error {
	res := database.DB.Model(&models.Availability{}).
		Where("id = ?", availabilityID).
		Update("is_blocked", blocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is the datastore's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
