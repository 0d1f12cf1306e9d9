package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/nmgtoursjam/tours-backend/payments"
	"github.com/nmgtoursjam/tours-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test_secret"

func setupWebhookTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tour{},
		&models.Availability{},
		&models.Booking{},
	))
	database.DB = db

	app := fiber.New()
	app.Post("/api/v1/webhooks/stripe", HandleStripeWebhook)
	return app, db
}

func seedPendingBooking(t *testing.T, db *gorm.DB, guests int) (*models.Booking, *models.Availability) {
	t.Helper()

	category := models.Category{Name: "Rafting Tours", Slug: "rafting-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&category).Error)

	tour := models.Tour{
		CategoryID:   category.ID,
		Title:        "Martha Brae Rafting Experience",
		Slug:         "martha-brae-" + uuid.NewString()[:8],
		Description:  "Bamboo rafting on the Martha Brae River",
		Price:        85,
		Currency:     "USD",
		Duration:     2,
		MaxGroupSize: 10,
		MeetingPoint: "Martha Brae Village, Trelawny",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&tour).Error)

	date := services.Day(time.Now().AddDate(0, 0, 7))
	slot := models.Availability{TourID: tour.ID, Date: date, Slots: 10, Booked: guests}
	require.NoError(t, db.Create(&slot).Error)

	booking := models.Booking{
		BookingNumber: "NMG-" + uuid.NewString()[:8],
		UserID:        uuid.New(),
		TourID:        tour.ID,
		TourDate:      date,
		Guests:        guests,
		TotalPrice:    85 * float64(guests),
		Currency:      "USD",
		GuestName:     "Alicia Brown",
		GuestEmail:    "alicia@example.com",
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&booking).Error)
	return &booking, &slot
}

func postEvent(t *testing.T, app *fiber.App, event map[string]interface{}, sign bool) *http.Response {
	t.Helper()

	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		now := time.Now()
		req.Header.Set("Stripe-Signature",
			fmt.Sprintf("t=%d,v1=%s", now.Unix(), payments.ComputeSignature(now, body, webhookSecret)))
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func checkoutCompletedEvent(bookingID, paymentIntent string) map[string]interface{} {
	object := map[string]interface{}{
		"id":             "cs_test_123",
		"payment_intent": paymentIntent,
	}
	if bookingID != "" {
		object["metadata"] = map[string]string{"bookingId": bookingID}
	}
	return map[string]interface{}{
		"id":   "evt_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{"object": object},
	}
}

func reloadWebhookBooking(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Booking {
	t.Helper()
	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", id).Error)
	return &booking
}

func TestWebhookRejectsUnsignedEvent(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, _ := seedPendingBooking(t, db, 2)

	resp := postEvent(t, app, checkoutCompletedEvent(booking.ID.String(), "pi_123"), false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// No state was touched.
	assert.Equal(t, models.BookingStatusPending, reloadWebhookBooking(t, db, booking.ID).Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, _ := seedPendingBooking(t, db, 2)

	body, err := json.Marshal(checkoutCompletedEvent(booking.ID.String(), "pi_123"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=deadbeef", time.Now().Unix()))

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.BookingStatusPending, reloadWebhookBooking(t, db, booking.ID).Status)
}

func TestWebhookCheckoutCompletedConfirmsBooking(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, _ := seedPendingBooking(t, db, 2)

	resp := postEvent(t, app, checkoutCompletedEvent(booking.ID.String(), "pi_123"), true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	confirmed := reloadWebhookBooking(t, db, booking.ID)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentStatusSucceeded, confirmed.PaymentStatus)
	require.NotNil(t, confirmed.PaymentIntentID)
	assert.Equal(t, "pi_123", *confirmed.PaymentIntentID)
}

func TestWebhookMissingMetadataIsAcknowledged(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, _ := seedPendingBooking(t, db, 2)

	resp := postEvent(t, app, checkoutCompletedEvent("", "pi_123"), true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.BookingStatusPending, reloadWebhookBooking(t, db, booking.ID).Status)
}

func TestWebhookUnknownEventTypeIsAcknowledged(t *testing.T) {
	app, _ := setupWebhookTest(t)

	event := map[string]interface{}{
		"id":   "evt_2",
		"type": "customer.subscription.created",
		"data": map[string]interface{}{"object": map[string]interface{}{}},
	}
	resp := postEvent(t, app, event, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookPaymentFailedReleasesCapacity(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, slot := seedPendingBooking(t, db, 3)

	event := map[string]interface{}{
		"id":   "evt_3",
		"type": "payment_intent.payment_failed",
		"data": map[string]interface{}{"object": map[string]interface{}{
			"id":       "pi_123",
			"metadata": map[string]string{"bookingId": booking.ID.String()},
		}},
	}
	resp := postEvent(t, app, event, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	failed := reloadWebhookBooking(t, db, booking.ID)
	assert.Equal(t, models.BookingStatusCancelled, failed.Status)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)

	var reloaded models.Availability
	require.NoError(t, db.First(&reloaded, "id = ?", slot.ID).Error)
	assert.Equal(t, 0, reloaded.Booked)
}

func TestWebhookChargeRefundedTwice(t *testing.T) {
	app, db := setupWebhookTest(t)
	booking, slot := seedPendingBooking(t, db, 2)

	resp := postEvent(t, app, checkoutCompletedEvent(booking.ID.String(), "pi_123"), true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	refundEvent := map[string]interface{}{
		"id":   "evt_4",
		"type": "charge.refunded",
		"data": map[string]interface{}{"object": map[string]interface{}{
			"id":              "ch_123",
			"payment_intent":  "pi_123",
			"amount_refunded": 17000,
			"refunded":        true,
		}},
	}

	resp = postEvent(t, app, refundEvent, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	refunded := reloadWebhookBooking(t, db, booking.ID)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)
	require.NotNil(t, refunded.RefundAmount)
	assert.Equal(t, 170.0, *refunded.RefundAmount)

	var reloaded models.Availability
	require.NoError(t, db.First(&reloaded, "id = ?", slot.ID).Error)
	assert.Equal(t, 0, reloaded.Booked)

	// Duplicate delivery: acknowledged, ledger untouched.
	resp = postEvent(t, app, refundEvent, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, db.First(&reloaded, "id = ?", slot.ID).Error)
	assert.Equal(t, 0, reloaded.Booked)
	assert.Equal(t, models.PaymentStatusRefunded, reloadWebhookBooking(t, db, booking.ID).PaymentStatus)
}

func TestWebhookRefundForUnknownIntentIsAcknowledged(t *testing.T) {
	app, _ := setupWebhookTest(t)

	event := map[string]interface{}{
		"id":   "evt_5",
		"type": "charge.refunded",
		"data": map[string]interface{}{"object": map[string]interface{}{
			"id":              "ch_999",
			"payment_intent":  "pi_unknown",
			"amount_refunded": 5000,
			"refunded":        true,
		}},
	}
	resp := postEvent(t, app, event, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
