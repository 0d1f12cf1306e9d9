package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	config "github.com/nmgtoursjam/tours-backend/configs"
	"github.com/nmgtoursjam/tours-backend/payments"
	"github.com/nmgtoursjam/tours-backend/services"
)

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSessionObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

type paymentIntentObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

type chargeObject struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Refunded       bool   `json:"refunded"`
}

// HandleStripeWebhook is the inbound side of the payment gateway. Events
// are delivered at least once and possibly out of order, so every handler
// branch below is idempotent and a payload we cannot use is still
// acknowledged. The only rejection is a signature that does not verify.
func HandleStripeWebhook(c *fiber.Ctx) error {
	body := c.Body()

	secret := config.Config("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("🔥 STRIPE_WEBHOOK_SECRET not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook secret not configured"})
	}

	signature := c.Get("Stripe-Signature")
	if err := payments.VerifySignature(body, signature, secret, payments.DefaultTolerance); err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	var err error
	switch event.Type {
	case "checkout.session.completed":
		err = handleCheckoutCompleted(event.Data.Object)
	case "payment_intent.succeeded":
		err = handlePaymentSucceeded(event.Data.Object)
	case "payment_intent.payment_failed":
		err = handlePaymentFailed(event.Data.Object)
	case "charge.refunded":
		err = handleChargeRefunded(event.Data.Object)
	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("🔥 Error processing webhook event %s (%s): %v", event.ID, event.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}

	return c.JSON(fiber.Map{"received": true})
}

func bookingIDFromMetadata(metadata map[string]string) (uuid.UUID, bool) {
	raw, ok := metadata["bookingId"]
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func handleCheckoutCompleted(object json.RawMessage) error {
	var session checkoutSessionObject
	if err := json.Unmarshal(object, &session); err != nil {
		return err
	}

	bookingID, ok := bookingIDFromMetadata(session.Metadata)
	if !ok {
		log.Println("No bookingId in checkout session metadata, dropping event")
		return nil
	}

	return services.ConfirmBooking(bookingID, session.PaymentIntent)
}

func handlePaymentSucceeded(object json.RawMessage) error {
	var intent paymentIntentObject
	if err := json.Unmarshal(object, &intent); err != nil {
		return err
	}

	bookingID, ok := bookingIDFromMetadata(intent.Metadata)
	if !ok {
		log.Println("No bookingId in payment intent metadata, dropping event")
		return nil
	}

	// Usually arrives after checkout.session.completed; ConfirmBooking is
	// idempotent so the second arrival is harmless.
	return services.ConfirmBooking(bookingID, intent.ID)
}

func handlePaymentFailed(object json.RawMessage) error {
	var intent paymentIntentObject
	if err := json.Unmarshal(object, &intent); err != nil {
		return err
	}

	bookingID, ok := bookingIDFromMetadata(intent.Metadata)
	if !ok {
		log.Println("No bookingId in payment intent metadata, dropping event")
		return nil
	}

	return services.FailBooking(bookingID)
}

func handleChargeRefunded(object json.RawMessage) error {
	var charge chargeObject
	if err := json.Unmarshal(object, &charge); err != nil {
		return err
	}

	if charge.PaymentIntent == "" {
		log.Println("No payment intent in refunded charge, dropping event")
		return nil
	}

	booking, err := services.GetBookingByPaymentIntent(charge.PaymentIntent)
	if err != nil {
		if services.IsNotFound(err) {
			log.Printf("No booking found for payment intent %s, dropping event", charge.PaymentIntent)
			return nil
		}
		return err
	}

	// Amounts are in the smallest currency unit. The gateway's refunded
	// flag says whether the whole charge came back.
	refundAmount := float64(charge.AmountRefunded) / 100
	return services.RefundBooking(booking.ID, refundAmount, charge.Refunded)
}
