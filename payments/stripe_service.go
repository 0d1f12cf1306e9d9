package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	config "github.com/nmgtoursjam/tours-backend/configs"
	"github.com/nmgtoursjam/tours-backend/models"
)

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// formatAmountForStripe converts a decimal price to the gateway's smallest
// currency unit (cents for USD and the other currencies we sell in).
func formatAmountForStripe(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateCheckoutSession opens a hosted Stripe Checkout session for a
// pending booking. The booking id travels in the session metadata so the
// webhook can correlate the payment back to it.
func CreateCheckoutSession(booking *models.Booking, tour *models.Tour) (*CheckoutSession, error) {
	apiBase := config.ConfigOr("STRIPE_API_BASE_URL", "https://api.stripe.com")
	secretKey := config.Config("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not configured")
	}
	baseURL := config.ConfigOr("PUBLIC_BASE_URL", "http://localhost:3000")

	guestsWord := "guests"
	if booking.Guests == 1 {
		guestsWord = "guest"
	}
	description := fmt.Sprintf("%d %s • %s", booking.Guests, guestsWord,
		booking.TourDate.Format("Monday, January 2, 2006"))

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("customer_email", booking.GuestEmail)
	form.Set("client_reference_id", booking.ID.String())
	form.Set("line_items[0][quantity]", strconv.Itoa(booking.Guests))
	form.Set("line_items[0][price_data][currency]", strings.ToLower(tour.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(formatAmountForStripe(tour.Price), 10))
	form.Set("line_items[0][price_data][product_data][name]", tour.Title)
	form.Set("line_items[0][price_data][product_data][description]", description)
	form.Set("metadata[bookingId]", booking.ID.String())
	form.Set("metadata[tourId]", tour.ID.String())
	form.Set("success_url", fmt.Sprintf("%s/bookings/%s/success?session_id={CHECKOUT_SESSION_ID}", baseURL, booking.ID))
	form.Set("cancel_url", fmt.Sprintf("%s/tours/%s?booking_cancelled=true", baseURL, tour.Slug))

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/checkout/sessions", apiBase), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create checkout session: %s", string(respBody))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}
