package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/nmgtoursjam/tours-backend/configs"
)

type ResendService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

var EmailClient *ResendService

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func InitEmailService() {
	apiKey := config.Config("RESEND_API_KEY")
	senderEmail := config.ConfigOr("EMAIL_FROM", "noreply@nmgtoursjam.com")
	senderName := config.ConfigOr("EMAIL_SENDER_NAME", "NMG Tours Jamaica")

	if apiKey == "" {
		log.Println("⚠️ Email service not configured. Missing RESEND_API_KEY.")
		EmailClient = nil
		return
	}

	EmailClient = &ResendService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
	log.Println("✅ Email service initialized successfully.")
}

func (s *ResendService) send(toEmail, subject, htmlContent string) error {
	url := "https://api.resend.com/emails"

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	payload := resendPayload{
		From:    fmt.Sprintf("%s <%s>", s.SenderName, s.SenderEmail),
		To:      []string{toEmail},
		Subject: subject,
		HTML:    htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Resend API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("failed to send email via Resend: %s", string(bodyBytes))
	}

	return nil
}

// BookingConfirmation is everything the confirmation email needs, already
// formatted for display.
type BookingConfirmation struct {
	CustomerName  string
	CustomerEmail string
	BookingNumber string
	TourTitle     string
	TourDate      string
	Guests        int
	TotalPrice    string
	MeetingPoint  string
}

// SendBookingConfirmation emails the guest their booking details. Best
// effort: a delivery failure is logged, never propagated, so it can never
// undo a confirmation.
func SendBookingConfirmation(data BookingConfirmation) {
	if EmailClient == nil {
		log.Println("Email client not initialized, skipping email send.")
		return
	}

	guestsWord := "people"
	if data.Guests == 1 {
		guestsWord = "person"
	}

	htmlContent := fmt.Sprintf(`
		<h1>🎉 Booking Confirmed!</h1>
		<p>Dear %s,</p>
		<p>Thank you for booking with NMG Tours Jamaica! Your tour has been confirmed.</p>
		<h2>Booking Details</h2>
		<ul>
			<li><b>Booking Number:</b> %s</li>
			<li><b>Tour:</b> %s</li>
			<li><b>Date:</b> %s</li>
			<li><b>Guests:</b> %d %s</li>
			<li><b>Total Paid:</b> %s</li>
			<li><b>Meeting Point:</b> %s</li>
		</ul>
		<p>Please bring this confirmation (printed or on your phone) and a valid ID.</p>
		<p>See you soon!<br>The NMG Tours Jamaica Team</p>`,
		data.CustomerName, data.BookingNumber, data.TourTitle, data.TourDate,
		data.Guests, guestsWord, data.TotalPrice, data.MeetingPoint)

	subject := fmt.Sprintf("Booking Confirmed - %s", data.BookingNumber)

	if err := EmailClient.send(data.CustomerEmail, subject, htmlContent); err != nil {
		log.Printf("🔥 Failed to send confirmation email to %s: %v", data.CustomerEmail, err)
		return
	}

	log.Printf("✅ Confirmation email sent to %s for booking %s", data.CustomerEmail, data.BookingNumber)
}
