package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/nmgtoursjam/tours-backend/configs"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
)

// GenerateBookingVoucher renders a printable PDF voucher for a confirmed
// booking and stores its upload URL on the booking. Best effort: the
// confirmation stands whether or not the voucher could be produced.
func GenerateBookingVoucher(bookingID uuid.UUID) {
	if config.Config("CLOUDINARY_URL") == "" {
		log.Println("Cloudinary not configured, skipping voucher generation.")
		return
	}

	var booking models.Booking
	if err := database.DB.Preload("Tour").First(&booking, "id = ?", bookingID).Error; err != nil {
		log.Printf("🔥 Voucher: booking %s not found: %v", bookingID, err)
		return
	}
	if booking.VoucherURL != nil {
		return
	}

	htmlData, err := generateVoucherHTML(booking)
	if err != nil {
		log.Printf("🔥 Failed to generate voucher HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate voucher PDF: %v", err)
		return
	}

	uploadURL, err := uploadVoucherToCloudinary(pdfBytes, booking.BookingNumber)
	if err != nil {
		log.Printf("🔥 Failed to upload voucher to Cloudinary: %v", err)
		return
	}

	if err := database.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("voucher_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to save voucher URL for booking %s: %v", booking.BookingNumber, err)
		return
	}

	log.Printf("✅ Generated voucher for booking %s", booking.BookingNumber)
}

func generateVoucherHTML(booking models.Booking) (string, error) {
	tmpl, err := template.ParseFiles("templates/voucher.html")
	if err != nil {
		return "", err
	}

	data := struct {
		GuestName     string
		BookingNumber string
		TourTitle     string
		TourDate      string
		Guests        int
		TotalPrice    string
		MeetingPoint  string
		City          string
	}{
		GuestName:     booking.GuestName,
		BookingNumber: booking.BookingNumber,
		TourTitle:     booking.Tour.Title,
		TourDate:      booking.TourDate.Format("Monday, January 2, 2006"),
		Guests:        booking.Guests,
		TotalPrice:    fmt.Sprintf("%s $%.2f", booking.Currency, booking.TotalPrice),
		MeetingPoint:  booking.Tour.MeetingPoint,
		City:          booking.Tour.City,
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadVoucherToCloudinary(fileBytes []byte, bookingNumber string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("vouchers/%s", bookingNumber),
		Folder:       "nmg_tours_vouchers",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
