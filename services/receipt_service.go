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
	config "github.com/noel1334/ums-backend-sub003/configs"
	"github.com/noel1334/ums-backend-sub003/database"
	"github.com/noel1334/ums-backend-sub003/models"
)

// GenerateReceiptPDF renders a payment receipt to PDF, uploads it and
// stores the hosted URL on the receipt row. Called in a goroutine after
// a successful commit; failures are logged and never surface to the
// student, the booking is already safe in the database.
func GenerateReceiptPDF(receiptID uint) {
	var receipt models.PaymentReceipt
	err := database.DB.Preload("Student").Preload("Booking").
		Preload("Booking.Hostel").Preload("Booking.Room").Preload("Booking.Season").
		First(&receipt, receiptID).Error
	if err != nil {
		log.Printf("🔥 Receipt %d not found for PDF generation: %v", receiptID, err)
		return
	}

	htmlData, err := renderReceiptHTML(&receipt)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for receipt %d: %v", receiptID, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for receipt %d: %v", receiptID, err)
		return
	}

	uploadURL, err := uploadReceiptToCloudinary(pdfBytes, receipt.Reference)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt %d to Cloudinary: %v", receiptID, err)
		return
	}

	if err := database.DB.Model(&receipt).Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to store receipt URL for receipt %d: %v", receiptID, err)
		return
	}
	log.Printf("✅ Generated receipt PDF for payment %s.", receipt.Reference)
}

func renderReceiptHTML(receipt *models.PaymentReceipt) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName string
		Reference   string
		Provider    string
		Hostel      string
		Room        string
		Season      string
		AmountPaid  string
		PaidAt      string
	}{
		StudentName: receipt.Student.FullName,
		Reference:   receipt.Reference,
		Provider:    receipt.Provider,
		Hostel:      receipt.Booking.Hostel.Name,
		Room:        receipt.Booking.Room.Number,
		Season:      receipt.Booking.Season.Name,
		AmountPaid:  fmt.Sprintf("%.2f", receipt.AmountPaid),
		PaidAt:      receipt.CreatedAt.Format("January 2, 2006 15:04"),
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

func uploadReceiptToCloudinary(fileBytes []byte, reference string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", reference, uuid.New().String()),
		Folder:       "hostel_payment_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
