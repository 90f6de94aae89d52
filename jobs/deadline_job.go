package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/noel1334/ums-backend-sub003/database"
	"github.com/noel1334/ums-backend-sub003/models"
	"github.com/noel1334/ums-backend-sub003/notifications"
)

// SendPaymentDeadlineReminders emails students whose pending or partly
// paid bookings expire within the next 24 hours. Read-only over the
// booking tables; the job never mutates payment state.
func SendPaymentDeadlineReminders() {
	log.Println("Running job: SendPaymentDeadlineReminders...")

	now := time.Now()
	upperBound := now.Add(24 * time.Hour)

	var expiring []models.Booking
	err := database.DB.
		Preload("Student").
		Preload("Hostel").
		Preload("Room").
		Where("status IN ? AND is_active = ? AND payment_deadline BETWEEN ? AND ?",
			[]string{models.BookingStatusPending, models.BookingStatusPartial}, true, now, upperBound).
		Find(&expiring).Error
	if err != nil {
		log.Printf("Error checking for expiring bookings: %v", err)
		return
	}

	if len(expiring) == 0 {
		return
	}

	for _, booking := range expiring {
		log.Printf("Sending payment deadline reminder for booking ID: %d", booking.ID)

		emailSubject := "Reminder: Your Hostel Booking Payment Is Due Soon"
		emailBody := fmt.Sprintf(
			"<h1>Payment Reminder</h1><p>Hi %s,</p><p>Your booking for room %s in %s is still unpaid. The outstanding balance of %.2f is due by %s. Unpaid bookings are released after the deadline.</p>",
			booking.Student.FullName,
			booking.Room.Number,
			booking.Hostel.Name,
			booking.Balance(),
			booking.PaymentDeadline.Format("January 2, 2006 15:04"),
		)

		go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, emailSubject, emailBody)
	}
}
