package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/noel1334/ums-backend-sub003/database"
	"github.com/noel1334/ums-backend-sub003/models"
	"github.com/noel1334/ums-backend-sub003/notifications"
	"github.com/noel1334/ums-backend-sub003/payments"
	"github.com/noel1334/ums-backend-sub003/services"
	"github.com/noel1334/ums-backend-sub003/websocket"
)

type PrepareBookingRequest struct {
	HostelID        uint       `json:"hostel_id" validate:"required"`
	RoomID          uint       `json:"room_id" validate:"required"`
	SeasonID        uint       `json:"season_id" validate:"required"`
	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`
}

func (r PrepareBookingRequest) quoteInput() services.QuoteInput {
	return services.QuoteInput{
		HostelID:        r.HostelID,
		RoomID:          r.RoomID,
		SeasonID:        r.SeasonID,
		CheckInDate:     r.CheckInDate,
		CheckOutDate:    r.CheckOutDate,
		PaymentDeadline: r.PaymentDeadline,
	}
}

// PrepareBooking validates every precondition and quotes the amount due.
// Nothing is persisted; the client takes the intent to a gateway next.
func PrepareBooking(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req PrepareBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	intent, err := bookingSvc.PrepareQuote(c.Context(), actor.ID, req.quoteInput())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"intent":     intent,
		"amount_due": intent.AmountDue,
	})
}

// CreatePaymentSession re-quotes server-side, runs the advisory
// admission check and opens a hosted card-gateway session carrying the
// intent as metadata.
func CreatePaymentSession(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req PrepareBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	intent, err := bookingSvc.PrepareQuote(c.Context(), actor.ID, req.quoteInput())
	if err != nil {
		return respondError(c, err)
	}

	admitted, err := bookingSvc.Admit(c.Context(), intent.RoomID, intent.SeasonID)
	if err != nil {
		return respondError(c, err)
	}
	if !admitted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Room is no longer available"})
	}

	reference := uuid.New().String()
	session, err := payments.CreateCheckoutSession(intent.AmountDue, "NGN", reference, intent.Metadata())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id":   session.ID,
		"reference":    reference,
		"checkout_url": session.URL,
	})
}

// CompletePayment finishes the card-gateway path: the session id is
// verified with the gateway and reconciled into a paid booking. Safe to
// call any number of times for the same session.
func CompletePayment(c *fiber.Ctx) error {
	type CompleteRequest struct {
		SessionID string `json:"session_id" validate:"required"`
	}
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := bookingSvc.CompleteGatewayPayment(c.Context(), payments.StripeVerifier{}, req.SessionID, nil)
	if err != nil {
		return respondError(c, err)
	}

	return finishCompletion(c, result)
}

type ProcessorVerifyRequest struct {
	Reference       string     `json:"reference" validate:"required"`
	HostelID        uint       `json:"hostel_id" validate:"required"`
	RoomID          uint       `json:"room_id" validate:"required"`
	SeasonID        uint       `json:"season_id" validate:"required"`
	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
}

func verifyWithProcessor(c *fiber.Ctx, verifier payments.Verifier) error {
	actor := currentActor(c)

	var req ProcessorVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// These processors cannot carry server-side metadata, so the intent
	// arrives in the body and is re-derived here before reconciliation.
	intent, err := bookingSvc.RebuildIntent(actor.ID, services.QuoteInput{
		HostelID:     req.HostelID,
		RoomID:       req.RoomID,
		SeasonID:     req.SeasonID,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
	})
	if err != nil {
		return respondError(c, err)
	}

	result, err := bookingSvc.CompleteGatewayPayment(c.Context(), verifier, req.Reference, intent)
	if err != nil {
		return respondError(c, err)
	}

	return finishCompletion(c, result)
}

func VerifyPaystackPayment(c *fiber.Ctx) error {
	return verifyWithProcessor(c, payments.PaystackVerifier{})
}

func VerifyFlutterwavePayment(c *fiber.Ctx) error {
	return verifyWithProcessor(c, payments.FlutterwaveVerifier{})
}

func finishCompletion(c *fiber.Ctx, result *services.CompletionResult) error {
	if !result.Replayed {
		go services.GenerateReceiptPDF(result.Receipt.ID)

		var student models.User
		if err := database.DB.First(&student, result.Booking.StudentID).Error; err == nil {
			go notifications.SendEmail(student.FullName, student.Email,
				"Your Hostel Booking is Confirmed!",
				"<h1>Booking Confirmed</h1><p>Your payment was received and your room is secured. Your receipt will be available shortly.</p>")
		}

		websocket.Publish(&websocket.BookingEvent{
			Type:      "booking_paid",
			BookingID: result.Booking.ID,
			StudentID: result.Booking.StudentID,
			RoomID:    result.Booking.RoomID,
			SeasonID:  result.Booking.SeasonID,
			Status:    result.Booking.Status,
		})
	}

	status := fiber.StatusCreated
	if result.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"receipt": result.Receipt,
		"booking": result.Booking,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	actor := currentActor(c)

	var bookings []models.Booking
	err := database.DB.
		Preload("Hostel").
		Preload("Room").
		Preload("Season").
		Where("student_id = ?", actor.ID).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	actor := currentActor(c)
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var booking models.Booking
	if err := database.DB.
		Preload("Student").
		Preload("Hostel").
		Preload("Room").
		Preload("Season").
		First(&booking, bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if !actor.IsStaff() && booking.StudentID != actor.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}

	return c.JSON(booking)
}

func ListBookings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.Booking{}).
		Preload("Student").
		Preload("Hostel").
		Preload("Room").
		Preload("Season")

	if seasonID := c.Query("season_id"); seasonID != "" {
		query = query.Where("season_id = ?", seasonID)
	}
	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"bookings": bookings, "total": total, "page": page})
}

// GetMyRoommates lists the other students holding a paid, active booking
// in the caller's room for the season.
func GetMyRoommates(c *fiber.Ctx) error {
	actor := currentActor(c)
	seasonID := c.Query("season_id")
	if seasonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "season_id query parameter is required"})
	}

	var mine models.Booking
	err := database.DB.
		Where("student_id = ? AND season_id = ? AND status = ? AND is_active = ?",
			actor.ID, seasonID, models.BookingStatusPaid, true).
		First(&mine).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "You have no paid booking for this season"})
	}

	var roommates []models.Booking
	err = database.DB.
		Preload("Student").
		Where("room_id = ? AND season_id = ? AND status = ? AND is_active = ? AND student_id <> ?",
			mine.RoomID, seasonID, models.BookingStatusPaid, true, actor.ID).
		Find(&roommates).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch roommates"})
	}

	return c.JSON(roommates)
}

func CancelBooking(c *fiber.Ctx) error {
	actor := currentActor(c)
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := bookingSvc.CancelBooking(c.Context(), actor, uint(bookingID))
	if err != nil {
		return respondError(c, err)
	}

	websocket.Publish(&websocket.BookingEvent{
		Type:      "booking_cancelled",
		BookingID: booking.ID,
		StudentID: booking.StudentID,
		RoomID:    booking.RoomID,
		SeasonID:  booking.SeasonID,
		Status:    booking.Status,
	})

	return c.JSON(fiber.Map{"message": "Booking cancelled", "booking": booking})
}

func OverrideBookingStatus(c *fiber.Ctx) error {
	type StatusRequest struct {
		Status string `json:"status" validate:"required"`
	}
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := bookingSvc.OverrideStatus(c.Context(), uint(bookingID), req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Booking status updated", "booking": booking})
}

type ApplyPaymentRequest struct {
	StudentID     uint    `json:"student_id,omitempty"`
	SeasonID      uint    `json:"season_id,omitempty"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Provider      string  `json:"provider,omitempty" validate:"omitempty,oneof=bank_transfer stripe paystack flutterwave"`
	Reference     string  `json:"reference,omitempty"`
	ProviderTxnID *string `json:"provider_txn_id,omitempty"`
}

// ApplyBookingPayment records a manual/administrative payment increment
// against an existing booking.
func ApplyBookingPayment(c *fiber.Ctx) error {
	actor := currentActor(c)
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req ApplyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	receipt, booking, err := bookingSvc.ApplyPayment(actor, uint(bookingID), services.LedgerInput{
		StudentID:     req.StudentID,
		SeasonID:      req.SeasonID,
		Amount:        req.Amount,
		Provider:      req.Provider,
		Reference:     req.Reference,
		ProviderTxnID: req.ProviderTxnID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"receipt": receipt,
		"booking": booking,
		"balance": booking.Balance(),
	})
}

func DeletePendingPayment(c *fiber.Ctx) error {
	receiptID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	if err := bookingSvc.DeletePendingReceipt(c.Context(), uint(receiptID)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Pending payment record deleted"})
}

type AllocateBookingRequest struct {
	StudentID       uint       `json:"student_id" validate:"required"`
	HostelID        uint       `json:"hostel_id" validate:"required"`
	RoomID          uint       `json:"room_id" validate:"required"`
	SeasonID        uint       `json:"season_id" validate:"required"`
	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
	PaymentDeadline *time.Time `json:"payment_deadline" validate:"required"`
}

// AllocateBooking lets staff reserve a room for a student ahead of
// payment. The booking starts PENDING and is settled through the
// payment ledger.
func AllocateBooking(c *fiber.Ctx) error {
	var req AllocateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := bookingSvc.AllocateBooking(c.Context(), req.StudentID, services.QuoteInput{
		HostelID:        req.HostelID,
		RoomID:          req.RoomID,
		SeasonID:        req.SeasonID,
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		PaymentDeadline: req.PaymentDeadline,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.Publish(&websocket.BookingEvent{
		Type:      "booking_allocated",
		BookingID: booking.ID,
		StudentID: booking.StudentID,
		RoomID:    booking.RoomID,
		SeasonID:  booking.SeasonID,
		Status:    booking.Status,
	})

	return c.Status(fiber.StatusCreated).JSON(booking)
}
