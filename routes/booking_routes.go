package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noel1334/ums-backend-sub003/handlers"
	"github.com/noel1334/ums-backend-sub003/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/my-bookings", handlers.GetMyBookings)
	booking.Get("/my-roommates", handlers.GetMyRoommates)
	booking.Post("/prepare", middleware.StudentRequired(), handlers.PrepareBooking)
	booking.Post("/payment-session", middleware.StudentRequired(), handlers.CreatePaymentSession)
	booking.Post("/complete-payment", handlers.CompletePayment)
	booking.Post("/verify-paystack", middleware.StudentRequired(), handlers.VerifyPaystackPayment)
	booking.Post("/verify-flutterwave", middleware.StudentRequired(), handlers.VerifyFlutterwavePayment)
	booking.Post("/allocate", middleware.StaffRequired(), handlers.AllocateBooking)
	booking.Patch("/cancel/:id", handlers.CancelBooking)
	booking.Delete("/payments/pending/:id", middleware.StaffRequired(), handlers.DeletePendingPayment)
	booking.Get("", middleware.StaffRequired(), handlers.ListBookings)
	booking.Post("/:id/payments", handlers.ApplyBookingPayment)
	booking.Patch("/:id/status", middleware.StaffRequired(), handlers.OverrideBookingStatus)
	booking.Get("/:id", handlers.GetBooking)
}
