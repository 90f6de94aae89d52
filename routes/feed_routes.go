package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/noel1334/ums-backend-sub003/handlers"
)

func FeedRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/ws/bookings", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws/bookings", websocket.New(handlers.ServeBookingFeed))
}
