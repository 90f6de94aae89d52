package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noel1334/ums-backend-sub003/handlers"
	"github.com/noel1334/ums-backend-sub003/middleware"
)

func CatalogRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	hostels := api.Group("/hostels", middleware.Protected())
	hostels.Get("", handlers.GetHostels)
	hostels.Get("/:id", handlers.GetHostel)
	hostels.Post("", middleware.StaffRequired(), handlers.CreateHostel)
	hostels.Put("/:id", middleware.StaffRequired(), handlers.UpdateHostel)

	rooms := api.Group("/rooms", middleware.Protected())
	rooms.Get("", handlers.GetRooms)
	rooms.Post("", middleware.StaffRequired(), handlers.CreateRoom)
	rooms.Put("/:id", middleware.StaffRequired(), handlers.UpdateRoom)

	seasons := api.Group("/seasons", middleware.Protected())
	seasons.Get("", handlers.GetSeasons)
	seasons.Post("", middleware.StaffRequired(), handlers.CreateSeason)
	seasons.Put("/:id", middleware.StaffRequired(), handlers.UpdateSeason)

	fees := api.Group("/fees", middleware.Protected())
	fees.Get("", handlers.GetFees)
	fees.Post("", middleware.StaffRequired(), handlers.CreateFee)

	termFees := api.Group("/term-fees", middleware.Protected(), middleware.StaffRequired())
	termFees.Post("", handlers.RecordTermFeePayment)
}
