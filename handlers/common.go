package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/services"
)

var bookingSvc *services.BookingService

// Init hands the handlers their service dependencies. Called once from
// main after the database is up.
func Init(svc *services.BookingService) {
	bookingSvc = svc
}

func currentActor(c *fiber.Ctx) services.Actor {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)

	// Numeric JSON claims decode as float64.
	id, _ := claims["user_id"].(float64)
	role, _ := claims["role"].(string)
	return services.Actor{ID: uint(id), Role: role}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// respondError maps a domain error onto its transport status. Internal
// faults are logged in full and surfaced as a generic message.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperrors.Get(err)
	if appErr.Kind == apperrors.KindInternal {
		log.Printf("🔥 Internal error on %s %s: %v", c.Method(), c.Path(), appErr)
	}
	return c.Status(apperrors.HTTPStatus(appErr.Kind)).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}
