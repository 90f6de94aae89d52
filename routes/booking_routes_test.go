package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": float64(9),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func bookingApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "routes-test-secret")
	app := fiber.New()
	BookingRoutes(app)
	return app
}

func TestVerifyRoutesRejectStaffCallers(t *testing.T) {
	app := bookingApp(t)
	token := signToken(t, "routes-test-secret", "staff")

	for _, path := range []string{
		"/api/v1/bookings/verify-paystack",
		"/api/v1/bookings/verify-flutterwave",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s with staff token: status %d, want %d", path, resp.StatusCode, http.StatusForbidden)
		}
	}
}

func TestVerifyRoutesRejectMissingToken(t *testing.T) {
	app := bookingApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/verify-paystack", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing token: status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
