package handlers

import (
	"errors"
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	configs "github.com/noel1334/ums-backend-sub003/configs"
	"github.com/noel1334/ums-backend-sub003/models"
	"github.com/noel1334/ums-backend-sub003/websocket"
)

// ServeBookingFeed upgrades a staff connection and streams booking
// events. The first frame must be an auth message carrying a staff JWT.
func ServeBookingFeed(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("Booking feed auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("Booking feed auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	role, _ := claims["role"].(string)
	if role != models.RoleStaff && role != models.RoleAdmin {
		log.Printf("Booking feed auth failed: role %q is not allowed", role)
		_ = c.WriteJSON(fiber.Map{"error": "Staff access required"})
		c.Close()
		return
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		log.Printf("Booking feed auth failed: invalid user_id claim: %v", claims["user_id"])
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}
	userID := uint(id)

	log.Printf("Booking feed client authenticated: %d", userID)
	client := &websocket.Client{UserID: userID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// The feed is one-way. Reads only detect disconnects.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("Booking feed closed for client %d: %v", userID, err)
			} else {
				log.Printf("Booking feed read error for client %d: %v", userID, err)
			}
			break
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(configs.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
