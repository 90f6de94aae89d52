package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// BookingEvent is pushed to connected staff clients whenever a booking
// changes state, so occupancy boards update without polling.
type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID uint      `json:"booking_id"`
	StudentID uint      `json:"student_id"`
	RoomID    uint      `json:"room_id"`
	SeasonID  uint      `json:"season_id"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

type Client struct {
	UserID uint
	Conn   *websocket.Conn
}

var clients = make(map[uint]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *BookingEvent, 16)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Booking feed client registered: %d", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Booking feed client unregistered: %d", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			var dead []uint
			for userID, conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending booking event to client %d: %v", userID, err)
					conn.Close()
					dead = append(dead, userID)
				}
			}
			clientsMu.RUnlock()
			if len(dead) > 0 {
				clientsMu.Lock()
				for _, userID := range dead {
					delete(clients, userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Publish never blocks the request path; if the hub is saturated the
// event is dropped.
func Publish(event *BookingEvent) {
	event.At = time.Now()
	select {
	case Broadcast <- event:
	default:
	}
}
