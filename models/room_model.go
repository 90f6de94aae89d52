package models

import (
	"time"
)

type Room struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	HostelID uint   `gorm:"not null;index" json:"hostel_id"`
	Number   string `gorm:"size:50;not null" json:"number"`
	Capacity int    `gorm:"not null" json:"capacity"`

	// Administrative take-offline flag. Independent of occupancy and
	// never touched by the booking flow.
	IsAvailable bool `gorm:"default:true" json:"is_available"`

	Hostel Hostel `gorm:"foreignKey:HostelID" json:"hostel,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
