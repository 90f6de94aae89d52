package models

import (
	"time"
)

type Hostel struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:255;not null;unique" json:"name"`
	Gender   string  `gorm:"size:10;not null" json:"gender"`
	Location *string `gorm:"size:255" json:"location"`

	Rooms []Room `gorm:"foreignKey:HostelID" json:"rooms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
