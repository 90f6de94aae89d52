package models

import (
	"time"
)

// HostelFee is one fee-list row. RoomID nil means the hostel-wide default;
// a row with RoomID set takes precedence for that room.
type HostelFee struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	HostelID uint    `gorm:"not null;index" json:"hostel_id"`
	RoomID   *uint   `gorm:"index" json:"room_id"`
	SeasonID uint    `gorm:"not null;index" json:"season_id"`
	Gender   string  `gorm:"size:10;not null" json:"gender"`
	Amount   float64 `gorm:"type:numeric(12,2);not null" json:"amount"`

	Hostel Hostel `gorm:"foreignKey:HostelID" json:"hostel,omitempty"`
	Season Season `gorm:"foreignKey:SeasonID" json:"season,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TermFeePayment records a student's school-fee standing for a season.
// Hostel booking requires a fully paid row for the target season.
type TermFeePayment struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	StudentID  uint    `gorm:"not null;index" json:"student_id"`
	SeasonID   uint    `gorm:"not null;index" json:"season_id"`
	AmountDue  float64 `gorm:"type:numeric(12,2);not null" json:"amount_due"`
	AmountPaid float64 `gorm:"type:numeric(12,2);default:0" json:"amount_paid"`
	Status     string  `gorm:"size:20;not null;default:'pending'" json:"status"`

	Student User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Season  Season `gorm:"foreignKey:SeasonID" json:"season,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
