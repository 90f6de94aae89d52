package models

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusPartial   = "partial"
	BookingStatusPaid      = "paid"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudentID uint `gorm:"not null;index" json:"student_id"`
	HostelID  uint `gorm:"not null" json:"hostel_id"`
	RoomID    uint `gorm:"not null;index" json:"room_id"`
	SeasonID  uint `gorm:"not null;index" json:"season_id"`
	FeeID     uint `gorm:"not null" json:"fee_id"`

	AmountDue  float64 `gorm:"type:numeric(12,2);not null" json:"amount_due"`
	AmountPaid float64 `gorm:"type:numeric(12,2);default:0" json:"amount_paid"`
	Status     string  `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Cancelled bookings flip this off; the occupancy count filters on it,
	// so cancelling frees the slot immediately.
	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CheckInDate     *time.Time `json:"check_in_date"`
	CheckOutDate    *time.Time `json:"check_out_date"`
	PaymentDeadline *time.Time `json:"payment_deadline"`

	Student User      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Hostel  Hostel    `gorm:"foreignKey:HostelID" json:"hostel,omitempty"`
	Room    Room      `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Season  Season    `gorm:"foreignKey:SeasonID" json:"season,omitempty"`
	Fee     HostelFee `gorm:"foreignKey:FeeID" json:"fee,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Balance is the amount still owed on the booking.
func (b *Booking) Balance() float64 {
	return b.AmountDue - b.AmountPaid
}
