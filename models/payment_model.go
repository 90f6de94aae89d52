package models

import (
	"time"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	ProviderStripe       = "stripe"
	ProviderPaystack     = "paystack"
	ProviderFlutterwave  = "flutterwave"
	ProviderBankTransfer = "bank_transfer"
)

// PaymentReceipt is immutable once paid. (ProviderTxnID, Provider) is the
// idempotency key for gateway completions: one external payment event can
// never yield two receipts.
type PaymentReceipt struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	StudentID uint  `gorm:"not null;index" json:"student_id"`
	BookingID *uint `gorm:"index" json:"booking_id"`
	FeeID     *uint `json:"fee_id"`
	SeasonID  uint  `gorm:"not null;index" json:"season_id"`

	AmountExpected float64 `gorm:"type:numeric(12,2);not null" json:"amount_expected"`
	AmountPaid     float64 `gorm:"type:numeric(12,2);default:0" json:"amount_paid"`
	Status         string  `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Reference is generated by this system and globally unique.
	Reference     string  `gorm:"size:100;not null;unique" json:"reference"`
	Provider      string  `gorm:"size:50;not null;uniqueIndex:idx_receipts_txn_provider" json:"provider"`
	ProviderTxnID *string `gorm:"size:255;uniqueIndex:idx_receipts_txn_provider" json:"provider_txn_id"`

	// Verbatim gateway verification payload, kept for audit.
	GatewayResponse *string `gorm:"type:text" json:"-"`

	// Hosted PDF receipt, filled in asynchronously after a successful
	// commit. Best effort.
	ReceiptURL *string `gorm:"size:500" json:"receipt_url"`

	Student User    `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
