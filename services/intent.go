package services

import (
	"strconv"
	"time"

	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
)

// Actor is the authenticated caller as resolved by the auth middleware.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleStaff
}

const bookingPurpose = "hostel_booking"

// BookingIntent is a validated, unpersisted proposal to book a specific
// room. It travels either inside the card gateway's session metadata or
// explicitly in the request body for the processors that cannot carry
// server-side metadata.
type BookingIntent struct {
	StudentID uint    `json:"student_id"`
	HostelID  uint    `json:"hostel_id"`
	RoomID    uint    `json:"room_id"`
	SeasonID  uint    `json:"season_id"`
	FeeID     uint    `json:"fee_id"`
	AmountDue float64 `json:"amount_due"`

	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`
}

// Validate rejects intents missing the correlating metadata the commit
// step depends on.
func (i *BookingIntent) Validate() error {
	if i.StudentID == 0 || i.HostelID == 0 || i.RoomID == 0 || i.SeasonID == 0 || i.FeeID == 0 {
		return apperrors.Validation(apperrors.CodeMissingMetadata, "Payment is missing booking metadata")
	}
	if i.AmountDue <= 0 {
		return apperrors.Validation(apperrors.CodeMissingMetadata, "Payment is missing the amount due")
	}
	return nil
}

// Metadata flattens the intent for gateway session embedding.
func (i *BookingIntent) Metadata() map[string]string {
	md := map[string]string{
		"purpose":    bookingPurpose,
		"student_id": strconv.FormatUint(uint64(i.StudentID), 10),
		"hostel_id":  strconv.FormatUint(uint64(i.HostelID), 10),
		"room_id":    strconv.FormatUint(uint64(i.RoomID), 10),
		"season_id":  strconv.FormatUint(uint64(i.SeasonID), 10),
		"fee_id":     strconv.FormatUint(uint64(i.FeeID), 10),
		"amount_due": strconv.FormatFloat(i.AmountDue, 'f', 2, 64),
	}
	if i.CheckInDate != nil {
		md["check_in_date"] = i.CheckInDate.Format(time.RFC3339)
	}
	if i.CheckOutDate != nil {
		md["check_out_date"] = i.CheckOutDate.Format(time.RFC3339)
	}
	return md
}

// IntentFromMetadata rebuilds the intent a payment session was created
// with. Missing or malformed fields invalidate the whole payment.
func IntentFromMetadata(md map[string]string) (*BookingIntent, error) {
	if md == nil || md["purpose"] != bookingPurpose {
		return nil, apperrors.Validation(apperrors.CodeMissingMetadata, "Payment does not carry a hostel booking")
	}

	parseID := func(key string) (uint, error) {
		v, err := strconv.ParseUint(md[key], 10, 64)
		if err != nil || v == 0 {
			return 0, apperrors.Validation(apperrors.CodeMissingMetadata, "Payment metadata field "+key+" is missing or malformed")
		}
		return uint(v), nil
	}

	intent := &BookingIntent{}
	var err error
	if intent.StudentID, err = parseID("student_id"); err != nil {
		return nil, err
	}
	if intent.HostelID, err = parseID("hostel_id"); err != nil {
		return nil, err
	}
	if intent.RoomID, err = parseID("room_id"); err != nil {
		return nil, err
	}
	if intent.SeasonID, err = parseID("season_id"); err != nil {
		return nil, err
	}
	if intent.FeeID, err = parseID("fee_id"); err != nil {
		return nil, err
	}

	intent.AmountDue, err = strconv.ParseFloat(md["amount_due"], 64)
	if err != nil || intent.AmountDue <= 0 {
		return nil, apperrors.Validation(apperrors.CodeMissingMetadata, "Payment metadata field amount_due is missing or malformed")
	}

	if v, ok := md["check_in_date"]; ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			intent.CheckInDate = &t
		}
	}
	if v, ok := md["check_out_date"]; ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			intent.CheckOutDate = &t
		}
	}
	return intent, nil
}
