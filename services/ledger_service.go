package services

import (
	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
	"github.com/noel1334/ums-backend-sub003/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerInput struct {
	StudentID     uint
	SeasonID      uint
	Amount        float64
	Provider      string
	Reference     string
	ProviderTxnID *string
}

// ApplyPayment records one incremental payment against an existing
// booking and recomputes its cumulative total and status. Used for
// manual and administrative entries (bank transfers, cash desk) that
// never touch a gateway.
func (s *BookingService) ApplyPayment(actor Actor, bookingID uint, in LedgerInput) (*models.PaymentReceipt, *models.Booking, error) {
	if in.Amount <= 0 {
		return nil, nil, apperrors.Validation(apperrors.CodeInvalidInput, "Payment amount must be greater than zero")
	}
	if in.Provider == "" {
		in.Provider = models.ProviderBankTransfer
	}

	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperrors.NotFound(apperrors.CodeBookingNotFound, "Booking not found")
		}
		return nil, nil, apperrors.Internal(err)
	}

	// A student may only pay their own booking; staff may pay on behalf
	// of any student, but the supplied student must match the booking.
	if !actor.IsStaff() && actor.ID != booking.StudentID {
		return nil, nil, apperrors.Forbidden(apperrors.CodeNotOwner, "You can only pay for your own booking")
	}
	if in.StudentID != 0 && in.StudentID != booking.StudentID {
		return nil, nil, apperrors.Validation(apperrors.CodeInvalidInput, "Supplied student does not match the booking")
	}
	if in.SeasonID != 0 && in.SeasonID != booking.SeasonID {
		return nil, nil, apperrors.Validation(apperrors.CodeSeasonMismatch, "Payment season does not match the booking season")
	}
	switch booking.Status {
	case models.BookingStatusPaid, models.BookingStatusConfirmed, models.BookingStatusCancelled:
		return nil, nil, apperrors.Validation(apperrors.CodeInvalidStatus, "Booking is already settled or cancelled")
	}

	var receipt models.PaymentReceipt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read under the row lock so interleaved ledger entries each
		// see the previous one's total. The pre-image above is only for
		// the ownership and season checks.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return apperrors.Internal(err)
		}
		switch booking.Status {
		case models.BookingStatusPaid, models.BookingStatusConfirmed, models.BookingStatusCancelled:
			return apperrors.Validation(apperrors.CodeInvalidStatus, "Booking is already settled or cancelled")
		}

		reference := in.Reference
		if reference == "" {
			var err error
			reference, err = utils.GenerateUniqueReference(tx)
			if err != nil {
				return apperrors.Internal(err)
			}
		}

		receipt = models.PaymentReceipt{
			StudentID:      booking.StudentID,
			BookingID:      &booking.ID,
			FeeID:          &booking.FeeID,
			SeasonID:       booking.SeasonID,
			AmountExpected: booking.AmountDue,
			AmountPaid:     in.Amount,
			Status:         models.PaymentStatusPaid,
			Reference:      reference,
			Provider:       in.Provider,
			ProviderTxnID:  in.ProviderTxnID,
		}
		if err := tx.Create(&receipt).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return apperrors.Conflict(apperrors.CodeDuplicateReference, "A payment with this reference already exists")
			}
			return apperrors.Internal(err)
		}

		newTotal := booking.AmountPaid + in.Amount
		booking.AmountPaid = newTotal
		if newTotal >= booking.AmountDue {
			booking.Status = models.BookingStatusPaid
		} else if newTotal > 0 {
			booking.Status = models.BookingStatusPartial
		}
		if err := tx.Save(&booking).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &receipt, &booking, nil
}
