package services

import (
	"context"
	"fmt"
	"log"

	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
	"github.com/noel1334/ums-backend-sub003/payments"
	"github.com/noel1334/ums-backend-sub003/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionResult pairs the receipt with the booking it paid for.
// Replayed is set when the gateway transaction had already been
// reconciled and the stored pair is returned unchanged.
type CompletionResult struct {
	Receipt  *models.PaymentReceipt
	Booking  *models.Booking
	Replayed bool
}

// CompleteGatewayPayment reconciles one external payment event into a
// paid booking. Every channel goes through this same sequence; only the
// verifier differs. When intent is nil the booking intent is recovered
// from the gateway's session metadata (card-gateway path); the regional
// processors pass it explicitly.
//
// The operation is idempotent on (transaction id, channel): webhook
// retries, client re-polls and duplicate browser callbacks all resolve
// to the first committed result.
func (s *BookingService) CompleteGatewayPayment(ctx context.Context, verifier payments.Verifier, externalRef string, intent *BookingIntent) (*CompletionResult, error) {
	if externalRef == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "A payment reference is required")
	}

	verification, err := verifier.Verify(externalRef)
	if err != nil {
		log.Printf("🔥 Gateway verification call failed (channel=%s ref=%s): %v", verifier.Channel(), externalRef, err)
		return nil, apperrors.Internal(err)
	}

	if intent == nil {
		intent, err = IntentFromMetadata(verification.Metadata)
		if err != nil {
			return nil, err
		}
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	if !verification.Success {
		return nil, apperrors.Validation(apperrors.CodePaymentNotSuccessful, "Gateway reports the payment did not succeed")
	}
	if verification.Amount < intent.AmountDue {
		return nil, apperrors.Validation(apperrors.CodeAmountMismatch,
			fmt.Sprintf("Amount paid (%.2f) is less than the amount due (%.2f)", verification.Amount, intent.AmountDue))
	}

	result := &CompletionResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Replay check first: one external transaction, one receipt.
		var existing models.PaymentReceipt
		err := tx.Where("provider_txn_id = ? AND provider = ?", verification.TransactionID, verifier.Channel()).
			First(&existing).Error
		if err == nil {
			result.Receipt = &existing
			result.Replayed = true
			if existing.BookingID != nil {
				var committed models.Booking
				if err := tx.First(&committed, *existing.BookingID).Error; err != nil {
					return apperrors.Internal(err)
				}
				result.Booking = &committed
			}
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return apperrors.Internal(err)
		}

		// A second, unrelated transaction must not buy a second slot.
		var active int64
		err = tx.Model(&models.Booking{}).
			Where("student_id = ? AND season_id = ? AND status = ? AND is_active = ?",
				intent.StudentID, intent.SeasonID, models.BookingStatusPaid, true).
			Count(&active).Error
		if err != nil {
			return apperrors.Internal(err)
		}
		if active > 0 {
			return apperrors.Conflict(apperrors.CodeDuplicateBooking, "Student already holds a paid booking for this season")
		}

		// Authoritative admission: the room row lock serializes every
		// commit for this room, closing the count-then-insert window.
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, intent.RoomID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound(apperrors.CodeRoomNotFound, "Room not found")
			}
			return apperrors.Internal(err)
		}
		admitted, err := s.admitLocked(tx, &room, intent.SeasonID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if !admitted {
			// Money has moved but there is no slot left. Logged with
			// everything operations needs to drive a refund.
			log.Printf("🔥 CRITICAL: payment captured but room full (channel=%s txn=%s amount=%.2f student=%d room=%d season=%d) — refund required",
				verifier.Channel(), verification.TransactionID, verification.Amount, intent.StudentID, intent.RoomID, intent.SeasonID)
			return apperrors.Conflict(apperrors.CodeRoomFullAfterPayment,
				"Payment succeeded but the room filled up before the booking could be saved; a refund will be initiated")
		}

		booking := models.Booking{
			StudentID:       intent.StudentID,
			HostelID:        intent.HostelID,
			RoomID:          intent.RoomID,
			SeasonID:        intent.SeasonID,
			FeeID:           intent.FeeID,
			AmountDue:       intent.AmountDue,
			AmountPaid:      verification.Amount,
			Status:          models.BookingStatusPaid,
			IsActive:        true,
			CheckInDate:     intent.CheckInDate,
			CheckOutDate:    intent.CheckOutDate,
			PaymentDeadline: intent.PaymentDeadline,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return apperrors.Conflict(apperrors.CodeDuplicateBooking, "Student already holds an active booking for this season")
			}
			return apperrors.Internal(err)
		}

		reference, err := utils.GenerateUniqueReference(tx)
		if err != nil {
			return apperrors.Internal(err)
		}

		txnID := verification.TransactionID
		raw := verification.Raw
		receipt := models.PaymentReceipt{
			StudentID:       intent.StudentID,
			BookingID:       &booking.ID,
			FeeID:           &intent.FeeID,
			SeasonID:        intent.SeasonID,
			AmountExpected:  intent.AmountDue,
			AmountPaid:      verification.Amount,
			Status:          models.PaymentStatusPaid,
			Reference:       reference,
			Provider:        verifier.Channel(),
			ProviderTxnID:   &txnID,
			GatewayResponse: &raw,
		}
		if err := tx.Create(&receipt).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return apperrors.Conflict(apperrors.CodeDuplicateReference, "This gateway transaction has already been recorded")
			}
			return apperrors.Internal(err)
		}

		result.Receipt = &receipt
		result.Booking = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		s.Cache.InvalidateOccupancy(ctx, result.Booking.RoomID, result.Booking.SeasonID)
	}
	return result, nil
}
