package services

import (
	"context"
	"log"

	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
	"gorm.io/gorm"
)

// CancelBooking moves a booking out of the active set, which frees its
// occupancy slot immediately. Pending receipts attached to the booking
// are purged; paid receipts stay as the audit trail.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeBookingNotFound, "Booking not found")
		}
		return nil, apperrors.Internal(err)
	}

	if !actor.IsStaff() && actor.ID != booking.StudentID {
		return nil, apperrors.Forbidden(apperrors.CodeNotOwner, "You can only cancel your own booking")
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusPaid {
		return nil, apperrors.Validation(apperrors.CodeInvalidStatus, "Only pending or paid bookings can be cancelled")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		booking.Status = models.BookingStatusCancelled
		booking.IsActive = false
		if err := tx.Save(&booking).Error; err != nil {
			return apperrors.Internal(err)
		}
		err := tx.Where("booking_id = ? AND status = ?", booking.ID, models.PaymentStatusPending).
			Delete(&models.PaymentReceipt{}).Error
		if err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.InvalidateOccupancy(ctx, booking.RoomID, booking.SeasonID)
	log.Printf("Booking %d cancelled by user %d (%s)", booking.ID, actor.ID, actor.Role)
	return &booking, nil
}

// DeletePendingReceipt is the administrative cleanup for payment records
// that were started but never completed. Deleting the last pending
// receipt of a still-pending booking cancels that booking too, so the
// slot it was holding becomes bookable again.
func (s *BookingService) DeletePendingReceipt(ctx context.Context, receiptID uint) error {
	var receipt models.PaymentReceipt
	if err := s.DB.First(&receipt, receiptID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound(apperrors.CodePaymentNotFound, "Payment record not found")
		}
		return apperrors.Internal(err)
	}
	if receipt.Status != models.PaymentStatusPending {
		return apperrors.Validation(apperrors.CodeInvalidStatus, "Only pending payment records can be deleted")
	}

	var cancelledRoomID, cancelledSeasonID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&receipt).Error; err != nil {
			return apperrors.Internal(err)
		}

		if receipt.BookingID == nil {
			return nil
		}

		var remaining int64
		err := tx.Model(&models.PaymentReceipt{}).
			Where("booking_id = ? AND status = ?", *receipt.BookingID, models.PaymentStatusPending).
			Count(&remaining).Error
		if err != nil {
			return apperrors.Internal(err)
		}
		if remaining > 0 {
			return nil
		}

		var booking models.Booking
		if err := tx.First(&booking, *receipt.BookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return apperrors.Internal(err)
		}
		if booking.Status != models.BookingStatusPending || !booking.IsActive {
			return nil
		}

		booking.Status = models.BookingStatusCancelled
		booking.IsActive = false
		if err := tx.Save(&booking).Error; err != nil {
			return apperrors.Internal(err)
		}
		cancelledRoomID = booking.RoomID
		cancelledSeasonID = booking.SeasonID
		log.Printf("Booking %d auto-cancelled: its last pending payment record %d was deleted", booking.ID, receipt.ID)
		return nil
	})
	if err != nil {
		return err
	}

	if cancelledRoomID != 0 {
		s.Cache.InvalidateOccupancy(ctx, cancelledRoomID, cancelledSeasonID)
	}
	return nil
}

// OverrideStatus is the manual correction path for admin and staff. It
// bypasses the commit algorithm on purpose, so it validates nothing but
// the status value itself.
func (s *BookingService) OverrideStatus(ctx context.Context, bookingID uint, status string) (*models.Booking, error) {
	switch status {
	case models.BookingStatusPending, models.BookingStatusPartial, models.BookingStatusPaid,
		models.BookingStatusConfirmed, models.BookingStatusCancelled:
	default:
		return nil, apperrors.Validation(apperrors.CodeInvalidStatus, "Unknown booking status")
	}

	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeBookingNotFound, "Booking not found")
		}
		return nil, apperrors.Internal(err)
	}

	// A cancelled booking has released its slot; resurrecting it would
	// bypass admission entirely. Staff allocate a fresh booking instead.
	if booking.Status == models.BookingStatusCancelled && status != models.BookingStatusCancelled {
		return nil, apperrors.Validation(apperrors.CodeInvalidStatus, "A cancelled booking cannot be reactivated; allocate a new one")
	}

	booking.Status = status
	if status == models.BookingStatusCancelled {
		booking.IsActive = false
	}
	if err := s.DB.Save(&booking).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	s.Cache.InvalidateOccupancy(ctx, booking.RoomID, booking.SeasonID)
	return &booking, nil
}
