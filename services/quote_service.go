package services

import (
	"context"
	"time"

	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteInput struct {
	HostelID        uint
	RoomID          uint
	SeasonID        uint
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
	PaymentDeadline *time.Time
}

// PrepareQuote validates every booking precondition and resolves the
// amount due, producing an unpersisted intent. Read-only.
func (s *BookingService) PrepareQuote(ctx context.Context, studentID uint, in QuoteInput) (*BookingIntent, error) {
	if in.HostelID == 0 || in.RoomID == 0 || in.SeasonID == 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "hostel_id, room_id and season_id are required")
	}
	if in.CheckInDate != nil && in.CheckOutDate != nil && !in.CheckOutDate.After(*in.CheckInDate) {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "check_out_date must be after check_in_date")
	}

	var student models.User
	if err := s.DB.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeStudentNotFound, "Student not found")
		}
		return nil, apperrors.Internal(err)
	}
	if !student.IsActive {
		return nil, apperrors.Forbidden(apperrors.CodeStudentInactive, "Student account is not active")
	}
	if student.IsGraduated {
		return nil, apperrors.Forbidden(apperrors.CodeStudentGraduated, "Graduated students cannot book hostel rooms")
	}
	if student.Gender == nil || *student.Gender == "" {
		return nil, apperrors.Validation(apperrors.CodeProfileIncomplete, "Student profile has no gender information")
	}

	var hostel models.Hostel
	if err := s.DB.First(&hostel, in.HostelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeHostelNotFound, "Hostel not found")
		}
		return nil, apperrors.Internal(err)
	}
	if hostel.Gender != *student.Gender {
		return nil, apperrors.Forbidden(apperrors.CodeGenderMismatch, "Hostel is not open to this student's gender")
	}

	var room models.Room
	if err := s.DB.Where("id = ? AND hostel_id = ?", in.RoomID, in.HostelID).First(&room).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeRoomNotFound, "Room not found in this hostel")
		}
		return nil, apperrors.Internal(err)
	}

	var season models.Season
	if err := s.DB.First(&season, in.SeasonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeSeasonNotFound, "Season not found")
		}
		return nil, apperrors.Internal(err)
	}
	if !season.IsOpen {
		return nil, apperrors.Validation(apperrors.CodeSeasonClosed, "Season is not open for booking")
	}

	if !room.IsAvailable {
		return nil, apperrors.Conflict(apperrors.CodeRoomUnavailable, "Room has been taken offline")
	}

	holders, err := s.SlotHolders(s.DB, room.ID, season.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if holders >= int64(room.Capacity) {
		return nil, apperrors.Conflict(apperrors.CodeRoomFull, "Room is already at full capacity")
	}
	s.Cache.SetOccupancy(ctx, room.ID, season.ID, holders)

	var existing int64
	err = s.DB.Model(&models.Booking{}).
		Where("student_id = ? AND season_id = ? AND status IN ? AND is_active = ?",
			student.ID, season.ID, []string{models.BookingStatusPending, models.BookingStatusPaid}, true).
		Count(&existing).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing > 0 {
		return nil, apperrors.Conflict(apperrors.CodeDuplicateBooking, "Student already holds an active booking for this season")
	}

	var termFee models.TermFeePayment
	err = s.DB.Where("student_id = ? AND season_id = ? AND status = ?",
		student.ID, season.ID, models.PaymentStatusPaid).First(&termFee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Forbidden(apperrors.CodeTermFeeUnpaid, "School fees for this season are not fully paid")
		}
		return nil, apperrors.Internal(err)
	}

	fee, err := s.resolveFee(hostel.ID, room.ID, season.ID, *student.Gender)
	if err != nil {
		return nil, err
	}

	return &BookingIntent{
		StudentID:       student.ID,
		HostelID:        hostel.ID,
		RoomID:          room.ID,
		SeasonID:        season.ID,
		FeeID:           fee.ID,
		AmountDue:       fee.Amount,
		CheckInDate:     in.CheckInDate,
		CheckOutDate:    in.CheckOutDate,
		PaymentDeadline: in.PaymentDeadline,
	}, nil
}

// resolveFee prefers a room-specific fee row over the hostel default.
func (s *BookingService) resolveFee(hostelID, roomID, seasonID uint, gender string) (*models.HostelFee, error) {
	var fee models.HostelFee
	err := s.DB.Where("hostel_id = ? AND room_id = ? AND season_id = ? AND gender = ?",
		hostelID, roomID, seasonID, gender).First(&fee).Error
	if err == nil {
		return &fee, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Internal(err)
	}

	err = s.DB.Where("hostel_id = ? AND room_id IS NULL AND season_id = ? AND gender = ?",
		hostelID, seasonID, gender).First(&fee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeFeeNotFound, "No applicable fee is configured for this room and season")
		}
		return nil, apperrors.Internal(err)
	}
	return &fee, nil
}

// RebuildIntent re-derives an intent from raw ids on the processor
// completion paths, where the intent travels in the request body. The
// fee (and so the amount due) is always resolved server-side; the
// client never dictates what it owes. Eligibility and capacity gates
// are deliberately left to the commit step so their failures keep
// their distinct error codes.
func (s *BookingService) RebuildIntent(studentID uint, in QuoteInput) (*BookingIntent, error) {
	if in.HostelID == 0 || in.RoomID == 0 || in.SeasonID == 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "hostel_id, room_id and season_id are required")
	}

	var student models.User
	if err := s.DB.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeStudentNotFound, "Student not found")
		}
		return nil, apperrors.Internal(err)
	}
	if student.Gender == nil || *student.Gender == "" {
		return nil, apperrors.Validation(apperrors.CodeProfileIncomplete, "Student profile has no gender information")
	}

	var room models.Room
	if err := s.DB.Where("id = ? AND hostel_id = ?", in.RoomID, in.HostelID).First(&room).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound(apperrors.CodeRoomNotFound, "Room not found in this hostel")
		}
		return nil, apperrors.Internal(err)
	}

	fee, err := s.resolveFee(in.HostelID, in.RoomID, in.SeasonID, *student.Gender)
	if err != nil {
		return nil, err
	}

	return &BookingIntent{
		StudentID:       studentID,
		HostelID:        in.HostelID,
		RoomID:          in.RoomID,
		SeasonID:        in.SeasonID,
		FeeID:           fee.ID,
		AmountDue:       fee.Amount,
		CheckInDate:     in.CheckInDate,
		CheckOutDate:    in.CheckOutDate,
		PaymentDeadline: in.PaymentDeadline,
	}, nil
}

// AllocateBooking is the administrative path that creates an unpaid
// PENDING booking. It runs the same preconditions as a student quote and
// holds the room lock across the capacity recount and insert.
func (s *BookingService) AllocateBooking(ctx context.Context, studentID uint, in QuoteInput) (*models.Booking, error) {
	if in.PaymentDeadline == nil {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "payment_deadline is required for an unpaid allocation")
	}

	intent, err := s.PrepareQuote(ctx, studentID, in)
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, intent.RoomID).Error; err != nil {
			return apperrors.Internal(err)
		}
		admitted, err := s.admitLocked(tx, &room, intent.SeasonID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if !admitted {
			return apperrors.Conflict(apperrors.CodeRoomFull, "Room filled up before the allocation could be saved")
		}

		booking = models.Booking{
			StudentID:       intent.StudentID,
			HostelID:        intent.HostelID,
			RoomID:          intent.RoomID,
			SeasonID:        intent.SeasonID,
			FeeID:           intent.FeeID,
			AmountDue:       intent.AmountDue,
			Status:          models.BookingStatusPending,
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
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.InvalidateOccupancy(ctx, booking.RoomID, booking.SeasonID)
	return &booking, nil
}
