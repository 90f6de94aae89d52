package services

import (
	"context"

	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/models"
	"gorm.io/gorm"
)

// BookingService owns the booking pipeline: quoting, admission control,
// gateway reconciliation, the partial payment ledger and cancellation.
// It holds its storage handle explicitly so tests can substitute one.
type BookingService struct {
	DB    *gorm.DB
	Cache *CacheService
}

func NewBookingService(db *gorm.DB, cache *CacheService) *BookingService {
	return &BookingService{DB: db, Cache: cache}
}

// slotStatuses are the booking states that hold a slot against room
// capacity. A pending allocation reserves its place the moment it is
// created; only cancellation releases it.
var slotStatuses = []string{
	models.BookingStatusPending,
	models.BookingStatusPartial,
	models.BookingStatusPaid,
}

// Occupancy counts the settled residents of the room for the season.
// Derived, never stored. Read paths only; admission uses SlotHolders.
func (s *BookingService) Occupancy(db *gorm.DB, roomID, seasonID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("room_id = ? AND season_id = ? AND status = ? AND is_active = ?",
			roomID, seasonID, models.BookingStatusPaid, true).
		Count(&count).Error
	return count, err
}

// SlotHolders counts every active booking holding a slot in the room,
// whatever its payment progress. All admission decisions count these,
// so an unpaid allocation cannot be double-sold and its later promotion
// to paid can never push the room over capacity.
func (s *BookingService) SlotHolders(db *gorm.DB, roomID, seasonID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("room_id = ? AND season_id = ? AND status IN ? AND is_active = ?",
			roomID, seasonID, slotStatuses, true).
		Count(&count).Error
	return count, err
}

// Admit is the advisory fast-fail admission check used at quote time and
// before opening a gateway session. It may serve a slightly stale cached
// count; only the locked recount inside the commit transaction is
// authoritative.
func (s *BookingService) Admit(ctx context.Context, roomID, seasonID uint) (bool, error) {
	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, apperrors.NotFound(apperrors.CodeRoomNotFound, "Room not found")
		}
		return false, apperrors.Internal(err)
	}
	if !room.IsAvailable {
		return false, nil
	}

	holders, ok := s.Cache.GetOccupancy(ctx, roomID, seasonID)
	if !ok {
		var err error
		holders, err = s.SlotHolders(s.DB, roomID, seasonID)
		if err != nil {
			return false, apperrors.Internal(err)
		}
		s.Cache.SetOccupancy(ctx, roomID, seasonID, holders)
	}

	return holders < int64(room.Capacity), nil
}

// admitLocked is the authoritative check. It must run inside a
// transaction that already holds the room row lock, so no concurrent
// commit can change the count before our insert lands.
func (s *BookingService) admitLocked(tx *gorm.DB, room *models.Room, seasonID uint) (bool, error) {
	if !room.IsAvailable {
		return false, nil
	}
	holders, err := s.SlotHolders(tx, room.ID, seasonID)
	if err != nil {
		return false, err
	}
	return holders < int64(room.Capacity), nil
}
