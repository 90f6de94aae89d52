package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const occupancyTTL = 30 * time.Second

// CacheService keeps short-lived slot-holder counts for the advisory
// admission checks. Stale reads are acceptable there: the commit path
// always recounts under a row lock.
type CacheService struct {
	Redis *redis.Client
}

func occupancyKey(roomID, seasonID uint) string {
	return fmt.Sprintf("occupancy:%d:%d", roomID, seasonID)
}

func (c *CacheService) GetOccupancy(ctx context.Context, roomID, seasonID uint) (int64, bool) {
	if c == nil || c.Redis == nil {
		return 0, false
	}
	val, err := c.Redis.Get(ctx, occupancyKey(roomID, seasonID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *CacheService) SetOccupancy(ctx context.Context, roomID, seasonID uint, count int64) {
	if c == nil || c.Redis == nil {
		return
	}
	c.Redis.Set(ctx, occupancyKey(roomID, seasonID), strconv.FormatInt(count, 10), occupancyTTL)
}

// InvalidateOccupancy drops the cached count after anything that changes
// the active paid set for the room.
func (c *CacheService) InvalidateOccupancy(ctx context.Context, roomID, seasonID uint) {
	if c == nil || c.Redis == nil {
		return
	}
	c.Redis.Del(ctx, occupancyKey(roomID, seasonID))
}
