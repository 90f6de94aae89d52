package database

import (
	"context"
	"log"

	config "github.com/noel1334/ums-backend-sub003/configs"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis wires the cache used by the advisory occupancy checks.
// The service keeps working without it; admission falls through to the
// database on every call.
func ConnectRedis() {
	addr := config.ConfigOr("REDIS_ADDR", "localhost:6379")

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️ Redis not reachable at %s, occupancy cache disabled: %v", addr, err)
		Redis = nil
		return
	}

	log.Println("✅ Redis connected successfully")
}
