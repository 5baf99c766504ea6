package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
)

var RedisClient *redis.Client

const (
	bookingUpdatesChannel = "booking:updates"
	adminStatsKey         = "stats:admin"
	statsTTL              = 30 * time.Second
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// PublishBookingUpdate publishes a booking lifecycle event to Redis pub/sub
// so other backend instances can relay it to their dashboards.
func PublishBookingUpdate(ctx context.Context, event string, booking *models.Booking) error {
	payload := map[string]interface{}{
		"event":     event,
		"bookingId": booking.ID,
		"status":    booking.Status,
		"driverId":  booking.DriverID,
		"timestamp": time.Now().Unix(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, bookingUpdatesChannel, data).Err()
}

// CacheAdminStats stores the admin dashboard counters with a short TTL.
// The cache is advisory only; conflict detection never reads it.
func CacheAdminStats(ctx context.Context, stats *engine.AdminStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, adminStatsKey, data, statsTTL).Err()
}

// GetCachedAdminStats retrieves the cached admin counters, if fresh.
func GetCachedAdminStats(ctx context.Context) (*engine.AdminStats, error) {
	data, err := RedisClient.Get(ctx, adminStatsKey).Result()
	if err != nil {
		return nil, err
	}

	var stats engine.AdminStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// InvalidateAdminStats drops the cached counters after a mutation.
func InvalidateAdminStats(ctx context.Context) error {
	return RedisClient.Del(ctx, adminStatsKey).Err()
}
