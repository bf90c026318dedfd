package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const trackingUpdatesChannel = "parcel:tracking:updates"

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

// TrackingUpdate is the payload published whenever a parcel's delivery
// status changes.
type TrackingUpdate struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// PublishTrackingUpdate publishes a parcel status change to Redis pub/sub.
// It is a no-op when Redis is not configured.
func PublishTrackingUpdate(ctx context.Context, trackingID, status, message string) error {
	if RedisClient == nil {
		return nil
	}

	update := TrackingUpdate{
		TrackingID: trackingID,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now().Unix(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, trackingUpdatesChannel, data).Err()
}

// SubscribeTrackingUpdates subscribes to parcel status change events
func SubscribeTrackingUpdates(ctx context.Context) *redis.PubSub {
	return RedisClient.Subscribe(ctx, trackingUpdatesChannel)
}

// CacheStats stores an aggregated stats payload with a short TTL
func CacheStats(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, "stats:"+key, data, ttl).Err()
}

// GetCachedStats retrieves a previously cached stats payload
func GetCachedStats(ctx context.Context, key string, out interface{}) error {
	data, err := RedisClient.Get(ctx, "stats:"+key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), out)
}
