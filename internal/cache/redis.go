// Package cache provides caching functionality using Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ListingTTL is how long a listing stays cached.
const ListingTTL = 5 * time.Minute

// UserTTL is how long a profile stays cached.
const UserTTL = 10 * time.Minute

// Redis wraps the Redis client.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis at host:port and verifies the connection.
func NewRedis(ctx context.Context, uri string) (*Redis, error) {
	opt, err := redis.ParseURL("redis://" + uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.WithField("addr", opt.Addr).Info("Connected to Redis")

	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Client exposes the underlying client for scripts and set operations.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Ping reports whether Redis is reachable; used by the health check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() {
	if err := r.client.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
		return
	}
	log.Println("Disconnected from Redis")
}

// Set stores a value in cache with TTL.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, data, ttl).Err()
}

// Get retrieves a value from cache.
// Returns false if key doesn't exist.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return true, nil
}

// Delete removes a key from cache.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// UserCacheKey generates a cache key for a user profile.
func UserCacheKey(uid string) string {
	return fmt.Sprintf("user:%s", uid)
}

// ListingCacheKey generates a cache key for a listing.
func ListingCacheKey(lid int64) string {
	return fmt.Sprintf("listing:%d", lid)
}
