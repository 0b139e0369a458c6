package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshTokenFamilyNotFound is returned when rotating a family that has expired or been revoked.
var ErrRefreshTokenFamilyNotFound = errors.New("refresh token family not found")

// RefreshTokenData represents the data stored in Redis for a refresh token family.
type RefreshTokenData struct {
	UID               string    `json:"uid"`
	CurrentTokenHash  string    `json:"current_token_hash"`
	PreviousTokenHash string    `json:"previous_token_hash,omitempty"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// RefreshTokenStore manages refresh token families in Redis.
type RefreshTokenStore interface {
	// Create stores a new refresh token family.
	Create(ctx context.Context, familyID string, data *RefreshTokenData, ttl time.Duration) error
	// Get retrieves refresh token data by family ID. Returns nil if the family does not exist.
	Get(ctx context.Context, familyID string) (*RefreshTokenData, error)
	// Rotate makes newTokenHash current and keeps the old one as previous.
	Rotate(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error
	// Delete removes a refresh token family.
	Delete(ctx context.Context, familyID string) error
	// DeleteAllByUID revokes every family issued to a user.
	DeleteAllByUID(ctx context.Context, uid string) error
}

// RedisClientProvider provides access to the underlying Redis client.
type RedisClientProvider interface {
	Client() *redis.Client
}

type refreshTokenStore struct {
	cache  Cache
	client *redis.Client
}

// NewRefreshTokenStore creates a new RefreshTokenStore.
// Atomic rotation and per-user revocation need a cache that implements RedisClientProvider.
func NewRefreshTokenStore(cache Cache) RefreshTokenStore {
	store := &refreshTokenStore{cache: cache}
	if provider, ok := cache.(RedisClientProvider); ok {
		store.client = provider.Client()
	}
	return store
}

func refreshTokenFamilyKey(familyID string) string {
	return fmt.Sprintf("refresh_token:%s", familyID)
}

func userFamiliesKey(uid string) string {
	return fmt.Sprintf("refresh_families:%s", uid)
}

func (s *refreshTokenStore) Create(ctx context.Context, familyID string, data *RefreshTokenData, ttl time.Duration) error {
	if err := s.cache.Set(ctx, refreshTokenFamilyKey(familyID), data, ttl); err != nil {
		return err
	}
	if s.client == nil {
		return nil
	}

	// Index the family under its user so every session can be revoked at once.
	key := userFamiliesKey(data.UID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, familyID)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index refresh token family: %w", err)
	}
	return nil
}

func (s *refreshTokenStore) Get(ctx context.Context, familyID string) (*RefreshTokenData, error) {
	var data RefreshTokenData
	found, err := s.cache.Get(ctx, refreshTokenFamilyKey(familyID), &data)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &data, nil
}

// rotateScript atomically moves current_token_hash to previous_token_hash.
var rotateScript = redis.NewScript(`
local key = KEYS[1]
local newTokenHash = ARGV[1]
local ttlSeconds = tonumber(ARGV[2])

local data = redis.call('GET', key)
if not data then
    return redis.error_reply("refresh token family not found")
end

local decoded = cjson.decode(data)
decoded.previous_token_hash = decoded.current_token_hash
decoded.current_token_hash = newTokenHash

redis.call('SET', key, cjson.encode(decoded), 'EX', ttlSeconds)
return "OK"
`)

func (s *refreshTokenStore) Rotate(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error {
	if s.client == nil {
		return s.rotateFallback(ctx, familyID, newTokenHash, ttl)
	}

	key := refreshTokenFamilyKey(familyID)
	_, err := rotateScript.Run(ctx, s.client, []string{key}, newTokenHash, int(ttl.Seconds())).Result()
	if err != nil {
		if strings.Contains(err.Error(), ErrRefreshTokenFamilyNotFound.Error()) {
			return ErrRefreshTokenFamilyNotFound
		}
		return fmt.Errorf("rotate script failed: %w", err)
	}
	return nil
}

// rotateFallback is the non-atomic path for caches without a Redis client.
func (s *refreshTokenStore) rotateFallback(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error {
	data, err := s.Get(ctx, familyID)
	if err != nil {
		return err
	}
	if data == nil {
		return ErrRefreshTokenFamilyNotFound
	}

	data.PreviousTokenHash = data.CurrentTokenHash
	data.CurrentTokenHash = newTokenHash

	return s.cache.Set(ctx, refreshTokenFamilyKey(familyID), data, ttl)
}

func (s *refreshTokenStore) Delete(ctx context.Context, familyID string) error {
	return s.cache.Delete(ctx, refreshTokenFamilyKey(familyID))
}

func (s *refreshTokenStore) DeleteAllByUID(ctx context.Context, uid string) error {
	if s.client == nil {
		return nil
	}

	key := userFamiliesKey(uid)
	families, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("list refresh token families: %w", err)
	}

	keys := make([]string, 0, len(families)+1)
	for _, family := range families {
		keys = append(keys, refreshTokenFamilyKey(family))
	}
	keys = append(keys, key)

	return s.client.Del(ctx, keys...).Err()
}
