package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arjun/music-app-backend/internal/models"
)

const (
	userListKey = "users:all"
	userListTTL = 30 * time.Second
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// UserListCache is a short-lived Redis cache for the full user list. Mongo
// stays authoritative: every user mutation invalidates the key, and the TTL
// bounds staleness if an invalidation is lost.
type UserListCache struct {
	rdb *redis.Client
}

func NewUserListCache(rdb *redis.Client) *UserListCache {
	return &UserListCache{rdb: rdb}
}

// Get returns the cached list, or nil on a miss. Cache errors are reported
// but callers treat them as misses.
func (c *UserListCache) Get(ctx context.Context) ([]models.User, error) {
	data, err := c.rdb.Get(ctx, userListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Set stores the list under a short TTL.
func (c *UserListCache) Set(ctx context.Context, users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userListKey, data, userListTTL).Err()
}

// Invalidate drops the cached list after any user mutation.
func (c *UserListCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, userListKey).Err()
}
