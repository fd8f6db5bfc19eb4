package renders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage caches rendered PNGs by content hash and remembers the last render
// of every user.
type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

func renderKey(key string) string {
	return "render:" + key
}

func lastKey(userID int64) string {
	return fmt.Sprintf("last:%d", userID)
}

// Get returns the cached PNG. ok is false on a cache miss.
func (s *Storage) Get(ctx context.Context, key string) (png []byte, ok bool, err error) {
	png, err = s.redis.Get(ctx, renderKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return png, true, nil
}

// Set stores png under key. A zero ttl keeps it forever.
func (s *Storage) Set(ctx context.Context, key string, png []byte, ttl time.Duration) error {
	return s.redis.Set(ctx, renderKey(key), png, ttl).Err()
}

// SetLast remembers key as the user's most recent render.
func (s *Storage) SetLast(ctx context.Context, userID int64, key string, ttl time.Duration) error {
	return s.redis.Set(ctx, lastKey(userID), key, ttl).Err()
}

// Last returns the key of the user's most recent render, or "" if there is none.
func (s *Storage) Last(ctx context.Context, userID int64) (string, error) {
	key, err := s.redis.Get(ctx, lastKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}
