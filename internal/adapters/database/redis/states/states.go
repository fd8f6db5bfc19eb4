package states

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 45 * time.Minute

// Storage keeps input states of users, so a restart does not leave anyone
// stuck waiting for a prompt that no longer exists.
type Storage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStorage(client *redis.Client, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Storage{
		redis: client,
		ttl:   ttl,
	}
}

func key(userID int64) string {
	return fmt.Sprintf("state:%d", userID)
}

func (s *Storage) Get(userID int64) (string, error) {
	state, err := s.redis.Get(context.Background(), key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return state, nil
}

func (s *Storage) Set(userID int64, state string) error {
	return s.redis.Set(context.Background(), key(userID), state, s.ttl).Err()
}

func (s *Storage) Delete(userID int64) {
	s.redis.Del(context.Background(), key(userID))
}
