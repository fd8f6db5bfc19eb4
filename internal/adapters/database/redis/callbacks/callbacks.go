package callbacks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/qrstudio/qrstudio-bot/internal/domain/common/errorz"
	"github.com/redis/go-redis/v9"
)

// Storage keeps data that does not fit into 64 bytes of Telegram callback
// data, such as a half-built QR request waiting for the logo choice.
// Buttons carry only the generated id.
type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

// Get loads the value stored under callbackID into v.
func (s *Storage) Get(ctx context.Context, callbackID string, v interface{}) error {
	data, err := s.redis.Get(ctx, callbackID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errorz.ErrCallbackExpired
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Set stores v at a random uuid key and returns that key.
func (s *Storage) Set(ctx context.Context, v interface{}, expiration time.Duration) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	callbackID := uuid.New().String()
	if err = s.redis.Set(ctx, callbackID, data, expiration).Err(); err != nil {
		return "", err
	}
	return callbackID, nil
}

func (s *Storage) Delete(ctx context.Context, callbackID string) {
	s.redis.Del(ctx, callbackID)
}
