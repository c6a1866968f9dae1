package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const cursorKeyPrefix = "mealplan:rollover:"

// CursorStore keeps day-rollover cursors in Redis so every replica shares them
type CursorStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.CursorStore = (*CursorStore)(nil)

// NewCursorStore creates a new Redis cursor store. Cursors expire after ttl;
// an expired cursor only costs one redundant resolution pass.
func NewCursorStore(client *redis.Client, ttl time.Duration) *CursorStore {
	return &CursorStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *CursorStore) key(key string) string {
	return cursorKeyPrefix + key
}

// LastChecked returns the last date stored for key, or "" if none
func (s *CursorStore) LastChecked(ctx context.Context, key string) (string, error) {
	date, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cursor %s: %w: %w", key, entity.ErrTransientStore, err)
	}
	return date, nil
}

// MarkChecked stores date for key
func (s *CursorStore) MarkChecked(ctx context.Context, key, date string) error {
	if err := s.client.Set(ctx, s.key(key), date, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cursor %s: %w: %w", key, entity.ErrTransientStore, err)
	}
	return nil
}
