package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dromero/barberbot/internal/model"
)

const keyPrefix = "barberbot:notified:"

// RedisStore is a restart-surviving dedup store. Deployments that cannot
// tolerate duplicate reminders across process restarts select it via
// scheduler.dedup_backend.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 3 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) MarkIfAbsent(ctx context.Context, audience model.Audience, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+model.DedupKey(audience, eventID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim dedup key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Seen(ctx context.Context, audience model.Audience, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+model.DedupKey(audience, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
