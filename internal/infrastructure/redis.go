package infrastructure

import (
	"commercebot/internal/entities"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps dedup markers and rate windows in Redis so several
// instances share them. Expiry is handled by key TTLs.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	window    time.Duration
}

func NewRedisStore(ctx context.Context, redisURL string, retention, window time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, retention: retention, window: window}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func processedKey(messageID string) string {
	return "processed:" + messageID
}

func rateWindowKey(senderID string, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", senderID, windowStart.Unix())
}

func (s *RedisStore) ClaimMessage(ctx context.Context, rec entities.ProcessedMessage) (bool, error) {
	value := rec.SenderID + "|" + string(rec.Kind)
	return s.client.SetNX(ctx, processedKey(rec.MessageID), value, s.retention).Result()
}

func (s *RedisStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	n, err := s.client.Exists(ctx, processedKey(messageID)).Result()
	return n > 0, err
}

// PruneProcessed is a no-op: markers expire through their TTL.
func (s *RedisStore) PruneProcessed(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// incrementBelowMax returns -1 when the window is full, otherwise the new count.
var incrementBelowMax = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -1
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return current
`)

func (s *RedisStore) IncrementWindow(ctx context.Context, senderID string, windowStart time.Time, max int) (int, bool, error) {
	ttl := 2 * s.window
	n, err := incrementBelowMax.Run(ctx, s.client,
		[]string{rateWindowKey(senderID, windowStart)}, max, ttl.Milliseconds()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, fmt.Errorf("rate window script returned nil")
		}
		return 0, false, err
	}
	if n < 0 {
		return max, false, nil
	}
	return n, true, nil
}

// PruneWindows is a no-op: windows expire through their TTL.
func (s *RedisStore) PruneWindows(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
