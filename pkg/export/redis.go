package export

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultQueueKey is the Redis list that receives video links.
const DefaultQueueKey = "ytfinder:links"

// RedisQueue pushes watch URLs onto a Redis list for an external
// downloader to consume.
type RedisQueue struct {
	redis  *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisQueue creates a queue writing to key. An empty key selects DefaultQueueKey.
func NewRedisQueue(redisClient *redis.Client, key string, logger zerolog.Logger) (*RedisQueue, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if key == "" {
		key = DefaultQueueKey
	}

	return &RedisQueue{
		redis:  redisClient,
		key:    key,
		logger: logger,
	}, nil
}

// NewRedisQueueFromURL parses a redis:// URL and creates a queue on it.
func NewRedisQueueFromURL(rawURL, key string, logger zerolog.Logger) (*RedisQueue, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisQueue(redis.NewClient(opts), key, logger)
}

// Key returns the list key.
func (q *RedisQueue) Key() string {
	return q.key
}

// Push appends the watch URL of every non-empty id to the list in one
// RPUSH and returns the number of links pushed.
func (q *RedisQueue) Push(ctx context.Context, ids []string) (int, error) {
	urls := make([]any, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		urls = append(urls, WatchURL(id))
	}
	if len(urls) == 0 {
		return 0, nil
	}

	if err := q.redis.RPush(ctx, q.key, urls...).Err(); err != nil {
		return 0, fmt.Errorf("push links to %s: %w", q.key, err)
	}

	q.logger.Info().
		Str("key", q.key).
		Int("links", len(urls)).
		Msg("Links queued")

	return len(urls), nil
}

// Len returns the current length of the list.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.redis.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("length of %s: %w", q.key, err)
	}
	return n, nil
}

// Close closes the underlying Redis client.
func (q *RedisQueue) Close() error {
	return q.redis.Close()
}
