package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicebroker/internal/domain/transcript"
)

const transcriptKeyPrefix = "transcript:"

// RedisStore keeps each session's transcript in a Redis list, appended with
// RPUSH so History preserves order. The list TTL is refreshed on every append.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore connects to Redis and returns a transcript store.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) key(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

// Append adds a record to a session's transcript.
func (s *RedisStore) Append(ctx context.Context, sessionID string, rec transcript.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal transcript record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key(sessionID), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript record: %w", err)
	}
	return nil
}

// History returns a session's records in append order.
func (s *RedisStore) History(ctx context.Context, sessionID string) ([]transcript.Record, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	out := make([]transcript.Record, 0, len(vals))
	for _, val := range vals {
		var rec transcript.Record
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("corrupt transcript record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
