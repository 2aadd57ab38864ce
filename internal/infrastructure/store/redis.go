package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"voicebroker/internal/domain/session"
)

const sessionKeyPrefix = "session:"

// RedisStore is a Redis-backed session store. Sessions are JSON values with
// the idle TTL enforced natively by key expiry; every touch refreshes it.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and returns a session store.
func NewRedisStore(redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisStore, error) {
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

	return &RedisStore{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "session-store").Logger(),
	}, nil
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}

// Create stores a new session.
func (s *RedisStore) Create(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
	}
	if !ok {
		return session.ErrSessionAlreadyExists
	}
	return nil
}

// Get retrieves a session by ID. The touch (LastActiveAt plus TTL refresh)
// is best-effort: a failed write after a successful read logs and returns
// the session anyway.
func (s *RedisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session %s: %v", session.ErrStorageUnavailable, id, err)
	}

	sess.LastActiveAt = time.Now()
	if data, err := json.Marshal(&sess); err == nil {
		if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("session touch failed")
		}
	}

	return &sess, nil
}

// Update merges metadata into an existing session inside a WATCH transaction
// so a concurrent touch cannot drop the metadata write.
func (s *RedisStore) Update(ctx context.Context, id string, metadata map[string]string) (*session.Session, error) {
	var updated *session.Session

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, s.key(id)).Result()
		if errors.Is(err, redis.Nil) {
			return session.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
		}

		var sess session.Session
		if err := json.Unmarshal([]byte(val), &sess); err != nil {
			return fmt.Errorf("%w: corrupt session %s: %v", session.ErrStorageUnavailable, id, err)
		}

		if sess.Metadata == nil {
			sess.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			sess.Metadata[k] = v
		}

		data, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), data, s.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
		}

		updated = &sess
		return nil
	}, s.key(id))

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a session by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// PurgeExpired is a no-op: Redis enforces the idle TTL via key expiry.
func (s *RedisStore) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
