package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures of the Redis-backed store.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrStoreUnavailable wraps I/O failures of the file-backed store.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// DefaultKey is the storage key the HR shell has always used for the cached
// session.
const DefaultKey = "currentUser"

// Store persists the single live Session of one browser context.
//
// Load returns (nil, nil) when nothing is stored. A stored blob that cannot be
// decoded yields an error wrapping [ErrCorrupt]; callers treat every Load error as
// "absent" and must never fail on it.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// RedisStore keeps the encoded Session under one Redis key per browser context.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	scope  string
	ttl    time.Duration
}

// NewRedisStore builds a store whose key is "<prefix>:<scope>:currentUser".
// A zero ttl keeps the blob until Clear.
func NewRedisStore(client redis.UniversalClient, prefix, scope string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		scope:  scope,
		ttl:    ttl,
	}
}

func (s *RedisStore) key() string {
	parts := make([]string, 0, 3)
	if p := strings.TrimSpace(s.prefix); p != "" {
		parts = append(parts, p)
	}
	if sc := strings.TrimSpace(s.scope); sc != "" {
		parts = append(parts, sc)
	}
	parts = append(parts, DefaultKey)
	return strings.Join(parts, ":")
}

// Key returns the Redis key this store reads and writes.
func (s *RedisStore) Key() string {
	return s.key()
}

// Save overwrites the stored Session.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the stored Session, or (nil, nil) when the key is missing.
func (s *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// Clear deletes the stored Session. Clearing an empty store is not an error.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping measures the round-trip to Redis.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
