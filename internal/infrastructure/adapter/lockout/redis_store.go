package lockout

import (
	"context"
	"errors"
	"fmt"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces lockout counters in a shared redis
const DefaultKeyPrefix = "atm:lockout:"

// RedisStore keeps failure counts in redis. The window is a TTL set on
// the first failure, so a burst of failures expires together.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	window    coreport.Duration
}

var _ security.LockoutStore = (*RedisStore)(nil)

// NewRedisStore creates a redis backed store. A zero window keeps counts until Reset.
func NewRedisStore(client redis.UniversalClient, keyPrefix string, window coreport.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		window:    window,
	}
}

func (s *RedisStore) key(name string) string {
	return s.keyPrefix + name
}

// Failures returns the current consecutive failure count for name
func (s *RedisStore) Failures(ctx context.Context, name string) (int, error) {
	count, err := s.client.Get(ctx, s.key(name)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: lockout backend: %v", errs.ErrStoreUnavailable, err)
	}
	return count, nil
}

// RecordFailure increments the failure count and returns the new value
func (s *RedisStore) RecordFailure(ctx context.Context, name string) (int, error) {
	count, err := s.client.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: lockout backend: %v", errs.ErrStoreUnavailable, err)
	}

	if count == 1 && s.window > 0 {
		if err := s.client.Expire(ctx, s.key(name), s.window.Std()).Err(); err != nil {
			return 0, fmt.Errorf("%w: lockout backend: %v", errs.ErrStoreUnavailable, err)
		}
	}

	return int(count), nil
}

// Reset clears the failure count for name
func (s *RedisStore) Reset(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("%w: lockout backend: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}
