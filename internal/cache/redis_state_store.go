package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "oauth:state:"

// RedisStateStore keeps the PKCE verifier of an in-flight login keyed by its
// OAuth state value.
type RedisStateStore struct {
	client redis.UniversalClient
}

func NewRedisStateStore(client redis.UniversalClient) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// SaveState stores verifier under state for ttl.
func (s *RedisStateStore) SaveState(ctx context.Context, state, verifier string, ttl time.Duration) error {
	if err := s.client.Set(ctx, statePrefix+state, verifier, ttl).Err(); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// TakeState loads and deletes the verifier in one step so a state value can
// be redeemed once. ok is false when the state is unknown or expired.
func (s *RedisStateStore) TakeState(ctx context.Context, state string) (string, bool, error) {
	verifier, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load state: %w", err)
	}
	return verifier, true, nil
}
