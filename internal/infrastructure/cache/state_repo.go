package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
)

const stateKeyPrefix = "app_state:"

var _ repositories.StateRepository = (*RedisStateRepo)(nil)

// RedisStateRepo persists the registry blob as one Redis key per namespace,
// without expiry
type RedisStateRepo struct {
	client *redis.Client
}

// NewRedisStateRepo creates a state repository sharing the cache connection
func NewRedisStateRepo(c *RedisCache) *RedisStateRepo {
	return &RedisStateRepo{client: c.Client()}
}

// Load retrieves the state saved under namespace, nil when none exists
func (r *RedisStateRepo) Load(ctx context.Context, namespace string) (*entities.RegistryState, error) {
	data, err := r.client.Get(ctx, stateKeyPrefix+namespace).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get app state: %w", err)
	}

	var state entities.RegistryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode app state: %w", err)
	}

	return &state, nil
}

// Save replaces the state saved under namespace
func (r *RedisStateRepo) Save(ctx context.Context, namespace string, state *entities.RegistryState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode app state: %w", err)
	}

	if err := r.client.Set(ctx, stateKeyPrefix+namespace, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save app state: %w", err)
	}

	return nil
}
