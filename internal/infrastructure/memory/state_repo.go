package memory

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
)

var _ repositories.StateRepository = (*StateRepo)(nil)

// StateRepo keeps the registry blob for the lifetime of the process
type StateRepo struct {
	blobs *cache.Cache
}

// NewStateRepo creates an empty state repository
func NewStateRepo() *StateRepo {
	return &StateRepo{blobs: cache.New(cache.NoExpiration, 0)}
}

// Load retrieves the state saved under namespace, nil when none exists
func (r *StateRepo) Load(_ context.Context, namespace string) (*entities.RegistryState, error) {
	x, found := r.blobs.Get(namespace)
	if !found {
		return nil, nil
	}

	data, ok := x.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected state type %T", x)
	}

	var state entities.RegistryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode app state: %w", err)
	}
	return &state, nil
}

// Save replaces the state saved under namespace
func (r *StateRepo) Save(_ context.Context, namespace string, state *entities.RegistryState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode app state: %w", err)
	}
	r.blobs.Set(namespace, data, cache.NoExpiration)
	return nil
}
