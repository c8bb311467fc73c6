package repositories

import (
	"context"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// StateRepository persists the registry blob under a fixed namespace
type StateRepository interface {
	// Load returns the stored state, or nil when nothing was saved yet
	Load(ctx context.Context, namespace string) (*entities.RegistryState, error)

	// Save overwrites the stored state
	Save(ctx context.Context, namespace string, state *entities.RegistryState) error
}
