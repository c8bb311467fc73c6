package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ensure StateRepo implements StateRepository
var _ repositories.StateRepository = (*StateRepo)(nil)

// StateRepo persists the registry blob in the app_state table
type StateRepo struct {
	db *sqlx.DB
}

// NewStateRepo creates a new state repository
func NewStateRepo(db *sqlx.DB) *StateRepo {
	return &StateRepo{db: db}
}

type stateRow struct {
	Namespace string `db:"namespace"`
	State     []byte `db:"state"`
}

// Load retrieves the state saved under namespace, nil when none exists
func (r *StateRepo) Load(ctx context.Context, namespace string) (*entities.RegistryState, error) {
	var row stateRow
	query := `SELECT namespace, state FROM app_state WHERE namespace = $1`

	if err := r.db.GetContext(ctx, &row, query, namespace); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get app state: %w", err)
	}

	var state entities.RegistryState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode app state: %w", err)
	}

	return &state, nil
}

// Save creates or replaces the state saved under namespace
func (r *StateRepo) Save(ctx context.Context, namespace string, state *entities.RegistryState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode app state: %w", err)
	}

	query := `
		INSERT INTO app_state (namespace, state)
		VALUES ($1, $2)
		ON CONFLICT (namespace) DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, namespace, data); err != nil {
		return fmt.Errorf("failed to upsert app state: %w", err)
	}

	return nil
}
