package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/ethereum"
)

// MetadataResolver reads ERC-20 metadata from the chain
type MetadataResolver interface {
	FetchMetadata(ctx context.Context, tokenAddress string) (*ethereum.TokenMetadata, error)
}

// CustomTokenService validates and stores user-declared tokens
type CustomTokenService struct {
	store           *registry.Store
	resolver        MetadataResolver
	resolverChainID int64
	logger          *zap.Logger
}

// NewCustomTokenService creates a new custom token service. resolver may be
// nil; when set it only serves tokens on resolverChainID.
func NewCustomTokenService(store *registry.Store, resolver MetadataResolver, resolverChainID int64, logger *zap.Logger) *CustomTokenService {
	return &CustomTokenService{
		store:           store,
		resolver:        resolver,
		resolverChainID: resolverChainID,
		logger:          logger,
	}
}

// Add validates input, completes missing metadata when possible and upserts
// the token
func (s *CustomTokenService) Add(ctx context.Context, input entities.CustomTokenInput) (*entities.CustomToken, error) {
	input.ContractAddress = strings.TrimSpace(input.ContractAddress)
	if !common.IsHexAddress(input.ContractAddress) || !strings.HasPrefix(input.ContractAddress, "0x") {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAddress, input.ContractAddress)
	}
	input.ContractAddress = strings.ToLower(input.ContractAddress)
	input.ChainID = resolveChainID(s.store, input.ChainID)
	input.Name = strings.TrimSpace(input.Name)
	input.Symbol = strings.TrimSpace(input.Symbol)

	if s.needsMetadata(input) {
		s.complete(ctx, &input)
	}

	if input.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if input.Name == "" {
		input.Name = input.Symbol
	}

	token := s.store.UpsertCustomToken(ctx, input)
	return &token, nil
}

// Remove deletes a custom token by id
func (s *CustomTokenService) Remove(ctx context.Context, id string) {
	s.store.RemoveCustomToken(ctx, id)
}

// List returns the custom tokens of a chain
func (s *CustomTokenService) List(chainID int64) []entities.CustomToken {
	return s.store.ListCustomTokensForChain(resolveChainID(s.store, chainID))
}

func (s *CustomTokenService) needsMetadata(input entities.CustomTokenInput) bool {
	if s.resolver == nil || input.ChainID != s.resolverChainID {
		return false
	}
	return input.Name == "" || input.Symbol == "" || input.Decimals == nil
}

// complete fills blank fields from on-chain metadata; user-provided values win
func (s *CustomTokenService) complete(ctx context.Context, input *entities.CustomTokenInput) {
	metadata, err := s.resolver.FetchMetadata(ctx, input.ContractAddress)
	if err != nil {
		s.logger.Warn("Failed to resolve token metadata",
			zap.String("token", input.ContractAddress),
			zap.Error(err),
		)
		return
	}

	if input.Name == "" {
		input.Name = metadata.Name
	}
	if input.Symbol == "" {
		input.Symbol = metadata.Symbol
	}
	if input.Decimals == nil {
		decimals := metadata.Decimals
		input.Decimals = &decimals
	}
}
