package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
	"github.com/bimakw/wallet-dashboard/internal/pkg/format"
)

// NFTService keeps the registry's NFT cache in sync with the gateway
type NFTService struct {
	gateway repositories.DataGateway
	store   *registry.Store
	logger  *zap.Logger
}

// NewNFTService creates a new NFT service
func NewNFTService(gateway repositories.DataGateway, store *registry.Store, logger *zap.Logger) *NFTService {
	return &NFTService{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

// NFTDTO is the API representation of a cached NFT
type NFTDTO struct {
	entities.NFTEntry
	FloorPriceFormatted string `json:"floor_price_formatted,omitempty"`
	ExplorerURL         string `json:"explorer_url"`
}

// NFTListDTO is the NFT list of one chain
type NFTListDTO struct {
	ChainID int64    `json:"chain_id"`
	Count   int      `json:"count"`
	NFTs    []NFTDTO `json:"nfts"`
}

// NFTListResponse wraps NFTs for API response
type NFTListResponse struct {
	Data NFTListDTO `json:"data"`
}

// Fetch returns the wallet's NFTs straight from the gateway. The cache is
// left untouched.
func (s *NFTService) Fetch(ctx context.Context, walletAddress string, chainID int64) (*NFTListResponse, error) {
	chainID = resolveChainID(s.store, chainID)

	nfts, err := s.fetch(ctx, walletAddress, chainID)
	if err != nil {
		return nil, err
	}

	return newNFTListResponse(chainID, nfts), nil
}

// Refresh fetches the wallet's NFTs and replaces the cached NFTs of that
// chain. Entries of other chains are kept.
func (s *NFTService) Refresh(ctx context.Context, walletAddress string, chainID int64) (*NFTListResponse, error) {
	chainID = resolveChainID(s.store, chainID)

	nfts, err := s.fetch(ctx, walletAddress, chainID)
	if err != nil {
		return nil, err
	}

	s.store.ReplaceNFTsForChain(ctx, chainID, nfts)

	s.logger.Debug("Refreshed NFT cache",
		zap.String("wallet", strings.ToLower(walletAddress)),
		zap.Int64("chain_id", chainID),
		zap.Int("count", len(nfts)),
	)

	return s.List(chainID), nil
}

// ReplaceAll swaps the whole NFT cache, every chain included
func (s *NFTService) ReplaceAll(ctx context.Context, nfts []entities.NFTEntry) []entities.NFTEntry {
	s.store.ReplaceNFTs(ctx, nfts)
	s.logger.Info("Replaced NFT cache", zap.Int("count", len(nfts)))
	return s.store.NFTs()
}

func (s *NFTService) fetch(ctx context.Context, walletAddress string, chainID int64) ([]entities.NFTEntry, error) {
	nfts, err := s.gateway.GetNFTs(ctx, strings.ToLower(walletAddress), chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get nfts: %w", err)
	}
	return nfts, nil
}

// List returns the cached NFTs of a chain
func (s *NFTService) List(chainID int64) *NFTListResponse {
	chainID = resolveChainID(s.store, chainID)
	return newNFTListResponse(chainID, s.store.NFTsForChain(chainID))
}

func newNFTListResponse(chainID int64, entries []entities.NFTEntry) *NFTListResponse {
	nfts := make([]NFTDTO, len(entries))
	for i, n := range entries {
		nfts[i] = toNFTDTO(n)
	}

	return &NFTListResponse{
		Data: NFTListDTO{
			ChainID: chainID,
			Count:   len(nfts),
			NFTs:    nfts,
		},
	}
}

func toNFTDTO(n entities.NFTEntry) NFTDTO {
	dto := NFTDTO{
		NFTEntry:    n,
		ExplorerURL: chains.ExplorerNFTURL(n.ChainID, n.ContractAddress, n.TokenID),
	}
	if n.FloorPriceUSD != nil {
		dto.FloorPriceFormatted = format.FormatCurrency(*n.FloorPriceUSD)
	}
	return dto
}
