package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/aggregator"
	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
	"github.com/bimakw/wallet-dashboard/internal/pkg/format"
)

// AllocationLimit is the number of holdings shown in the allocation breakdown
const AllocationLimit = 10

// PortfolioService provides business logic for wallet portfolios
type PortfolioService struct {
	gateway repositories.DataGateway
	store   *registry.Store
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewPortfolioService creates a new portfolio service. cache may be nil.
func NewPortfolioService(
	gateway repositories.DataGateway,
	store *registry.Store,
	cache Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		gateway: gateway,
		store:   store,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// PortfolioQuery narrows and orders the holdings list
type PortfolioQuery struct {
	Filter string
	Sort   aggregator.SortKey
}

// HoldingDTO is the API representation of a token balance
type HoldingDTO struct {
	ContractAddress  string  `json:"contract_address"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Decimals         uint8   `json:"decimals"`
	Balance          string  `json:"balance"`           // Raw integer
	BalanceFormatted string  `json:"balance_formatted"` // Human readable
	Quote            float64 `json:"quote"`
	QuoteFormatted   string  `json:"quote_formatted"`
	QuoteRate        float64 `json:"quote_rate"`
	LogoURL          string  `json:"logo_url,omitempty"`
	ExplorerURL      string  `json:"explorer_url"`
	Watched          bool    `json:"watched"`
}

// SummaryDTO is the API representation of a portfolio summary
type SummaryDTO struct {
	WalletAddress       string  `json:"wallet_address"`
	ChainID             int64   `json:"chain_id"`
	TotalValueUSD       float64 `json:"total_value_usd"`
	TotalValueFormatted string  `json:"total_value_formatted"`
	TokenCount          int     `json:"token_count"`
	HighValueCount      int     `json:"high_value_count"`
}

// AllocationDTO is one slice of the allocation breakdown
type AllocationDTO struct {
	entities.AllocationSlice
	ValueFormatted string `json:"value_formatted"`
}

// PortfolioDTO is the API representation of a wallet portfolio on one chain
type PortfolioDTO struct {
	WalletAddress string          `json:"wallet_address"`
	ChainID       int64           `json:"chain_id"`
	Holdings      []HoldingDTO    `json:"holdings"`
	Summary       SummaryDTO      `json:"summary"`
	Allocation    []AllocationDTO `json:"allocation"`
	UpdatedAt     string          `json:"updated_at"`
}

// PortfolioResponse wraps portfolio data for API response
type PortfolioResponse struct {
	Data PortfolioDTO `json:"data"`
}

// SummaryResponse wraps a portfolio summary for API response
type SummaryResponse struct {
	Data SummaryDTO `json:"data"`
}

// GetPortfolio returns the holdings of a wallet filtered and sorted by query,
// together with the summary and allocation of the unfiltered list
func (s *PortfolioService) GetPortfolio(ctx context.Context, walletAddress string, chainID int64, query PortfolioQuery) (*PortfolioResponse, error) {
	walletAddress = strings.ToLower(walletAddress)
	chainID = resolveChainID(s.store, chainID)

	balances, err := s.balances(ctx, walletAddress, chainID, false)
	if err != nil {
		return nil, err
	}

	sortKey := query.Sort
	if sortKey == "" {
		sortKey = aggregator.SortByValue
	}
	visible := aggregator.SortAndFilter(balances, query.Filter, sortKey)

	holdings := make([]HoldingDTO, len(visible))
	for i, b := range visible {
		holdings[i] = s.toHoldingDTO(b, chainID)
	}

	slices := aggregator.Allocation(balances, AllocationLimit)
	allocation := make([]AllocationDTO, len(slices))
	for i, a := range slices {
		allocation[i] = AllocationDTO{
			AllocationSlice: a,
			ValueFormatted:  format.FormatCurrency(a.ValueUSD),
		}
	}

	return &PortfolioResponse{
		Data: PortfolioDTO{
			WalletAddress: walletAddress,
			ChainID:       chainID,
			Holdings:      holdings,
			Summary:       toSummaryDTO(walletAddress, chainID, aggregator.Summarize(balances)),
			Allocation:    allocation,
			UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// GetSummary returns the headline numbers of a wallet on one chain
func (s *PortfolioService) GetSummary(ctx context.Context, walletAddress string, chainID int64) (*SummaryResponse, error) {
	walletAddress = strings.ToLower(walletAddress)
	chainID = resolveChainID(s.store, chainID)

	balances, err := s.balances(ctx, walletAddress, chainID, false)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		Data: toSummaryDTO(walletAddress, chainID, aggregator.Summarize(balances)),
	}, nil
}

// Warm fetches balances from the gateway and replaces the cached copy
func (s *PortfolioService) Warm(ctx context.Context, walletAddress string, chainID int64) error {
	_, err := s.balances(ctx, strings.ToLower(walletAddress), chainID, true)
	return err
}

// Invalidate drops every cached response of a wallet
func (s *PortfolioService) Invalidate(ctx context.Context, walletAddress string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePrefix(ctx, walletPrefix(walletAddress)); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (s *PortfolioService) balances(ctx context.Context, walletAddress string, chainID int64, refresh bool) ([]entities.TokenBalance, error) {
	cacheKey := balancesKey(walletAddress, chainID)

	if s.cache != nil && !refresh {
		var cached []entities.TokenBalance
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	balances, err := s.gateway.GetBalances(ctx, walletAddress, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, balances, s.ttl); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return balances, nil
}

func (s *PortfolioService) toHoldingDTO(b entities.TokenBalance, chainID int64) HoldingDTO {
	watched := false
	if s.store != nil {
		watched = s.store.IsInWatchlist(b.ContractAddress, chainID)
	}

	return HoldingDTO{
		ContractAddress:  b.ContractAddress,
		Name:             b.Name,
		Symbol:           b.Symbol,
		Decimals:         b.Decimals,
		Balance:          b.Balance,
		BalanceFormatted: format.FormatRawTokenAmount(b.Balance, b.Decimals),
		Quote:            b.Quote,
		QuoteFormatted:   format.FormatCurrency(b.Quote),
		QuoteRate:        b.QuoteRate,
		LogoURL:          b.LogoURL,
		ExplorerURL:      chains.ExplorerTokenURL(chainID, b.ContractAddress),
		Watched:          watched,
	}
}

func toSummaryDTO(walletAddress string, chainID int64, summary entities.PortfolioSummary) SummaryDTO {
	return SummaryDTO{
		WalletAddress:       walletAddress,
		ChainID:             chainID,
		TotalValueUSD:       summary.TotalValueUSD,
		TotalValueFormatted: format.FormatCurrency(summary.TotalValueUSD),
		TokenCount:          summary.TokenCount,
		HighValueCount:      summary.HighValueCount,
	}
}
