package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-dashboard/internal/application/classifier"
	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
	"github.com/bimakw/wallet-dashboard/internal/pkg/format"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	enrichWorkers = 4
)

// TransferEnricher recovers the token transfers of a transaction from the
// chain itself. It serves a single chain.
type TransferEnricher interface {
	ChainID() int64
	TransfersForTx(ctx context.Context, txHash string) ([]entities.TokenTransfer, error)
}

// TransactionService provides classified transaction history
type TransactionService struct {
	gateway  repositories.DataGateway
	store    *registry.Store
	cache    Cache
	ttl      time.Duration
	enricher TransferEnricher
	logger   *zap.Logger
}

// NewTransactionService creates a new transaction service. cache and
// enricher may be nil.
func NewTransactionService(
	gateway repositories.DataGateway,
	store *registry.Store,
	cache Cache,
	ttl time.Duration,
	enricher TransferEnricher,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		gateway:  gateway,
		store:    store,
		cache:    cache,
		ttl:      ttl,
		enricher: enricher,
		logger:   logger,
	}
}

// MovementDTO is the API representation of a moved asset
type MovementDTO struct {
	Symbol          string  `json:"symbol"`
	Amount          string  `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	ValueUSD        float64 `json:"value_usd"`
	ValueFormatted  string  `json:"value_formatted"`
	Decimals        uint8   `json:"decimals"`
	LogoURL         string  `json:"logo_url,omitempty"`
}

// TransactionDTO is the API representation of a classified transaction
type TransactionDTO struct {
	TxHash         string          `json:"tx_hash"`
	BlockSignedAt  string          `json:"block_signed_at"`
	BlockHeight    int64           `json:"block_height"`
	FromAddress    string          `json:"from_address"`
	ToAddress      string          `json:"to_address"`
	Successful     bool            `json:"successful"`
	Kind           entities.TxKind `json:"kind"`
	PrimaryToken   *MovementDTO    `json:"primary_token,omitempty"`
	SecondaryToken *MovementDTO    `json:"secondary_token,omitempty"`
	GasQuote       float64         `json:"gas_quote"`
	GasFormatted   string          `json:"gas_formatted"`
	ExplorerURL    string          `json:"explorer_url"`
}

// TransactionsDTO is a page of classified transactions
type TransactionsDTO struct {
	WalletAddress string           `json:"wallet_address"`
	ChainID       int64            `json:"chain_id"`
	ExplorerName  string           `json:"explorer_name"`
	Transactions  []TransactionDTO `json:"transactions"`
}

// TransactionsResponse wraps transactions for API response
type TransactionsResponse struct {
	Data TransactionsDTO `json:"data"`
}

// NormalizePageSize clamps a requested page size to [1, MaxPageSize],
// zero or negative meaning DefaultPageSize
func NormalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}

// GetTransactions returns the latest transactions of a wallet classified from
// the wallet's point of view
func (s *TransactionService) GetTransactions(ctx context.Context, walletAddress string, chainID int64, pageSize int) (*TransactionsResponse, error) {
	walletAddress = strings.ToLower(walletAddress)
	chainID = resolveChainID(s.store, chainID)
	pageSize = NormalizePageSize(pageSize)

	txs, err := s.transactions(ctx, walletAddress, chainID, pageSize, false)
	if err != nil {
		return nil, err
	}

	items := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		items[i] = toTransactionDTO(tx, walletAddress, chainID)
	}

	return &TransactionsResponse{
		Data: TransactionsDTO{
			WalletAddress: walletAddress,
			ChainID:       chainID,
			ExplorerName:  chains.ExplorerName(chainID),
			Transactions:  items,
		},
	}, nil
}

// Warm fetches transactions from the gateway and replaces the cached copy
func (s *TransactionService) Warm(ctx context.Context, walletAddress string, chainID int64, pageSize int) error {
	_, err := s.transactions(ctx, strings.ToLower(walletAddress), chainID, NormalizePageSize(pageSize), true)
	return err
}

func (s *TransactionService) transactions(ctx context.Context, walletAddress string, chainID int64, pageSize int, refresh bool) ([]entities.Transaction, error) {
	cacheKey := transactionsKey(walletAddress, chainID, pageSize)

	if s.cache != nil && !refresh {
		var cached []entities.Transaction
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	txs, err := s.gateway.GetTransactions(ctx, walletAddress, chainID, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	s.enrich(ctx, txs, chainID)

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, txs, s.ttl); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return txs, nil
}

// enrich fills in the transfers of transactions the gateway returned without
// any, when an enricher serves chainID. Failures leave the transaction as is.
func (s *TransactionService) enrich(ctx context.Context, txs []entities.Transaction, chainID int64) {
	if s.enricher == nil || s.enricher.ChainID() != chainID {
		return
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)

	for i := range txs {
		if len(txs[i].Transfers) > 0 {
			continue
		}
		i := i
		g.Go(func() error {
			transfers, err := s.enricher.TransfersForTx(gCtx, txs[i].TxHash)
			if err != nil {
				s.logger.Warn("Failed to enrich transaction",
					zap.String("tx_hash", txs[i].TxHash),
					zap.Error(err),
				)
				return nil
			}
			txs[i].Transfers = transfers
			return nil
		})
	}

	_ = g.Wait()
}

func toTransactionDTO(tx entities.Transaction, viewer string, chainID int64) TransactionDTO {
	c := classifier.Classify(tx, viewer, chainID)

	return TransactionDTO{
		TxHash:         tx.TxHash,
		BlockSignedAt:  tx.BlockSignedAt.UTC().Format(time.RFC3339),
		BlockHeight:    tx.BlockHeight,
		FromAddress:    tx.FromAddress,
		ToAddress:      tx.ToAddress,
		Successful:     tx.Successful,
		Kind:           c.Kind(),
		PrimaryToken:   toMovementDTO(c.Primary()),
		SecondaryToken: toMovementDTO(c.Secondary()),
		GasQuote:       tx.GasQuote,
		GasFormatted:   format.FormatCurrency(tx.GasQuote),
		ExplorerURL:    chains.ExplorerTxURL(chainID, tx.TxHash),
	}
}

func toMovementDTO(m *entities.TokenMovement) *MovementDTO {
	if m == nil {
		return nil
	}
	return &MovementDTO{
		Symbol:          m.Symbol,
		Amount:          m.Amount,
		AmountFormatted: format.FormatRawTokenAmount(m.Amount, m.Decimals),
		ValueUSD:        m.ValueUSD,
		ValueFormatted:  format.FormatCurrency(m.ValueUSD),
		Decimals:        m.Decimals,
		LogoURL:         m.LogoURL,
	}
}
