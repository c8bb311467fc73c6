package repositories

import (
	"context"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// DataGateway fetches wallet data from a remote indexing API.
// Implementations return either complete records or an error, never both.
type DataGateway interface {
	// GetBalances returns the token balances of an address on a chain
	GetBalances(ctx context.Context, address string, chainID int64) ([]entities.TokenBalance, error)

	// GetTransactions returns the most recent transactions of an address
	GetTransactions(ctx context.Context, address string, chainID int64, pageSize int) ([]entities.Transaction, error)

	// GetNFTs returns the NFTs held by an address on a chain
	GetNFTs(ctx context.Context, address string, chainID int64) ([]entities.NFTEntry, error)
}
