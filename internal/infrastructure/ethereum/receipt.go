package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// ReceiptSource returns transaction receipts
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ReceiptDecoder rebuilds the ERC-20 transfers of a transaction from its
// receipt logs
type ReceiptDecoder struct {
	receipts ReceiptSource
	metadata *MetadataFetcher
	chainID  int64
	logger   *zap.Logger
}

// NewReceiptDecoder creates a decoder for the node's chain
func NewReceiptDecoder(receipts ReceiptSource, metadata *MetadataFetcher, chainID int64, logger *zap.Logger) *ReceiptDecoder {
	return &ReceiptDecoder{
		receipts: receipts,
		metadata: metadata,
		chainID:  chainID,
		logger:   logger,
	}
}

// ChainID returns the chain the decoder reads receipts from
func (d *ReceiptDecoder) ChainID() int64 {
	return d.chainID
}

// TransfersForTx returns the ERC-20 transfers emitted by txHash, in log order,
// with symbol and decimals resolved through token metadata
func (d *ReceiptDecoder) TransfersForTx(ctx context.Context, txHash string) ([]entities.TokenTransfer, error) {
	receipt, err := d.receipts.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt for %s: %w", txHash, err)
	}

	transfers, skipped := ParseTransferLogs(receipt.Logs)
	if len(skipped) > 0 {
		d.logger.Debug("Skipped non-transfer logs",
			zap.String("tx_hash", txHash),
			zap.Int("count", len(skipped)),
		)
	}
	if len(transfers) == 0 {
		return transfers, nil
	}

	tokens := make([]string, 0, len(transfers))
	seen := make(map[string]bool)
	for _, t := range transfers {
		if !seen[t.ContractAddress] {
			seen[t.ContractAddress] = true
			tokens = append(tokens, t.ContractAddress)
		}
	}

	metadata := d.metadata.Resolve(ctx, tokens)
	for i := range transfers {
		if m, ok := metadata[transfers[i].ContractAddress]; ok {
			transfers[i].Symbol = m.Symbol
			transfers[i].Decimals = m.Decimals
		}
	}

	return transfers, nil
}
