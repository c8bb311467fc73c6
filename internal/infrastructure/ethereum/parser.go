package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// TransferEventSignature is the keccak256 hash of Transfer(address,address,uint256)
var TransferEventSignature = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// ParseTransferEvent parses a raw ERC-20 Transfer log into a token transfer.
// Symbol and decimals are left for the caller to resolve.
func ParseTransferEvent(log types.Log) (*entities.TokenTransfer, error) {
	// ERC-721 transfers index the token id and carry four topics
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("invalid number of topics: expected 3, got %d", len(log.Topics))
	}

	if log.Topics[0] != TransferEventSignature {
		return nil, fmt.Errorf("not a Transfer event")
	}

	// Topics[1] = from, Topics[2] = to, both left-padded to 32 bytes
	fromAddress := common.BytesToAddress(log.Topics[1].Bytes())
	toAddress := common.BytesToAddress(log.Topics[2].Bytes())

	if len(log.Data) != 32 {
		return nil, fmt.Errorf("invalid data length: expected 32, got %d", len(log.Data))
	}
	value := new(big.Int).SetBytes(log.Data)

	return &entities.TokenTransfer{
		ContractAddress: strings.ToLower(log.Address.Hex()),
		FromAddress:     strings.ToLower(fromAddress.Hex()),
		ToAddress:       strings.ToLower(toAddress.Hex()),
		Balance:         value.String(),
	}, nil
}

// ParseTransferLogs parses logs into token transfers in log order.
// Returns parsed transfers and the indices of logs that were not ERC-20 transfers.
func ParseTransferLogs(logs []*types.Log) ([]entities.TokenTransfer, []int) {
	transfers := make([]entities.TokenTransfer, 0, len(logs))
	failedIndices := make([]int, 0)

	for i, log := range logs {
		if log == nil {
			failedIndices = append(failedIndices, i)
			continue
		}

		transfer, err := ParseTransferEvent(*log)
		if err != nil {
			failedIndices = append(failedIndices, i)
			continue
		}

		transfers = append(transfers, *transfer)
	}

	return transfers, failedIndices
}

// IsTransferEvent checks if a log is an ERC-20 Transfer event
func IsTransferEvent(log types.Log) bool {
	return len(log.Topics) == 3 && log.Topics[0] == TransferEventSignature
}
