package ethereum

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestTransferEventSignature(t *testing.T) {
	// The keccak256 hash of "Transfer(address,address,uint256)"
	expected := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	if TransferEventSignature != expected {
		t.Errorf("TransferEventSignature mismatch: expected %s, got %s", expected.Hex(), TransferEventSignature.Hex())
	}
}

func TestParseTransferEvent_Success(t *testing.T) {
	fromAddr := common.HexToAddress("0x1234567890123456789012345678901234567890")
	toAddr := common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	tokenAddr := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7") // USDT

	// 1 USDT with 6 decimals
	value := big.NewInt(1000000)

	log := types.Log{
		Address: tokenAddr,
		Topics: []common.Hash{
			TransferEventSignature,
			common.BytesToHash(fromAddr.Bytes()),
			common.BytesToHash(toAddr.Bytes()),
		},
		Data: common.LeftPadBytes(value.Bytes(), 32),
	}

	transfer, err := ParseTransferEvent(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.ContractAddress != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
		t.Errorf("ContractAddress mismatch: expected lowercase, got %s", transfer.ContractAddress)
	}
	if transfer.FromAddress != "0x1234567890123456789012345678901234567890" {
		t.Errorf("FromAddress mismatch: got %s", transfer.FromAddress)
	}
	if transfer.ToAddress != "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd" {
		t.Errorf("ToAddress mismatch: got %s", transfer.ToAddress)
	}
	if transfer.Balance != "1000000" {
		t.Errorf("Balance mismatch: expected 1000000, got %s", transfer.Balance)
	}
	if transfer.Symbol != "" || transfer.Decimals != 0 {
		t.Errorf("expected unresolved metadata, got %s/%d", transfer.Symbol, transfer.Decimals)
	}
}

func TestParseTransferEvent_Values(t *testing.T) {
	large, _ := new(big.Int).SetString("1000000000000000000000000000", 10) // 1 billion * 10^18

	tests := []struct {
		name     string
		value    *big.Int
		expected string
	}{
		{"zero", big.NewInt(0), "0"},
		{"one", big.NewInt(1), "1"},
		{"large", large, "1000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := createValidTransferLog()
			log.Data = common.LeftPadBytes(tt.value.Bytes(), 32)

			transfer, err := ParseTransferEvent(log)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if transfer.Balance != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, transfer.Balance)
			}
		})
	}
}

func TestParseTransferEvent_InvalidTopicsCount(t *testing.T) {
	tests := []struct {
		name      string
		topicsLen int
	}{
		{"no topics", 0},
		{"one topic", 1},
		{"two topics", 2},
		{"four topics (ERC-721)", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics := make([]common.Hash, tt.topicsLen)
			if tt.topicsLen > 0 {
				topics[0] = TransferEventSignature
			}

			log := types.Log{
				Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
				Topics:  topics,
				Data:    make([]byte, 32),
			}

			_, err := ParseTransferEvent(log)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "topics") {
				t.Errorf("error should mention topics: %v", err)
			}
		})
	}
}

func TestParseTransferEvent_WrongEventSignature(t *testing.T) {
	// Approval(address,address,uint256)
	approvalSig := common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")

	log := createValidTransferLog()
	log.Topics[0] = approvalSig

	_, err := ParseTransferEvent(log)
	if err == nil {
		t.Fatal("expected error for wrong event signature")
	}
	if !strings.Contains(err.Error(), "not a Transfer event") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseTransferEvent_InvalidDataLength(t *testing.T) {
	tests := []struct {
		name    string
		dataLen int
	}{
		{"empty data", 0},
		{"short data", 16},
		{"long data", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := createValidTransferLog()
			log.Data = make([]byte, tt.dataLen)

			_, err := ParseTransferEvent(log)
			if err == nil {
				t.Fatal("expected error for invalid data length")
			}
			if !strings.Contains(err.Error(), "invalid data length") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTransferEvent_AddressNormalization(t *testing.T) {
	log := types.Log{
		Address: common.HexToAddress("0xDAC17F958D2EE523A2206206994597C13D831EC7"),
		Topics: []common.Hash{
			TransferEventSignature,
			common.BytesToHash(common.HexToAddress("0xABCDEF1234567890ABCDEF1234567890ABCDEF12").Bytes()),
			common.BytesToHash(common.HexToAddress("0x123456ABCDEF123456ABCDEF123456ABCDEF1234").Bytes()),
		},
		Data: make([]byte, 32),
	}

	transfer, err := ParseTransferEvent(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.ContractAddress != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
		t.Errorf("ContractAddress should be lowercase: %s", transfer.ContractAddress)
	}
	if transfer.FromAddress != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("FromAddress should be lowercase: %s", transfer.FromAddress)
	}
	if transfer.ToAddress != "0x123456abcdef123456abcdef123456abcdef1234" {
		t.Errorf("ToAddress should be lowercase: %s", transfer.ToAddress)
	}
}

func TestParseTransferLogs(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		a, b := createValidTransferLog(), createValidTransferLog()
		b.Data = common.LeftPadBytes(big.NewInt(2).Bytes(), 32)

		transfers, failed := ParseTransferLogs([]*types.Log{&a, &b})

		if len(transfers) != 2 {
			t.Fatalf("expected 2 transfers, got %d", len(transfers))
		}
		if len(failed) != 0 {
			t.Errorf("expected 0 failed, got %d", len(failed))
		}
		if transfers[1].Balance != "2" {
			t.Errorf("expected log order kept, got %s", transfers[1].Balance)
		}
	})

	t.Run("invalid and nil logs are reported", func(t *testing.T) {
		valid := createValidTransferLog()
		invalid := types.Log{
			Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
			Topics:  []common.Hash{TransferEventSignature}, // only 1 topic
			Data:    make([]byte, 32),
		}

		transfers, failed := ParseTransferLogs([]*types.Log{&valid, &invalid, nil})

		if len(transfers) != 1 {
			t.Errorf("expected 1 transfer, got %d", len(transfers))
		}
		if len(failed) != 2 || failed[0] != 1 || failed[1] != 2 {
			t.Errorf("expected failed indices [1 2], got %v", failed)
		}
	})

	t.Run("empty", func(t *testing.T) {
		transfers, failed := ParseTransferLogs(nil)

		if len(transfers) != 0 || len(failed) != 0 {
			t.Errorf("expected nothing, got %d transfers and %d failed", len(transfers), len(failed))
		}
	})
}

func TestIsTransferEvent(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if !IsTransferEvent(createValidTransferLog()) {
			t.Error("expected IsTransferEvent to return true for valid Transfer log")
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		log := createValidTransferLog()
		log.Topics[0] = common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")
		if IsTransferEvent(log) {
			t.Error("expected IsTransferEvent to return false for non-Transfer log")
		}
	})

	for _, n := range []int{0, 1, 2, 4} {
		topics := make([]common.Hash, n)
		if n > 0 {
			topics[0] = TransferEventSignature
		}
		if IsTransferEvent(types.Log{Topics: topics}) {
			t.Errorf("expected false for %d topics", n)
		}
	}
}

func createValidTransferLog() types.Log {
	return types.Log{
		Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		Topics: []common.Hash{
			TransferEventSignature,
			common.BytesToHash(common.HexToAddress("0x1111111111111111111111111111111111111111").Bytes()),
			common.BytesToHash(common.HexToAddress("0x2222222222222222222222222222222222222222").Bytes()),
		},
		Data:   common.LeftPadBytes(big.NewInt(1000000).Bytes(), 32),
		TxHash: common.HexToHash("0x3333333333333333333333333333333333333333333333333333333333333333"),
	}
}
