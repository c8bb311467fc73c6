package entities

import (
	"time"
)

// Transaction is a wallet transaction with the token transfers it emitted
type Transaction struct {
	TxHash        string          `json:"tx_hash"`
	BlockSignedAt time.Time       `json:"block_signed_at"`
	BlockHeight   int64           `json:"block_height"`
	FromAddress   string          `json:"from_address"`
	ToAddress     string          `json:"to_address"`
	Successful    bool            `json:"successful"`
	Value         string          `json:"value"` // Native amount in wei
	ValueQuote    float64         `json:"value_quote"`
	GasQuote      float64         `json:"gas_quote"`
	Transfers     []TokenTransfer `json:"transfers"`
}

// TokenTransfer is a single ERC-20 Transfer log inside a transaction
type TokenTransfer struct {
	ContractAddress string  `json:"contract_address"`
	Symbol          string  `json:"symbol"`
	Decimals        uint8   `json:"decimals"`
	FromAddress     string  `json:"from_address"`
	ToAddress       string  `json:"to_address"`
	Balance         string  `json:"balance"`
	BalanceQuote    float64 `json:"balance_quote"`
	LogoURL         string  `json:"logo_url,omitempty"`
}
