package testutil

import (
	"time"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// Common test addresses
const (
	USDTAddress   = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	USDCAddress   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	WETHAddress   = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	DAIAddress    = "0x6b175474e89094c44da98b954eedeac495271d0f"
	BAYCAddress   = "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"
	AliceAddress  = "0x1111111111111111111111111111111111111111"
	BobAddress    = "0x2222222222222222222222222222222222222222"
	CharlieAddr   = "0x3333333333333333333333333333333333333333"
	RouterAddress = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
)

// CreateTestTransfer creates a token transfer of 1 USDT from Alice to Bob
func CreateTestTransfer(opts ...TransferOption) entities.TokenTransfer {
	t := entities.TokenTransfer{
		ContractAddress: USDTAddress,
		Symbol:          "USDT",
		Decimals:        6,
		FromAddress:     AliceAddress,
		ToAddress:       BobAddress,
		Balance:         "1000000", // 1 USDT
		BalanceQuote:    1,
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

type TransferOption func(*entities.TokenTransfer)

func WithTransferToken(addr, symbol string, decimals uint8) TransferOption {
	return func(t *entities.TokenTransfer) {
		t.ContractAddress = addr
		t.Symbol = symbol
		t.Decimals = decimals
	}
}

func WithFromAddress(addr string) TransferOption {
	return func(t *entities.TokenTransfer) {
		t.FromAddress = addr
	}
}

func WithToAddress(addr string) TransferOption {
	return func(t *entities.TokenTransfer) {
		t.ToAddress = addr
	}
}

func WithAmount(balance string, quote float64) TransferOption {
	return func(t *entities.TokenTransfer) {
		t.Balance = balance
		t.BalanceQuote = quote
	}
}

// CreateTestTransaction creates a successful zero-value transaction from Alice to Bob
func CreateTestTransaction(opts ...TransactionOption) entities.Transaction {
	tx := entities.Transaction{
		TxHash:        "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		BlockSignedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		BlockHeight:   12345678,
		FromAddress:   AliceAddress,
		ToAddress:     BobAddress,
		Successful:    true,
		Value:         "0",
		Transfers:     []entities.TokenTransfer{},
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx
}

type TransactionOption func(*entities.Transaction)

func TxWithHash(hash string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.TxHash = hash
	}
}

func TxWithFrom(addr string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.FromAddress = addr
	}
}

func TxWithTo(addr string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.ToAddress = addr
	}
}

func TxWithNativeValue(value string, quote float64) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Value = value
		tx.ValueQuote = quote
	}
}

func TxWithTransfers(transfers ...entities.TokenTransfer) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Transfers = transfers
	}
}

func TxWithStatus(successful bool) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Successful = successful
	}
}

// CreateTestBalance creates a balance of 1 USDT worth $1
func CreateTestBalance(opts ...BalanceOption) entities.TokenBalance {
	b := entities.TokenBalance{
		ContractAddress: USDTAddress,
		Name:            "Tether USD",
		Symbol:          "USDT",
		Decimals:        6,
		Balance:         "1000000",
		Quote:           1,
		QuoteRate:       1,
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

type BalanceOption func(*entities.TokenBalance)

func BalanceWithToken(addr, name, symbol string, decimals uint8) BalanceOption {
	return func(b *entities.TokenBalance) {
		b.ContractAddress = addr
		b.Name = name
		b.Symbol = symbol
		b.Decimals = decimals
	}
}

func BalanceWithAmount(raw string, quote float64) BalanceOption {
	return func(b *entities.TokenBalance) {
		b.Balance = raw
		b.Quote = quote
	}
}

// CreateTestNFT creates a BAYC token on mainnet
func CreateTestNFT(opts ...NFTOption) entities.NFTEntry {
	n := entities.NFTEntry{
		ContractAddress: BAYCAddress,
		TokenID:         "1",
		Name:            "Bored Ape #1",
		ImageURL:        "ipfs://bayc/1.png",
		ChainID:         1,
		CollectionName:  "BoredApeYachtClub",
		Attributes: []entities.NFTAttribute{
			{TraitType: "Fur", Value: "Golden"},
		},
	}

	for _, opt := range opts {
		opt(&n)
	}

	n.ID = entities.NFTKey(n.ContractAddress, n.TokenID, n.ChainID)
	return n
}

type NFTOption func(*entities.NFTEntry)

func NFTWithToken(addr, tokenID string) NFTOption {
	return func(n *entities.NFTEntry) {
		n.ContractAddress = addr
		n.TokenID = tokenID
	}
}

func NFTWithChain(chainID int64) NFTOption {
	return func(n *entities.NFTEntry) {
		n.ChainID = chainID
	}
}

func NFTWithName(name string) NFTOption {
	return func(n *entities.NFTEntry) {
		n.Name = name
	}
}
