package covalent

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

type envelope[T any] struct {
	Data         *page[T] `json:"data"`
	Error        bool     `json:"error"`
	ErrorMessage string   `json:"error_message"`
	ErrorCode    int      `json:"error_code"`
}

type page[T any] struct {
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
	Items   []T    `json:"items"`
}

type balanceItem struct {
	ContractAddress      string     `json:"contract_address"`
	ContractName         string     `json:"contract_name"`
	ContractTickerSymbol string     `json:"contract_ticker_symbol"`
	ContractDecimals     *int       `json:"contract_decimals"`
	LogoURL              string     `json:"logo_url"`
	Type                 string     `json:"type"`
	Balance              string     `json:"balance"`
	Quote                *float64   `json:"quote"`
	QuoteRate            *float64   `json:"quote_rate"`
	NFTData              []nftDatum `json:"nft_data"`
}

type nftDatum struct {
	TokenID      string        `json:"token_id"`
	ExternalData *externalData `json:"external_data"`
}

type externalData struct {
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Image         string                  `json:"image"`
	Image256      string                  `json:"image_256"`
	FloorPriceUSD *float64                `json:"floor_price_usd"`
	Attributes    []entities.NFTAttribute `json:"attributes"`
}

type transactionItem struct {
	TxHash        string     `json:"tx_hash"`
	BlockSignedAt time.Time  `json:"block_signed_at"`
	BlockHeight   int64      `json:"block_height"`
	FromAddress   string     `json:"from_address"`
	ToAddress     string     `json:"to_address"`
	Successful    bool       `json:"successful"`
	Value         string     `json:"value"`
	ValueQuote    *float64   `json:"value_quote"`
	GasQuote      *float64   `json:"gas_quote"`
	LogEvents     []logEvent `json:"log_events"`
}

type logEvent struct {
	SenderAddress              string        `json:"sender_address"`
	SenderContractTickerSymbol string        `json:"sender_contract_ticker_symbol"`
	SenderContractDecimals     *int          `json:"sender_contract_decimals"`
	SenderLogoURL              string        `json:"sender_logo_url"`
	Decoded                    *decodedEvent `json:"decoded"`
}

type decodedEvent struct {
	Name   string       `json:"name"`
	Params []eventParam `json:"params"`
}

type eventParam struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

func (b balanceItem) toBalance() entities.TokenBalance {
	return entities.TokenBalance{
		ContractAddress: strings.ToLower(b.ContractAddress),
		Name:            b.ContractName,
		Symbol:          b.ContractTickerSymbol,
		Decimals:        toDecimals(b.ContractDecimals),
		Balance:         orZero(b.Balance),
		Quote:           deref(b.Quote),
		QuoteRate:       deref(b.QuoteRate),
		LogoURL:         b.LogoURL,
	}
}

// toNFTs expands one collection into an entry per held token
func (b balanceItem) toNFTs(chainID int64) []entities.NFTEntry {
	if b.Type != "nft" || len(b.NFTData) == 0 {
		return nil
	}

	nfts := make([]entities.NFTEntry, 0, len(b.NFTData))
	for _, d := range b.NFTData {
		ext := d.ExternalData
		if ext == nil {
			ext = &externalData{}
		}

		name := ext.Name
		if name == "" {
			name = fmt.Sprintf("%s #%s", b.ContractName, d.TokenID)
		}
		image := ext.Image
		if image == "" {
			image = ext.Image256
		}
		attributes := ext.Attributes
		if attributes == nil {
			attributes = []entities.NFTAttribute{}
		}

		nfts = append(nfts, entities.NFTEntry{
			ID:              entities.NFTKey(b.ContractAddress, d.TokenID, chainID),
			ContractAddress: strings.ToLower(b.ContractAddress),
			TokenID:         d.TokenID,
			Name:            name,
			Description:     ext.Description,
			ImageURL:        image,
			FloorPriceUSD:   ext.FloorPriceUSD,
			ChainID:         chainID,
			CollectionName:  b.ContractName,
			Attributes:      attributes,
		})
	}
	return nfts
}

func (t transactionItem) toTransaction() entities.Transaction {
	transfers := make([]entities.TokenTransfer, 0)
	for _, ev := range t.LogEvents {
		if transfer, ok := ev.toTransfer(); ok {
			transfers = append(transfers, transfer)
		}
	}

	return entities.Transaction{
		TxHash:        t.TxHash,
		BlockSignedAt: t.BlockSignedAt,
		BlockHeight:   t.BlockHeight,
		FromAddress:   strings.ToLower(t.FromAddress),
		ToAddress:     strings.ToLower(t.ToAddress),
		Successful:    t.Successful,
		Value:         orZero(t.Value),
		ValueQuote:    deref(t.ValueQuote),
		GasQuote:      deref(t.GasQuote),
		Transfers:     transfers,
	}
}

// toTransfer decodes an ERC-20 Transfer(from, to, value) event
func (e logEvent) toTransfer() (entities.TokenTransfer, bool) {
	if e.Decoded == nil || e.Decoded.Name != "Transfer" {
		return entities.TokenTransfer{}, false
	}

	var from, to, value string
	for _, p := range e.Decoded.Params {
		switch p.Name {
		case "from":
			from = paramString(p.Value)
		case "to":
			to = paramString(p.Value)
		case "value":
			value = paramString(p.Value)
		}
	}
	if from == "" || to == "" || value == "" {
		return entities.TokenTransfer{}, false
	}

	return entities.TokenTransfer{
		ContractAddress: strings.ToLower(e.SenderAddress),
		Symbol:          e.SenderContractTickerSymbol,
		Decimals:        toDecimals(e.SenderContractDecimals),
		FromAddress:     strings.ToLower(from),
		ToAddress:       strings.ToLower(to),
		Balance:         value,
		LogoURL:         e.SenderLogoURL,
	}, true
}

func paramString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func toDecimals(d *int) uint8 {
	if d == nil || *d < 0 {
		return 0
	}
	if *d > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(*d)
}

func deref(f *float64) float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0
	}
	return *f
}

func orZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}
