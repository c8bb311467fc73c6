/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ethereum

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// TokenMetadata holds ERC-20 token metadata
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Values used for fields a token does not expose
const (
	FallbackName     = "Unknown"
	FallbackSymbol   = "UNK"
	FallbackDecimals = 18
)

// ContractCaller executes read-only contract calls
type ContractCaller interface {
	CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error)
}

// erc20MetadataABI covers the optional metadata getters of EIP-20
const erc20MetadataABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

var erc20Metadata = mustParseABI(erc20MetadataABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI definition: %v", err))
	}
	return parsed
}

// selector returns the 4 byte call data of an argument-less getter
func selector(method string) []byte {
	return erc20Metadata.Methods[method].ID
}

// MetadataFetcher reads ERC-20 metadata with eth_call. Complete results are
// memoised per token for the life of the process.
type MetadataFetcher struct {
	caller ContractCaller
	known  *cache.Cache
	logger *zap.Logger
}

// NewMetadataFetcher creates a new metadata fetcher
func NewMetadataFetcher(caller ContractCaller, logger *zap.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		caller: caller,
		known:  cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// FetchMetadata reads the name, symbol and decimals of a token. Unreadable
// fields take the fallback values; an error is returned only when the
// contract answers none of the getters.
func (f *MetadataFetcher) FetchMetadata(ctx context.Context, tokenAddress string) (*TokenMetadata, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("invalid token address: %s", tokenAddress)
	}

	key := strings.ToLower(tokenAddress)
	if x, found := f.known.Get(key); found {
		if metadata, ok := x.(TokenMetadata); ok {
			return &metadata, nil
		}
	}

	contract := common.HexToAddress(tokenAddress)
	metadata := TokenMetadata{Name: FallbackName, Symbol: FallbackSymbol, Decimals: FallbackDecimals}
	var missing []string

	if name, err := f.readText(ctx, contract, "name"); err == nil {
		metadata.Name = name
	} else {
		missing = append(missing, "name")
		f.logFallback(key, "name", err)
	}

	if symbol, err := f.readText(ctx, contract, "symbol"); err == nil {
		metadata.Symbol = symbol
	} else {
		missing = append(missing, "symbol")
		f.logFallback(key, "symbol", err)
	}

	if decimals, err := f.readDecimals(ctx, contract); err == nil {
		metadata.Decimals = decimals
	} else {
		missing = append(missing, "decimals")
		f.logFallback(key, "decimals", err)
	}

	switch len(missing) {
	case 0:
		f.known.Set(key, metadata, cache.NoExpiration)
	case len(erc20Metadata.Methods):
		return nil, fmt.Errorf("token %s does not expose ERC-20 metadata", tokenAddress)
	}

	return &metadata, nil
}

// Resolve fetches metadata for several tokens, keyed by lower-cased address.
// Tokens without readable metadata get the fallback values.
func (f *MetadataFetcher) Resolve(ctx context.Context, tokenAddresses []string) map[string]TokenMetadata {
	results := make(map[string]TokenMetadata, len(tokenAddresses))

	for _, addr := range tokenAddresses {
		key := strings.ToLower(addr)
		if _, done := results[key]; done {
			continue
		}

		metadata, err := f.FetchMetadata(ctx, key)
		if err != nil {
			f.logger.Warn("Token metadata unavailable",
				zap.String("token", key),
				zap.Error(err),
			)
			results[key] = TokenMetadata{Name: FallbackName, Symbol: FallbackSymbol, Decimals: FallbackDecimals}
			continue
		}
		results[key] = *metadata
	}

	return results
}

func (f *MetadataFetcher) logFallback(token, field string, err error) {
	f.logger.Debug("Token metadata field unreadable, using fallback",
		zap.String("token", token),
		zap.String("field", field),
		zap.Error(err),
	)
}

func (f *MetadataFetcher) readText(ctx context.Context, contract common.Address, method string) (string, error) {
	output, err := f.caller.CallContract(ctx, contract, selector(method))
	if err != nil {
		return "", err
	}
	return decodeText(method, output)
}

func (f *MetadataFetcher) readDecimals(ctx context.Context, contract common.Address) (uint8, error) {
	output, err := f.caller.CallContract(ctx, contract, selector("decimals"))
	if err != nil {
		return 0, err
	}

	values, err := erc20Metadata.Unpack("decimals", output)
	if err != nil {
		return 0, fmt.Errorf("failed to decode decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", values[0])
	}
	return decimals, nil
}

// decodeText decodes a name or symbol result. Most tokens return an ABI
// string; a few early ones (MKR, SAI) return bytes32, which is decoded as
// NUL-padded ASCII or rendered as hex when it is not printable.
func decodeText(method string, output []byte) (string, error) {
	if len(output) == 0 {
		return "", errors.New("empty result")
	}

	if values, err := erc20Metadata.Unpack(method, output); err == nil {
		if text, ok := values[0].(string); ok {
			return strings.TrimRight(text, "\x00"), nil
		}
	}

	if len(output) != common.HashLength {
		return "", fmt.Errorf("undecodable %d byte result", len(output))
	}

	word := bytes.TrimRight(output, "\x00")
	if printable(word) {
		return string(word), nil
	}
	return "0x" + hex.EncodeToString(output), nil
}

// printable reports whether b is non-empty visible ASCII
func printable(b []byte) bool {
	for _, c := range b {
		if c < ' ' || c > '~' {
			return false
		}
	}
	return len(b) > 0
}
