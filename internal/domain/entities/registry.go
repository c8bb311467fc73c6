package entities

import (
	"strconv"
	"strings"
	"time"
)

// DefaultChainID is the chain selected before the user picks one (Ethereum mainnet)
const DefaultChainID int64 = 1

// RegistryKey is the canonical composite id of a registry entry.
// Addresses are lower-cased when the key is built.
type RegistryKey string

// WatchlistKey builds the id of a watchlist entry
func WatchlistKey(contractAddress string, chainID int64) RegistryKey {
	return RegistryKey(normalizeAddress(contractAddress) + ":" + strconv.FormatInt(chainID, 10))
}

// CustomTokenKey builds the id of a custom token entry
func CustomTokenKey(contractAddress string, chainID int64) RegistryKey {
	return WatchlistKey(contractAddress, chainID)
}

// NFTKey builds the id of a cached NFT
func NFTKey(contractAddress, tokenID string, chainID int64) RegistryKey {
	return RegistryKey(normalizeAddress(contractAddress) + ":" + strings.TrimSpace(tokenID) + ":" + strconv.FormatInt(chainID, 10))
}

// NormalizeKey canonicalises an id received from a caller. Only the address
// part (before the first separator) is case-folded.
func NormalizeKey(id string) RegistryKey {
	id = strings.TrimSpace(id)
	addr, rest, found := strings.Cut(id, ":")
	if !found {
		return RegistryKey(normalizeAddress(id))
	}
	return RegistryKey(normalizeAddress(addr) + ":" + rest)
}

// String implements fmt.Stringer
func (k RegistryKey) String() string {
	return string(k)
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// WatchlistEntry is a token the user tracks independent of holdings
type WatchlistEntry struct {
	ID              RegistryKey `json:"id"`
	ContractAddress string      `json:"contract_address"`
	Name            string      `json:"name"`
	Symbol          string      `json:"symbol"`
	ChainID         int64       `json:"chain_id"`
	LogoURL         string      `json:"logo_url,omitempty"`
	AddedAt         time.Time   `json:"added_at"`
}

// WatchlistInput is a watchlist entry before the store assigns id and added_at
type WatchlistInput struct {
	ContractAddress string `json:"contract_address"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	ChainID         int64  `json:"chain_id"`
	LogoURL         string `json:"logo_url,omitempty"`
}

// CustomToken is a user-declared token definition
type CustomToken struct {
	ID              RegistryKey `json:"id"`
	ContractAddress string      `json:"contract_address"`
	Name            string      `json:"name"`
	Symbol          string      `json:"symbol"`
	Decimals        uint8       `json:"decimals"`
	ChainID         int64       `json:"chain_id"`
	LogoURL         string      `json:"logo_url,omitempty"`
	AddedAt         time.Time   `json:"added_at"`
}

// CustomTokenInput is a custom token before the store assigns id and added_at
type CustomTokenInput struct {
	ContractAddress string `json:"contract_address"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        *uint8 `json:"decimals,omitempty"`
	ChainID         int64  `json:"chain_id"`
	LogoURL         string `json:"logo_url,omitempty"`
}

// NFTAttribute is one trait of an NFT. Value is kept as the upstream sent it
// (string or number).
type NFTAttribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// NFTEntry is a cached NFT owned by the viewed wallet
type NFTEntry struct {
	ID              RegistryKey    `json:"id"`
	ContractAddress string         `json:"contract_address"`
	TokenID         string         `json:"token_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	ImageURL        string         `json:"image_url,omitempty"`
	FloorPriceUSD   *float64       `json:"floor_price_usd,omitempty"`
	ChainID         int64          `json:"chain_id"`
	CollectionName  string         `json:"collection_name,omitempty"`
	Attributes      []NFTAttribute `json:"attributes"`
}

// AppSelection is the singleton UI state
type AppSelection struct {
	SelectedChainID int64 `json:"selected_chain_id"`
}

// RegistryState is the persisted blob, saved and loaded as one unit
type RegistryState struct {
	Watchlist       []WatchlistEntry `json:"watchlist"`
	CustomTokens    []CustomToken    `json:"custom_tokens"`
	NFTs            []NFTEntry       `json:"nfts"`
	SelectedChainID int64            `json:"selected_chain_id"`
}

// NewRegistryState returns an empty state with the default chain selected
func NewRegistryState() *RegistryState {
	return &RegistryState{
		Watchlist:       []WatchlistEntry{},
		CustomTokens:    []CustomToken{},
		NFTs:            []NFTEntry{},
		SelectedChainID: DefaultChainID,
	}
}
