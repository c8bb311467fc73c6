// Package chains holds the static per-chain metadata: display names, native
// asset symbols and block explorer URL templates.
package chains

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Info describes a supported chain
type Info struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Symbol       string `json:"symbol" yaml:"symbol"`
	Color        string `json:"color" yaml:"color"`
	ExplorerURL  string `json:"explorer_url,omitempty" yaml:"explorer_url"`
	ExplorerName string `json:"explorer_name,omitempty" yaml:"explorer_name"`
}

// Mainnet is the reference chain used when a chain id is unknown
const Mainnet int64 = 1

var (
	mu       sync.RWMutex
	registry = map[int64]Info{
		1:          {ID: 1, Name: "Ethereum", Symbol: "ETH", Color: "#627EEA", ExplorerURL: "https://etherscan.io", ExplorerName: "Etherscan"},
		137:        {ID: 137, Name: "Polygon", Symbol: "MATIC", Color: "#8247E5", ExplorerURL: "https://polygonscan.com", ExplorerName: "PolygonScan"},
		42161:      {ID: 42161, Name: "Arbitrum", Symbol: "ETH", Color: "#28A0F0", ExplorerURL: "https://arbiscan.io", ExplorerName: "Arbiscan"},
		10:         {ID: 10, Name: "Optimism", Symbol: "ETH", Color: "#FF0420", ExplorerURL: "https://optimistic.etherscan.io", ExplorerName: "Optimism Explorer"},
		8453:       {ID: 8453, Name: "Base", Symbol: "ETH", Color: "#0052FF", ExplorerURL: "https://basescan.org", ExplorerName: "BaseScan"},
		56:         {ID: 56, Name: "BSC", Symbol: "BNB", Color: "#F3BA2F", ExplorerURL: "https://bscscan.com", ExplorerName: "BscScan"},
		43114:      {ID: 43114, Name: "Avalanche", Symbol: "AVAX", Color: "#E84142", ExplorerURL: "https://snowtrace.io", ExplorerName: "Snowtrace"},
		250:        {ID: 250, Name: "Fantom", Symbol: "FTM", Color: "#1969FF", ExplorerURL: "https://ftmscan.com", ExplorerName: "FTMScan"},
		25:         {ID: 25, Name: "Cronos", Symbol: "CRO", Color: "#002D74", ExplorerURL: "https://cronoscan.com", ExplorerName: "CronoScan"},
		1284:       {ID: 1284, Name: "Moonbeam", Symbol: "GLMR", Color: "#53CBC9"},
		1285:       {ID: 1285, Name: "Moonriver", Symbol: "MOVR", Color: "#F2A900"},
		1666600000: {ID: 1666600000, Name: "Harmony", Symbol: "ONE", Color: "#00D4AA"},
		42220:      {ID: 42220, Name: "Celo", Symbol: "CELO", Color: "#35D07F"},
		100:        {ID: 100, Name: "Gnosis", Symbol: "GNO", Color: "#3E6957"},
		1313161554: {ID: 1313161554, Name: "Aurora", Symbol: "ETH", Color: "#78D64B"},
		1088:       {ID: 1088, Name: "Metis", Symbol: "METIS", Color: "#00DACC"},
		1101:       {ID: 1101, Name: "Polygon zkEVM", Symbol: "ETH", Color: "#8247E5"},
		42170:      {ID: 42170, Name: "Arbitrum Nova", Symbol: "ETH", Color: "#28A0F0"},
	}
)

// nativeSymbols is the mapping transaction classification uses. It is
// narrower than the registry's Symbol column: every chain not listed here
// pays gas in ETH.
var nativeSymbols = map[int64]string{
	137:   "MATIC",
	56:    "BNB",
	250:   "FTM",
	43114: "AVAX",
	25:    "CRO",
}

// NativeSymbol returns the symbol of the chain's gas asset
func NativeSymbol(chainID int64) string {
	if s, ok := nativeSymbols[chainID]; ok {
		return s
	}
	return "ETH"
}

// Lookup returns chain metadata. Unknown chains get a generic entry.
func Lookup(chainID int64) Info {
	mu.RLock()
	defer mu.RUnlock()

	if info, ok := registry[chainID]; ok {
		return info
	}
	return Info{
		ID:     chainID,
		Name:   "Chain " + strconv.FormatInt(chainID, 10),
		Symbol: "TOKEN",
		Color:  "#6B7280",
	}
}

// IsKnown reports whether the chain is in the registry
func IsKnown(chainID int64) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[chainID]
	return ok
}

// All returns every registered chain ordered by id
func All() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(registry))
	for _, info := range registry {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// explorer returns the explorer of chainID, falling back to mainnet's
func explorer(chainID int64) Info {
	mu.RLock()
	defer mu.RUnlock()

	if info, ok := registry[chainID]; ok && info.ExplorerURL != "" {
		return info
	}
	return registry[Mainnet]
}

// ExplorerName returns the display name of the chain's block explorer
func ExplorerName(chainID int64) string {
	return explorer(chainID).ExplorerName
}

// ExplorerTxURL links a transaction hash on the chain's explorer
func ExplorerTxURL(chainID int64, txHash string) string {
	return explorer(chainID).ExplorerURL + "/tx/" + txHash
}

// ExplorerAddressURL links a wallet or contract address
func ExplorerAddressURL(chainID int64, address string) string {
	return explorer(chainID).ExplorerURL + "/address/" + address
}

// ExplorerTokenURL links a token contract page
func ExplorerTokenURL(chainID int64, contractAddress string) string {
	return explorer(chainID).ExplorerURL + "/token/" + contractAddress
}

// ExplorerNFTURL links a single NFT of a collection
func ExplorerNFTURL(chainID int64, contractAddress, tokenID string) string {
	return ExplorerTokenURL(chainID, contractAddress) + "?a=" + tokenID
}

type overridesFile struct {
	Chains []Info `yaml:"chains"`
}

// LoadOverrides merges chain definitions from a YAML file into the registry.
// Fields left empty in the file keep their built-in value.
func LoadOverrides(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read chains file: %w", err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse chains file: %w", err)
	}

	for _, c := range file.Chains {
		if c.ID <= 0 {
			return 0, fmt.Errorf("chain entry %q has no valid id", c.Name)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	for _, c := range file.Chains {
		merged := registry[c.ID]
		merged.ID = c.ID
		if c.Name != "" {
			merged.Name = c.Name
		}
		if c.Symbol != "" {
			merged.Symbol = c.Symbol
		}
		if c.Color != "" {
			merged.Color = c.Color
		}
		if c.ExplorerURL != "" {
			merged.ExplorerURL = strings.TrimRight(c.ExplorerURL, "/")
		}
		if c.ExplorerName != "" {
			merged.ExplorerName = c.ExplorerName
		}
		registry[c.ID] = merged
	}

	return len(file.Chains), nil
}
