// Package aggregator derives summaries and list views from a balance list.
// Nothing here mutates its input.
package aggregator

import (
	"math/big"
	"sort"
	"strings"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/pkg/numeric"
)

// HighValueThreshold is the USD quote above which a holding counts as high value
const HighValueThreshold = 1000.0

// SortKey selects the ordering of SortAndFilter
type SortKey string

const (
	SortByValue   SortKey = "value"
	SortByName    SortKey = "name"
	SortByBalance SortKey = "balance"
)

// ParseSortKey maps a query parameter to a SortKey. Empty input means value.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByValue:
		return SortByValue, true
	case SortByName:
		return SortByName, true
	case SortByBalance:
		return SortByBalance, true
	}
	return "", false
}

// Summarize computes total value, token count and high value count
func Summarize(balances []entities.TokenBalance) entities.PortfolioSummary {
	summary := entities.PortfolioSummary{TokenCount: len(balances)}
	for _, b := range balances {
		quote := numeric.Finite(b.Quote)
		summary.TotalValueUSD += quote
		if quote > HighValueThreshold {
			summary.HighValueCount++
		}
	}
	return summary
}

// SortAndFilter keeps the balances whose name or symbol contains filterText
// (case-insensitive) and orders them by key:
//
//   - SortByValue: USD quote, highest first
//   - SortByName: name, A to Z, ignoring case
//   - SortByBalance: raw balance, highest first. The raw integer is compared
//     without scaling by decimals, so a 6-decimal token can rank below an
//     18-decimal token worth less.
//
// Unknown keys keep the input order. The sort is stable.
func SortAndFilter(balances []entities.TokenBalance, filterText string, key SortKey) []entities.TokenBalance {
	needle := strings.ToLower(strings.TrimSpace(filterText))

	result := make([]entities.TokenBalance, 0, len(balances))
	for _, b := range balances {
		if needle == "" ||
			strings.Contains(strings.ToLower(b.Name), needle) ||
			strings.Contains(strings.ToLower(b.Symbol), needle) {
			result = append(result, b)
		}
	}

	switch key {
	case SortByValue:
		sort.SliceStable(result, func(i, j int) bool {
			return numeric.Finite(result[i].Quote) > numeric.Finite(result[j].Quote)
		})
	case SortByName:
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
		})
	case SortByBalance:
		raw := make([]*big.Int, len(result))
		for i := range result {
			raw[i] = numeric.ParseRaw(result[i].Balance)
		}
		// sort indexes so the parsed values stay attached to their rows
		idx := make([]int, len(result))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return raw[idx[a]].Cmp(raw[idx[b]]) > 0
		})
		sorted := make([]entities.TokenBalance, len(result))
		for i, j := range idx {
			sorted[i] = result[j]
		}
		result = sorted
	}

	return result
}

// Allocation returns the share of each positive-value holding, largest
// first, truncated to limit entries. Percentages are relative to the
// returned slices.
func Allocation(balances []entities.TokenBalance, limit int) []entities.AllocationSlice {
	slices := make([]entities.AllocationSlice, 0, len(balances))
	for _, b := range balances {
		quote := numeric.Finite(b.Quote)
		if quote <= 0 {
			continue
		}
		slices = append(slices, entities.AllocationSlice{Symbol: b.Symbol, ValueUSD: quote})
	}

	sort.SliceStable(slices, func(i, j int) bool { return slices[i].ValueUSD > slices[j].ValueUSD })
	if limit > 0 && len(slices) > limit {
		slices = slices[:limit]
	}

	var total float64
	for _, s := range slices {
		total += s.ValueUSD
	}
	for i := range slices {
		slices[i].Percentage = slices[i].ValueUSD / total * 100
	}

	return slices
}
