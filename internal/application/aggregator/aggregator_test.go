package aggregator

import (
	"math"
	"testing"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

func sampleBalances() []entities.TokenBalance {
	return []entities.TokenBalance{
		testutil.CreateTestBalance(
			testutil.BalanceWithToken(testutil.USDTAddress, "Tether USD", "USDT", 6),
			testutil.BalanceWithAmount("1500000000", 1500),
		),
		testutil.CreateTestBalance(
			testutil.BalanceWithToken(testutil.WETHAddress, "wrapped Ether", "WETH", 18),
			testutil.BalanceWithAmount("2000000000000000000", 6400),
		),
		testutil.CreateTestBalance(
			testutil.BalanceWithToken(testutil.USDCAddress, "USD Coin", "USDC", 6),
			testutil.BalanceWithAmount("250000000", 250),
		),
		testutil.CreateTestBalance(
			testutil.BalanceWithToken(testutil.DAIAddress, "Dai Stablecoin", "DAI", 18),
			testutil.BalanceWithAmount("500000000000000000000", 500),
		),
	}
}

func symbols(balances []entities.TokenBalance) []string {
	out := make([]string, len(balances))
	for i, b := range balances {
		out[i] = b.Symbol
	}
	return out
}

func assertOrder(t *testing.T, got []entities.TokenBalance, expected ...string) {
	t.Helper()
	syms := symbols(got)
	if len(syms) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, syms)
	}
	for i := range expected {
		if syms[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, syms)
		}
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleBalances())

	if summary.TotalValueUSD != 8650 {
		t.Errorf("expected total 8650, got %v", summary.TotalValueUSD)
	}
	if summary.TokenCount != 4 {
		t.Errorf("expected 4 tokens, got %d", summary.TokenCount)
	}
	if summary.HighValueCount != 2 {
		t.Errorf("expected 2 high value tokens, got %d", summary.HighValueCount)
	}
}

func TestSummarize_MissingQuotes(t *testing.T) {
	balances := []entities.TokenBalance{
		testutil.CreateTestBalance(testutil.BalanceWithAmount("1", 0)),
		testutil.CreateTestBalance(testutil.BalanceWithAmount("1", math.NaN())),
		testutil.CreateTestBalance(testutil.BalanceWithAmount("1", 1000)), // not above threshold
	}

	summary := Summarize(balances)
	if summary.TotalValueUSD != 1000 {
		t.Errorf("expected total 1000, got %v", summary.TotalValueUSD)
	}
	if summary.HighValueCount != 0 {
		t.Errorf("expected 0 high value tokens, got %d", summary.HighValueCount)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	if summary != (entities.PortfolioSummary{}) {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestSortAndFilter_ByValue(t *testing.T) {
	got := SortAndFilter(sampleBalances(), "", SortByValue)
	assertOrder(t, got, "WETH", "USDT", "DAI", "USDC")
}

func TestSortAndFilter_ByName(t *testing.T) {
	// "wrapped Ether" is lower-case on purpose
	got := SortAndFilter(sampleBalances(), "", SortByName)
	assertOrder(t, got, "DAI", "USDT", "USDC", "WETH")
}

func TestSortAndFilter_ByRawBalance(t *testing.T) {
	// raw integers, not scaled: 500 DAI (5e20) > 2 WETH (2e18) > 1500 USDT (1.5e9)
	got := SortAndFilter(sampleBalances(), "", SortByBalance)
	assertOrder(t, got, "DAI", "WETH", "USDT", "USDC")
}

func TestSortAndFilter_Filter(t *testing.T) {
	t.Run("matches name or symbol case-insensitively", func(t *testing.T) {
		got := SortAndFilter(sampleBalances(), "usd", SortByValue)
		assertOrder(t, got, "USDT", "USDC")
	})

	t.Run("matches name only", func(t *testing.T) {
		got := SortAndFilter(sampleBalances(), "STABLE", SortByValue)
		assertOrder(t, got, "DAI")
	})

	t.Run("no match", func(t *testing.T) {
		got := SortAndFilter(sampleBalances(), "shib", SortByValue)
		if len(got) != 0 {
			t.Errorf("expected empty result, got %v", symbols(got))
		}
	})
}

func TestSortAndFilter_DoesNotMutateInput(t *testing.T) {
	input := sampleBalances()
	_ = SortAndFilter(input, "", SortByName)
	assertOrder(t, input, "USDT", "WETH", "USDC", "DAI")
}

func TestSortAndFilter_UnknownKeyKeepsOrder(t *testing.T) {
	got := SortAndFilter(sampleBalances(), "", SortKey("random"))
	assertOrder(t, got, "USDT", "WETH", "USDC", "DAI")
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SortKey
		ok       bool
	}{
		{"", SortByValue, true},
		{"value", SortByValue, true},
		{"NAME", SortByName, true},
		{"balance", SortByBalance, true},
		{"price", "", false},
	}

	for _, tt := range tests {
		key, ok := ParseSortKey(tt.input)
		if key != tt.expected || ok != tt.ok {
			t.Errorf("ParseSortKey(%q) = (%q, %v), expected (%q, %v)", tt.input, key, ok, tt.expected, tt.ok)
		}
	}
}

func TestAllocation(t *testing.T) {
	balances := append(sampleBalances(),
		testutil.CreateTestBalance(testutil.BalanceWithToken("0x9999999999999999999999999999999999999999", "Spam", "SPAM", 18)),
	)

	slices := Allocation(balances, 3)
	if len(slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(slices))
	}
	if slices[0].Symbol != "WETH" || slices[2].Symbol != "DAI" {
		t.Errorf("unexpected order: %+v", slices)
	}

	var total float64
	for _, s := range slices {
		total += s.Percentage
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("expected percentages to sum to 100, got %v", total)
	}
}

func TestAllocation_NoValue(t *testing.T) {
	if got := Allocation(nil, 10); len(got) != 0 {
		t.Errorf("expected no slices, got %+v", got)
	}
}
