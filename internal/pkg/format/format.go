// Package format renders USD values and token amounts for display.
//
// All functions are pure and total: zero, NaN and infinities render as zero,
// negative inputs keep their sign and are bucketed by magnitude.
package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/bimakw/wallet-dashboard/internal/pkg/numeric"
)

// bucket is one magnitude range of a formatting ladder
type bucket struct {
	below    float64 // upper bound, exclusive
	divisor  float64
	decimals int
	suffix   string
}

var (
	currencyBuckets = []bucket{
		{below: 1, divisor: 1, decimals: 4},
		{below: 1e3, divisor: 1, decimals: 2},
		{below: 1e6, divisor: 1e3, decimals: 2, suffix: "K"},
		{below: 1e9, divisor: 1e6, decimals: 2, suffix: "M"},
		{below: math.Inf(1), divisor: 1e9, decimals: 2, suffix: "B"},
	}

	tokenBuckets = []bucket{
		{below: 1, divisor: 1, decimals: 6},
		{below: 1e3, divisor: 1, decimals: 4},
		{below: 1e6, divisor: 1e3, decimals: 2, suffix: "K"},
		{below: 1e9, divisor: 1e6, decimals: 2, suffix: "M"},
		{below: math.Inf(1), divisor: 1e9, decimals: 2, suffix: "B"},
	}
)

const (
	currencySmallThreshold = 0.01
	tokenSmallThreshold    = 0.0001
)

// FormatCurrency formats a USD value, e.g. 1500 -> "$1.50K"
func FormatCurrency(value float64) string {
	value = numeric.Finite(value)
	if value == 0 {
		return "$0.00"
	}

	sign, abs := splitSign(value)
	return sign + "$" + ladder(abs, currencySmallThreshold, currencyBuckets)
}

// FormatTokenAmount scales a raw amount by 10^decimals and formats it,
// e.g. (1.5e18, 18) -> "1.5000"
func FormatTokenAmount(rawAmount float64, decimals uint8) string {
	return formatAmount(numeric.Finite(rawAmount) / math.Pow10(int(decimals)))
}

// FormatRawTokenAmount is FormatTokenAmount for the raw integer strings the
// data gateway returns. The division is done in arbitrary precision.
func FormatRawTokenAmount(rawAmount string, decimals uint8) string {
	scaled, _ := numeric.Scale(numeric.ParseRaw(rawAmount), decimals).Float64()
	return formatAmount(scaled)
}

func formatAmount(amount float64) string {
	amount = numeric.Finite(amount)
	if amount == 0 {
		return "0"
	}

	sign, abs := splitSign(amount)
	return sign + ladder(abs, tokenSmallThreshold, tokenBuckets)
}

func ladder(abs, smallThreshold float64, buckets []bucket) string {
	if abs < smallThreshold {
		return exponential(abs)
	}
	for _, b := range buckets {
		if abs < b.below {
			return fixed(abs/b.divisor, b.decimals) + b.suffix
		}
	}
	// unreachable, the last bucket is unbounded
	return fixed(abs, 2)
}

// fixed renders a non-negative v with exactly decimals fraction digits.
// Exact ties round up, as toFixed does in browsers ("1.125" -> "1.13").
func fixed(v float64, decimals int) string {
	digits := roundHalfUp(shift(v, decimals)).String()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	return digits[:len(digits)-decimals] + "." + digits[len(digits)-decimals:]
}

// shift returns the exact value of v * 10^exp
func shift(v float64, exp int) *big.Rat {
	r := new(big.Rat).SetFloat64(v)
	if r == nil {
		return new(big.Rat)
	}

	n := exp
	if n < 0 {
		n = -n
	}
	pow := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	if exp < 0 {
		return r.Quo(r, pow)
	}
	return r.Mul(r, pow)
}

// roundHalfUp rounds a non-negative r to the nearest integer, ties upward
func roundHalfUp(r *big.Rat) *big.Int {
	r = new(big.Rat).Add(r, big.NewRat(1, 2))
	return new(big.Int).Quo(r.Num(), r.Denom())
}

func splitSign(v float64) (string, float64) {
	if v < 0 {
		return "-", -v
	}
	return "", v
}

// exponential renders a non-negative v with three significant digits and an
// unpadded exponent ("5.00e-3", "1.20e+4"), the notation browsers use for
// toExponential(2). Exact ties round up.
func exponential(v float64) string {
	if v <= 0 {
		return "0.00e+0"
	}

	exp := int(math.Floor(math.Log10(v)))
	mantissa := roundHalfUp(shift(v, 2-exp))
	// Log10 can be off by one near powers of ten, and rounding can carry
	switch {
	case mantissa.Cmp(big.NewInt(1000)) >= 0:
		exp++
		mantissa = roundHalfUp(shift(v, 2-exp))
	case mantissa.Cmp(big.NewInt(100)) < 0:
		exp--
		mantissa = roundHalfUp(shift(v, 2-exp))
	}

	digits := mantissa.String()
	sign := "+"
	if exp < 0 {
		sign, exp = "-", -exp
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(exp)
}
