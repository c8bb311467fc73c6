// Package numeric parses the loosely typed amounts returned by upstream APIs.
// Every parser is total: input it cannot read is treated as zero.
package numeric

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	gethmath "github.com/ethereum/go-ethereum/common/math"
)

// ParseRaw parses an integer amount given in decimal or 0x-hex form.
// Fractional input is truncated toward zero.
func ParseRaw(s string) *big.Int {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int)
	}
	if v, ok := gethmath.ParseBig256(s); ok {
		return v
	}
	f, ok := new(big.Float).SetString(s)
	if !ok || f.IsInf() {
		return new(big.Int)
	}
	v, _ := f.Int(nil)
	return v
}

// ParseFloat parses an amount into a float64. NaN and infinities become zero.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Finite(f)
	}
	if v, ok := gethmath.ParseBig256(s); ok {
		f, _ := new(big.Float).SetInt(v).Float64()
		return Finite(f)
	}
	return 0
}

// Scale divides a raw integer amount by 10^decimals
func Scale(raw *big.Int, decimals uint8) *big.Float {
	if raw == nil {
		return new(big.Float)
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	return new(big.Float).Quo(new(big.Float).SetInt(raw), divisor)
}

// IsPositive reports whether s parses to an amount greater than zero
func IsPositive(s string) bool {
	return ParseRaw(s).Sign() > 0 || ParseFloat(s) > 0
}

// Finite maps NaN and infinities to zero
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
