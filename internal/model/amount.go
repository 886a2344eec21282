package model

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// BasisPoints is the fee denominator: 10000 bps = 100%.
const BasisPoints = 10_000

var (
	// MaxAmount is the largest signed 128-bit amount.
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	// MinAmount is the smallest signed 128-bit amount.
	MinAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// InRange reports whether v fits a signed 128-bit integer.
func InRange(v *big.Int) bool {
	if v == nil {
		return false
	}
	return v.Cmp(MinAmount) >= 0 && v.Cmp(MaxAmount) <= 0
}

// ParseAmount parses a base-10 signed 128-bit amount.
func ParseAmount(input string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", input)
	}
	if !InRange(v) {
		return nil, fmt.Errorf("amount out of 128-bit range: %s", input)
	}
	return v, nil
}

// AmountString renders nil as "0".
func AmountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// FormatAmount renders a raw amount scaled down by decimals.
func FormatAmount(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	return decimal.NewFromBigInt(v, -decimals).StringFixed(decimals)
}

// FormatFee renders basis points as a percentage, e.g. 30 -> "0.30%".
func FormatFee(feeBps uint16) string {
	return decimal.New(int64(feeBps), -2).StringFixed(2) + "%"
}
