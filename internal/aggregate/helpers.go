package aggregate

import (
	"fmt"
	"math/big"
	"time"

	"ammpool/internal/model"
)

const ratioScale = 18

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func parseOrZero(value string) *big.Int {
	v, err := parseBigInt(value)
	if err != nil {
		return big.NewInt(0)
	}
	return v
}

func formatTokenAmount(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	if decimals <= 0 {
		return value.String()
	}
	return model.FormatAmount(value, decimals)
}

func computeRateFromInt(fee *big.Int, volume *big.Int) string {
	if fee == nil || fee.Sign() == 0 || volume == nil || volume.Sign() == 0 {
		return ""
	}
	rat := new(big.Rat).SetFrac(fee, volume)
	return rat.FloatString(ratioScale)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func windowStart(ts time.Time, window time.Duration) time.Time {
	return ts.UTC().Truncate(window)
}
