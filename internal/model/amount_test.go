package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmountBounds(t *testing.T) {
	req := require.New(t)

	v, err := ParseAmount("170141183460469231731687303715884105727")
	req.NoError(err)
	req.Zero(v.Cmp(MaxAmount))

	_, err = ParseAmount("170141183460469231731687303715884105728")
	req.Error(err)

	v, err = ParseAmount("-170141183460469231731687303715884105728")
	req.NoError(err)
	req.Zero(v.Cmp(MinAmount))

	_, err = ParseAmount("12abc")
	req.Error(err)
}

func TestFormatAmountAndFee(t *testing.T) {
	req := require.New(t)

	req.Equal("1.50", FormatAmount(big.NewInt(150), 2))
	req.Equal("150", FormatAmount(big.NewInt(150), 0))
	req.Equal("0", FormatAmount(nil, 6))
	req.Equal("0.30%", FormatFee(30))
	req.Equal("100.00%", FormatFee(10_000))
}

func TestParseIdentities(t *testing.T) {
	req := require.New(t)

	ids, err := ParseIdentities([]string{" 0x1111111111111111111111111111111111111111", "", "0x2222222222222222222222222222222222222222"})
	req.NoError(err)
	req.Len(ids, 2)

	_, err = ParseIdentities([]string{"nope"})
	req.Error(err)
}

func TestCounterpart(t *testing.T) {
	req := require.New(t)

	a := parseMust(t, "0x1111111111111111111111111111111111111111")
	b := parseMust(t, "0x2222222222222222222222222222222222222222")
	cfg := PoolConfig{AssetA: a, AssetB: b}

	out, ok := cfg.Counterpart(a)
	req.True(ok)
	req.Equal(b, out)

	out, ok = cfg.Counterpart(b)
	req.True(ok)
	req.Equal(a, out)

	_, ok = cfg.Counterpart(parseMust(t, "0x3333333333333333333333333333333333333333"))
	req.False(ok)
}

func parseMust(t *testing.T, s string) Identity {
	t.Helper()
	id, err := ParseIdentity(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return id
}
