package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/require"
)

type tokenCaller struct {
	responses map[string][]byte
	calls     int
}

func (c *tokenCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.calls++
	resp, ok := c.responses[string(msg.Data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func newTokenCaller(t *testing.T) *tokenCaller {
	t.Helper()
	stringABI, bytes32ABI, err := getMetaABIs()
	require.NoError(t, err)

	decimals, err := stringABI.Methods["decimals"].Outputs.Pack(uint8(6))
	require.NoError(t, err)
	var sym [32]byte
	copy(sym[:], "USDC")
	symbol, err := bytes32ABI.Methods["symbol"].Outputs.Pack(sym)
	require.NoError(t, err)
	name, err := stringABI.Methods["name"].Outputs.Pack("USD Coin")
	require.NoError(t, err)

	return &tokenCaller{responses: map[string][]byte{
		string(stringABI.Methods["decimals"].ID): decimals,
		string(stringABI.Methods["symbol"].ID):   symbol,
		string(stringABI.Methods["name"].ID):     name,
	}}
}

func TestFetchTokenMeta(t *testing.T) {
	req := require.New(t)
	caller := newTokenCaller(t)

	meta, err := FetchTokenMeta(context.Background(), caller, tokenA, nil)
	req.NoError(err)
	req.EqualValues(6, meta.Decimals)
	req.Equal("USDC", meta.Symbol)
	req.Equal("USD Coin", meta.Name)
	req.Equal(tokenA.Hex(), meta.Address)
}

func TestFetchTokenMetaRequiresDecimals(t *testing.T) {
	_, err := FetchTokenMeta(context.Background(), &tokenCaller{}, tokenA, nil)
	require.Error(t, err)
}

func TestTokenMetaCache(t *testing.T) {
	req := require.New(t)
	caller := newTokenCaller(t)
	cache := NewTokenMetaCache()

	_, err := cache.Fetch(context.Background(), caller, tokenA, nil)
	req.NoError(err)
	calls := caller.calls
	meta, err := cache.Fetch(context.Background(), caller, tokenA, nil)
	req.NoError(err)
	req.Equal(calls, caller.calls)
	req.EqualValues(6, meta.Decimals)
}

func TestBytes32ToString(t *testing.T) {
	var raw [32]byte
	copy(raw[:], "MKR")
	s, ok := bytes32ToString(raw)
	require.True(t, ok)
	require.Equal(t, "MKR", s)
}
