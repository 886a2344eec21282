package storage

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"ammpool/internal/model"
)

type mapStore map[Key]string

func (m mapStore) Has(_ context.Context, key Key) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func (m mapStore) Get(_ context.Context, key Key) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m mapStore) Set(_ context.Context, key Key, value string) error {
	m[key] = value
	return nil
}

func TestPoolConfigRoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := mapStore{}

	_, err := LoadPoolConfig(ctx, s)
	req.ErrorIs(err, ErrKeyNotFound)

	cfg := model.PoolConfig{
		Admin:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		AssetA: common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		AssetB: common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		FeeBps: 65_535,
	}
	req.NoError(SavePoolConfig(ctx, s, cfg))

	loaded, err := LoadPoolConfig(ctx, s)
	req.NoError(err)
	cfg.Initialized = true
	req.Equal(cfg, loaded)
	req.Equal("true", s[KeyInitialized])
}

func TestGetFeeMalformed(t *testing.T) {
	_, err := GetFee(context.Background(), mapStore{KeyFee: "70000"})
	require.Error(t, err)
}

func TestParseKey(t *testing.T) {
	req := require.New(t)
	for _, k := range Keys {
		parsed, ok := ParseKey(k.String())
		req.True(ok)
		req.Equal(k, parsed)
	}
	_, ok := ParseKey("nope")
	req.False(ok)
}
