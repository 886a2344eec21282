package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ammpool/internal/model"
	"ammpool/internal/storage"
)

const (
	poolA  = "0x00000000000000000000000000000000000a11ce"
	tokenA = "0xAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaa"
	tokenB = "0xBbbBBbBBbBbbbBBBbbbBBBbbBBBbbbbBBBbbbbBB"
)

func writeJournal(t *testing.T, events []model.PoolEvent) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, storage.NewJsonlStorage(path).PutEventBatch(context.Background(), events))
	return path
}

func journal() []model.PoolEvent {
	return []model.PoolEvent{
		{ID: "1", Kind: model.EventInitialize, Pool: poolA, Timestamp: "2026-01-01T00:00:00Z", ReserveA: "0", ReserveB: "0",
			Data: model.InitializeEventData{AssetA: tokenA, AssetB: tokenB, FeeBps: 30}},
		{ID: "2", Kind: model.EventDeposit, Pool: poolA, Timestamp: "2026-01-01T00:10:00Z", ReserveA: "1000", ReserveB: "1000",
			Data: model.DepositEventData{AmountA: "1000", AmountB: "1000"}},
		{ID: "3", Kind: model.EventSwap, Pool: poolA, Timestamp: "2026-01-01T00:20:00Z", ReserveA: "1100", ReserveB: "910",
			Data: model.SwapEventData{AssetIn: tokenA, AssetOut: tokenB, AmountIn: "100", AmountOut: "90", Fee: "0", FeeBps: 30}},
		{ID: "4", Kind: model.EventSetFee, Pool: poolA, Timestamp: "2026-01-01T01:05:00Z", ReserveA: "1100", ReserveB: "910",
			Data: model.SetFeeEventData{OldFeeBps: 30, FeeBps: 100}},
		{ID: "5", Kind: model.EventSwap, Pool: poolA, Timestamp: "2026-01-01T01:30:00Z", ReserveA: "1015", ReserveB: "1010",
			Data: model.SwapEventData{AssetIn: tokenB, AssetOut: tokenA, AmountIn: "100", AmountOut: "85", Fee: "1", FeeBps: 100}},
	}
}

func TestRunWholeJournal(t *testing.T) {
	req := require.New(t)
	path := writeJournal(t, journal())

	stats, err := NewAggregator(Config{}, nil).Run(context.Background(), path)
	req.NoError(err)
	req.Len(stats, 1)

	s := stats[0]
	req.Equal(poolA, s.Pool)
	req.Empty(s.WindowStart)
	req.Equal(tokenA, s.AssetA)
	req.EqualValues(2, s.SwapCount)
	req.EqualValues(1, s.DepositCount)
	req.EqualValues(1, s.FeeChangeCount)
	req.Equal("1000", s.DepositedA)
	req.Equal("1015", s.ReserveA)
	req.Equal("1010", s.ReserveB)
	req.Equal("2026-01-01T00:00:00Z", s.FirstEvent)
	req.Equal("2026-01-01T01:30:00Z", s.LastEvent)

	req.Len(s.Assets, 2)
	byAsset := map[string]model.AssetStats{}
	for _, a := range s.Assets {
		byAsset[a.Asset] = a
	}
	req.Equal("100", byAsset[tokenA].VolumeIn)
	req.Equal("85", byAsset[tokenA].VolumeOut)
	req.Nil(byAsset[tokenA].FeeRate)
	req.Equal("1", byAsset[tokenB].Fees)
	req.NotNil(byAsset[tokenB].FeeRate)
	req.Equal("0.010000000000000000", *byAsset[tokenB].FeeRate)
}

func TestRunWindows(t *testing.T) {
	req := require.New(t)
	path := writeJournal(t, journal())

	stats, err := NewAggregator(Config{Window: time.Hour}, nil).Run(context.Background(), path)
	req.NoError(err)
	req.Len(stats, 2)
	req.Equal("2026-01-01T00:00:00Z", stats[0].WindowStart)
	req.Equal("2026-01-01T01:00:00Z", stats[0].WindowEnd)
	req.EqualValues(1, stats[0].SwapCount)
	req.EqualValues(1, stats[1].SwapCount)
	req.EqualValues(1, stats[1].FeeChangeCount)
}

func TestRunDecimalsAndBadLines(t *testing.T) {
	req := require.New(t)
	path := writeJournal(t, journal()[:3])
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	req.NoError(err)
	_, err = f.WriteString("not json\n\n")
	req.NoError(err)
	req.NoError(f.Close())

	stats, err := NewAggregator(Config{Decimals: 2}, nil).Run(context.Background(), path)
	req.NoError(err)
	req.Len(stats, 1)
	req.Equal("10.00", stats[0].DepositedA)
	req.Equal("11.00", stats[0].ReserveA)
}

func TestRunMissingFile(t *testing.T) {
	_, err := NewAggregator(Config{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
}
