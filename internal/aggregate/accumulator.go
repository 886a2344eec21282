package aggregate

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"time"

	"ammpool/internal/model"
)

type assetTotals struct {
	volumeIn  *big.Int
	volumeOut *big.Int
	fees      *big.Int
}

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	Pool         string
	WindowStart  time.Time
	WindowEnd    time.Time
	AssetA       string
	AssetB       string
	SwapCount    uint64
	DepositCount uint64
	FeeChanges   uint64
	DepositedA   *big.Int
	DepositedB   *big.Int
	ReserveA     string
	ReserveB     string
	First        time.Time
	Last         time.Time

	assets map[string]*assetTotals
}

func NewAccumulator(pool string, windowStart, windowEnd time.Time) *Accumulator {
	return &Accumulator{
		Pool:        pool,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		DepositedA:  big.NewInt(0),
		DepositedB:  big.NewInt(0),
		assets:      make(map[string]*assetTotals),
	}
}

func (a *Accumulator) AddEvent(record model.PoolEventRecord, ts time.Time) error {
	if a.First.IsZero() || ts.Before(a.First) {
		a.First = ts
	}
	if !ts.Before(a.Last) {
		a.Last = ts
		a.ReserveA = record.ReserveA
		a.ReserveB = record.ReserveB
	}

	switch record.Kind {
	case model.EventInitialize:
		var data model.InitializeEventData
		if err := json.Unmarshal(record.Data, &data); err != nil {
			return fmt.Errorf("decode initialize: %w", err)
		}
		a.AssetA = data.AssetA
		a.AssetB = data.AssetB
		return nil
	case model.EventDeposit:
		var data model.DepositEventData
		if err := json.Unmarshal(record.Data, &data); err != nil {
			return fmt.Errorf("decode deposit: %w", err)
		}
		return a.applyDeposit(data)
	case model.EventSwap:
		var data model.SwapEventData
		if err := json.Unmarshal(record.Data, &data); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(data)
	case model.EventSetFee:
		a.FeeChanges++
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", record.Kind)
	}
}

func (a *Accumulator) applyDeposit(data model.DepositEventData) error {
	amountA, err := parseBigInt(data.AmountA)
	if err != nil {
		return err
	}
	amountB, err := parseBigInt(data.AmountB)
	if err != nil {
		return err
	}
	a.DepositedA.Add(a.DepositedA, amountA)
	a.DepositedB.Add(a.DepositedB, amountB)
	a.DepositCount++
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	amountIn, err := parseBigInt(swap.AmountIn)
	if err != nil {
		return err
	}
	amountOut, err := parseBigInt(swap.AmountOut)
	if err != nil {
		return err
	}
	fee, err := parseBigInt(swap.Fee)
	if err != nil {
		return err
	}

	in := a.totals(swap.AssetIn)
	in.volumeIn.Add(in.volumeIn, amountIn)
	in.fees.Add(in.fees, fee)
	out := a.totals(swap.AssetOut)
	out.volumeOut.Add(out.volumeOut, amountOut)

	a.SwapCount++
	return nil
}

func (a *Accumulator) totals(asset string) *assetTotals {
	t, ok := a.assets[asset]
	if !ok {
		t = &assetTotals{volumeIn: big.NewInt(0), volumeOut: big.NewInt(0), fees: big.NewInt(0)}
		a.assets[asset] = t
	}
	return t
}

// Stats renders the accumulator. decimals > 0 formats amounts as decimals.
func (a *Accumulator) Stats(decimals int32) model.PoolStats {
	stats := model.PoolStats{
		Pool:           a.Pool,
		AssetA:         a.AssetA,
		AssetB:         a.AssetB,
		SwapCount:      a.SwapCount,
		DepositCount:   a.DepositCount,
		FeeChangeCount: a.FeeChanges,
		DepositedA:     formatTokenAmount(a.DepositedA, decimals),
		DepositedB:     formatTokenAmount(a.DepositedB, decimals),
		ReserveA:       formatTokenAmount(parseOrZero(a.ReserveA), decimals),
		ReserveB:       formatTokenAmount(parseOrZero(a.ReserveB), decimals),
		FirstEvent:     formatTime(a.First),
		LastEvent:      formatTime(a.Last),
		Assets:         make([]model.AssetStats, 0, len(a.assets)),
	}
	if !a.WindowStart.IsZero() {
		stats.WindowStart = formatTime(a.WindowStart)
		stats.WindowEnd = formatTime(a.WindowEnd)
	}

	keys := make([]string, 0, len(a.assets))
	for k := range a.assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t := a.assets[k]
		entry := model.AssetStats{
			Asset:     k,
			VolumeIn:  formatTokenAmount(t.volumeIn, decimals),
			VolumeOut: formatTokenAmount(t.volumeOut, decimals),
			Fees:      formatTokenAmount(t.fees, decimals),
		}
		if rate := computeRateFromInt(t.fees, t.volumeIn); rate != "" {
			entry.FeeRate = &rate
		}
		stats.Assets = append(stats.Assets, entry)
	}
	return stats
}
