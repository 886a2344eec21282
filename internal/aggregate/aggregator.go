// Package aggregate summarizes a pool event journal: swap and deposit
// counts, per-asset volume and the fees that accrued into reserves.
package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ammpool/internal/model"
)

// Config controls aggregation behavior.
type Config struct {
	// Window splits stats into fixed windows; zero summarizes the whole
	// journal per pool.
	Window time.Duration
	// Decimals formats amounts with that many fractional digits.
	Decimals int32
}

// Aggregator aggregates pool events into stats.
type Aggregator struct {
	cfg          Config
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run reads a pool events JSONL file and returns stats sorted by pool, then
// window.
func (a *Aggregator) Run(ctx context.Context, inputPath string) ([]model.PoolStats, error) {
	if a.cfg.Window < 0 {
		return nil, fmt.Errorf("window must be >= 0")
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, failed int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.PoolEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode pool event", zap.Error(err))
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, record.Timestamp)
		if err != nil {
			failed++
			a.logger.Warn("event timestamp", zap.String("id", record.ID), zap.Error(err))
			continue
		}

		acc := a.accumulator(record.Pool, ts)
		if err := acc.AddEvent(record, ts); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.Pool), zap.String("kind", string(record.Kind)))
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	out := make([]model.PoolStats, 0, len(a.accumulators))
	accs := make([]*Accumulator, 0, len(a.accumulators))
	for _, acc := range a.accumulators {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		if accs[i].Pool != accs[j].Pool {
			return accs[i].Pool < accs[j].Pool
		}
		return accs[i].WindowStart.Before(accs[j].WindowStart)
	})
	for _, acc := range accs {
		out = append(out, acc.Stats(a.cfg.Decimals))
	}
	a.accumulators = make(map[string]*Accumulator)

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("failed", failed),
		zap.Int("windows", len(out)),
	)
	return out, nil
}

func (a *Aggregator) accumulator(pool string, ts time.Time) *Accumulator {
	pool = strings.ToLower(pool)
	key := pool
	var start, end time.Time
	if a.cfg.Window > 0 {
		start = windowStart(ts, a.cfg.Window)
		end = start.Add(a.cfg.Window)
		key = fmt.Sprintf("%s/%d", pool, start.Unix())
	}
	acc, ok := a.accumulators[key]
	if !ok {
		acc = NewAccumulator(pool, start, end)
		a.accumulators[key] = acc
	}
	return acc
}
