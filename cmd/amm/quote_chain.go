package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammpool/internal/chain"
	"ammpool/internal/config"
	"ammpool/internal/model"
	"ammpool/internal/pool"
)

type chainQuote struct {
	Pool      string          `json:"pool"`
	Block     string          `json:"block"`
	Reserves  model.Reserves  `json:"reserves"`
	AssetIn   string          `json:"asset_in"`
	AmountIn  string          `json:"amount_in"`
	AmountOut string          `json:"amount_out"`
	Fee       string          `json:"fee"`
	TokenIn   model.TokenMeta `json:"token_in"`
	TokenOut  model.TokenMeta `json:"token_out"`
	// Display is AmountOut scaled by the output token's decimals.
	Display string `json:"display,omitempty"`
}

func runQuoteChain(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	poolAddr, err := requiredIdentity(cmd, "pool")
	if err != nil {
		return err
	}
	assetA, err := requiredIdentity(cmd, "asset-a")
	if err != nil {
		return err
	}
	assetB, err := requiredIdentity(cmd, "asset-b")
	if err != nil {
		return err
	}
	assetIn, err := requiredIdentity(cmd, "asset-in")
	if err != nil {
		return err
	}
	amountIn, err := amountFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	fee, _ := cmd.Flags().GetUint16("fee")
	blockNumber, _ := cmd.Flags().GetUint64("block")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	if blockNumber == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
		blockNumber = latest
	}

	reader := &chain.BalanceReader{
		Caller:     chainClient,
		Block:      new(big.Int).SetUint64(blockNumber),
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBackoff,
		Logger:     logger,
	}

	reserves, err := chain.ReadReserves(ctx, reader, poolAddr, assetA, assetB)
	if err != nil {
		return err
	}

	poolCfg := model.PoolConfig{AssetA: assetA, AssetB: assetB, FeeBps: fee, Initialized: true}
	out, err := pool.QuoteFromReader(ctx, reader, poolAddr, poolCfg, assetIn, amountIn)
	if err != nil {
		return err
	}

	assetOut, _ := poolCfg.Counterpart(assetIn)
	tokens := chain.NewTokenMetaCache()
	metaIn, err := tokens.Fetch(ctx, chainClient, assetIn, logger)
	if err != nil {
		logger.Warn("token metadata", zap.String("token", assetIn.Hex()), zap.Error(err))
	}
	metaOut, err := tokens.Fetch(ctx, chainClient, assetOut, logger)
	if err != nil {
		logger.Warn("token metadata", zap.String("token", assetOut.Hex()), zap.Error(err))
	}

	logger.Info("chain quote",
		zap.String("pool", poolAddr.Hex()),
		zap.Uint64("block", blockNumber),
		zap.String("reserve_a", reserves.A.String()),
		zap.String("reserve_b", reserves.B.String()),
		zap.String("amount_out", out.String()),
	)

	return writeJSON(cmd.OutOrStdout(), chainQuote{
		Pool:      poolAddr.Hex(),
		Block:     fmt.Sprintf("%d", blockNumber),
		Reserves:  reserves,
		AssetIn:   assetIn.Hex(),
		AmountIn:  amountIn.String(),
		AmountOut: out.String(),
		Fee:       model.FormatFee(fee),
		TokenIn:   metaIn,
		TokenOut:  metaOut,
		Display:   model.FormatAmount(out, int32(metaOut.Decimals)),
	})
}
