package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "amm",
		Short:        "Two-asset constant-product liquidity pool",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("backend", "file", "storage backend (file, postgres)")
	pf.String("state-file", "./data/pool_state.json", "pool state file for the file backend")
	pf.String("pg-dsn", "", "Postgres DSN for the postgres backend")
	pf.String("pool-address", "", "the pool's own ledger address")
	pf.String("events-out", "./data/events.jsonl", "pool events JSONL path (empty disables)")
	pf.String("key", "", "hex private key of the calling principal")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the pool configuration",
		RunE:  runInit,
	}
	initCmd.Flags().String("admin", "", "admin address (defaults to the --key principal)")
	initCmd.Flags().String("asset-a", "", "asset A address")
	initCmd.Flags().String("asset-b", "", "asset B address")
	initCmd.Flags().Uint16("fee", 30, "fee in basis points")
	root.AddCommand(initCmd)

	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Credit a holder on the local ledger",
		RunE:  runMint,
	}
	mintCmd.Flags().String("asset", "", "asset address")
	mintCmd.Flags().String("to", "", "holder address (defaults to the --key principal)")
	mintCmd.Flags().String("amount", "", "amount in base units")
	root.AddCommand(mintCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit both assets into the pool",
		RunE:  runDeposit,
	}
	depositCmd.Flags().String("depositor", "", "depositor address (defaults to the --key principal)")
	depositCmd.Flags().String("amount-a", "0", "amount of asset A")
	depositCmd.Flags().String("amount-b", "0", "amount of asset B")
	root.AddCommand(depositCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap one asset for the other",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("trader", "", "trader address (defaults to the --key principal)")
	swapCmd.Flags().String("asset-in", "", "asset sold to the pool")
	swapCmd.Flags().String("amount-in", "", "amount sold")
	swapCmd.Flags().String("min-out", "0", "minimum amount received")
	root.AddCommand(swapCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap without executing it",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("asset-in", "", "asset sold to the pool")
	quoteCmd.Flags().String("amount-in", "", "amount sold")
	root.AddCommand(quoteCmd)

	setFeeCmd := &cobra.Command{
		Use:   "set-fee",
		Short: "Change the pool fee (admin only)",
		RunE:  runSetFee,
	}
	setFeeCmd.Flags().String("admin", "", "admin address (defaults to the --key principal)")
	setFeeCmd.Flags().Uint16("fee", 0, "new fee in basis points")
	root.AddCommand(setFeeCmd)

	root.AddCommand(&cobra.Command{
		Use:   "reserves",
		Short: "Print the pool reserves",
		RunE:  runReserves,
	})

	root.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Print the pool configuration",
		RunE:  runInfo,
	})

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a pool events journal",
		RunE:  runStats,
	}
	statsCmd.Flags().String("in", "", "input pool events JSONL (defaults to --events-out)")
	statsCmd.Flags().Duration("window", 0, "split stats into windows (e.g. 1h); 0 summarizes everything")
	statsCmd.Flags().Int32("decimals", 0, "format amounts with this many decimals")
	root.AddCommand(statsCmd)

	quoteChainCmd := &cobra.Command{
		Use:   "quote-chain",
		Short: "Quote a swap against ERC20 reserves on an EVM chain",
		RunE:  runQuoteChain,
	}
	quoteChainCmd.Flags().String("rpc", "", "EVM RPC URL")
	quoteChainCmd.Flags().String("pool", "", "pool contract address holding the reserves")
	quoteChainCmd.Flags().String("asset-a", "", "asset A token address")
	quoteChainCmd.Flags().String("asset-b", "", "asset B token address")
	quoteChainCmd.Flags().Uint16("fee", 30, "fee in basis points")
	quoteChainCmd.Flags().String("asset-in", "", "asset sold to the pool")
	quoteChainCmd.Flags().String("amount-in", "", "amount sold")
	quoteChainCmd.Flags().Uint64("block", 0, "block number to read at, 0 means latest")
	quoteChainCmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	quoteChainCmd.Flags().Duration("retry-backoff", 0, "initial retry backoff")
	root.AddCommand(quoteChainCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
