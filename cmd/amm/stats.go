package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ammpool/internal/aggregate"
	"ammpool/internal/config"
)

func runStats(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStats(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := aggregate.NewAggregator(aggregate.Config{
		Window:   cfg.Window,
		Decimals: cfg.Decimals,
	}, logger).Run(ctx, cfg.In)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), stats)
}
