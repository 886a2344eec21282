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

	"ammpool/internal/auth"
	"ammpool/internal/config"
	"ammpool/internal/model"
	"ammpool/internal/pool"
	"ammpool/internal/storage"
	"ammpool/internal/storage/memory"
	"ammpool/internal/storage/postgres"
)

type minter interface {
	Mint(ctx context.Context, asset, to model.Identity, amount *big.Int) error
}

// app is the wiring shared by the pool commands.
type app struct {
	ctx       context.Context
	cfg       config.Config
	logger    *zap.Logger
	ctrl      *pool.Controller
	minter    minter
	principal *model.Identity
	closers   []func()
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	poolAddress, err := model.ParseIdentity(cfg.PoolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool-address: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{cfg: cfg, logger: logger, closers: []func(){stop, func() { _ = logger.Sync() }}}

	if cfg.Key != "" {
		id, _, err := auth.PrincipalFromKey(cfg.Key)
		if err != nil {
			a.Close()
			return nil, err
		}
		ctx = auth.WithPrincipals(ctx, id)
		a.principal = &id
	}
	a.ctx = ctx

	authz := auth.ContextAuthorizer{}
	var (
		backend storage.Backend
		sinks   storage.MultiSink
	)
	switch cfg.Backend {
	case config.BackendPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN, poolAddress, authz)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		backend, a.minter = store, store
		sinks = append(sinks, store)
	default:
		b, err := memory.Open(cfg.StateFile, authz)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open state file: %w", err)
		}
		backend, a.minter = b, b
	}
	if cfg.EventsOut != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.EventsOut))
	}

	a.ctrl = pool.NewController(pool.Config{Address: poolAddress}, backend, authz, sinks, logger)

	logger.Debug("pool app ready",
		zap.String("backend", cfg.Backend),
		zap.String("pool", poolAddress.Hex()),
		zap.Bool("principal", a.principal != nil),
	)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// identity reads an address flag, falling back to the --key principal.
func (a *app) identity(cmd *cobra.Command, flag string) (model.Identity, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if raw != "" {
		id, err := model.ParseIdentity(raw)
		if err != nil {
			return model.Identity{}, fmt.Errorf("%s: %w", flag, err)
		}
		return id, nil
	}
	if a.principal != nil {
		return *a.principal, nil
	}
	return model.Identity{}, fmt.Errorf("--%s or --key is required", flag)
}

func requiredIdentity(cmd *cobra.Command, flag string) (model.Identity, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if raw == "" {
		return model.Identity{}, fmt.Errorf("--%s is required", flag)
	}
	id, err := model.ParseIdentity(raw)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%s: %w", flag, err)
	}
	return id, nil
}

func amountFlag(cmd *cobra.Command, flag string) (*big.Int, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if raw == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}
	v, err := model.ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return v, nil
}
