// Package pool is the pool controller: it orders every operation against the
// configuration store, the asset ledger and the pricing engine, inside one
// storage transaction per call.
package pool

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ammpool/internal/auth"
	"ammpool/internal/ledger"
	"ammpool/internal/model"
	"ammpool/internal/pricing"
	"ammpool/internal/storage"
)

// Config holds the controller's own settings.
type Config struct {
	// Address is the pool's holder identity on the ledger; reserves are its
	// balances.
	Address model.Identity
	Now     func() time.Time
}

// Controller serves the pool operations.
type Controller struct {
	backend storage.Backend
	authz   auth.Authorizer
	sink    storage.EventSink
	address model.Identity
	now     func() time.Time
	logger  *zap.Logger
}

func NewController(cfg Config, backend storage.Backend, authz auth.Authorizer, sink storage.EventSink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if authz == nil {
		authz = auth.ContextAuthorizer{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		backend: backend,
		authz:   authz,
		sink:    sink,
		address: cfg.Address,
		now:     now,
		logger:  logger,
	}
}

// Address returns the pool's holder identity.
func (c *Controller) Address() model.Identity {
	return c.address
}

// Initialize writes the pool configuration once. The admin is trusted as
// supplied.
func (c *Controller) Initialize(ctx context.Context, admin, assetA, assetB model.Identity, feeBps uint16) error {
	var event *model.PoolEvent
	err := c.update(ctx, "initialize", func(tx storage.Tx) error {
		initialized, err := tx.Config().Has(ctx, storage.KeyInitialized)
		if err != nil {
			return err
		}
		if initialized {
			return ErrAlreadyInitialized
		}
		if assetA == assetB {
			return fmt.Errorf("%w: %s", ErrIdenticalAssets, assetA.Hex())
		}
		cfg := model.PoolConfig{Admin: admin, AssetA: assetA, AssetB: assetB, FeeBps: feeBps, Initialized: true}
		if err := storage.SavePoolConfig(ctx, tx.Config(), cfg); err != nil {
			return fmt.Errorf("save pool config: %w", err)
		}
		reserves, err := c.readReserves(ctx, tx.Ledger(), cfg)
		if err != nil {
			return err
		}
		event = c.newEvent(model.EventInitialize, admin, reserves, model.InitializeEventData{
			Admin:  admin.Hex(),
			AssetA: assetA.Hex(),
			AssetB: assetB.Hex(),
			FeeBps: feeBps,
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("pool initialized",
		zap.String("admin", admin.Hex()),
		zap.String("asset_a", assetA.Hex()),
		zap.String("asset_b", assetB.Hex()),
		zap.Uint16("fee_bps", feeBps),
	)
	c.emit(ctx, event)
	return nil
}

// Deposit moves amountA and amountB from the depositor into the pool at any
// ratio.
func (c *Controller) Deposit(ctx context.Context, depositor model.Identity, amountA, amountB *big.Int) error {
	if !validAmount(amountA) || !validAmount(amountB) {
		return ErrInvalidAmount
	}

	var (
		event         *model.PoolEvent
		before, after model.Reserves
	)
	err := c.update(ctx, "deposit", func(tx storage.Tx) error {
		if err := c.authz.RequireAuth(ctx, depositor); err != nil {
			return err
		}
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if before, err = c.readReserves(ctx, tx.Ledger(), cfg); err != nil {
			return err
		}
		if err := tx.Ledger().Transfer(ctx, depositor, c.address, cfg.AssetA, amountA); err != nil {
			return fmt.Errorf("deposit asset a: %w", err)
		}
		if err := tx.Ledger().Transfer(ctx, depositor, c.address, cfg.AssetB, amountB); err != nil {
			return fmt.Errorf("deposit asset b: %w", err)
		}
		if after, err = c.readReserves(ctx, tx.Ledger(), cfg); err != nil {
			return err
		}
		event = c.newEvent(model.EventDeposit, depositor, after, model.DepositEventData{
			AmountA: amountA.String(),
			AmountB: amountB.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("deposit",
		zap.String("depositor", depositor.Hex()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("reserve_a_before", before.A.String()),
		zap.String("reserve_b_before", before.B.String()),
		zap.String("reserve_a_after", after.A.String()),
		zap.String("reserve_b_after", after.B.String()),
	)
	c.emit(ctx, event)
	return nil
}

// Swap sells amountIn of assetIn for the other asset and returns the amount
// paid out. The input is transferred before pricing; any later failure
// rolls that transfer back with the rest of the call.
func (c *Controller) Swap(ctx context.Context, trader, assetIn model.Identity, amountIn, minAmountOut *big.Int) (*big.Int, error) {
	if !validAmount(amountIn) || amountIn.Sign() <= 0 || !validAmount(minAmountOut) {
		return nil, ErrInvalidAmount
	}

	var (
		event *model.PoolEvent
		quote pricing.Quote
	)
	err := c.update(ctx, "swap", func(tx storage.Tx) error {
		if err := c.authz.RequireAuth(ctx, trader); err != nil {
			return err
		}
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		assetOut, ok := cfg.Counterpart(assetIn)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAsset, assetIn.Hex())
		}

		l := tx.Ledger()
		reserveIn, err := l.BalanceOf(ctx, c.address, assetIn)
		if err != nil {
			return fmt.Errorf("read reserve: %w", err)
		}
		reserveOut, err := l.BalanceOf(ctx, c.address, assetOut)
		if err != nil {
			return fmt.Errorf("read reserve: %w", err)
		}
		if reserveIn.Sign() == 0 {
			return ErrInsufficientLiquidity
		}

		if err := l.Transfer(ctx, trader, c.address, assetIn, amountIn); err != nil {
			return fmt.Errorf("transfer in: %w", err)
		}

		quote, err = pricing.Compute(reserveIn, reserveOut, amountIn, cfg.FeeBps)
		if err != nil {
			return err
		}
		if quote.AmountOut.Cmp(minAmountOut) < 0 {
			return fmt.Errorf("%w: out %s < min %s", ErrSlippageExceeded, quote.AmountOut, minAmountOut)
		}

		poolCtx := auth.WithPrincipals(ctx, c.address)
		if err := l.Transfer(poolCtx, c.address, trader, assetOut, quote.AmountOut); err != nil {
			return fmt.Errorf("transfer out: %w", err)
		}

		reserves, err := c.readReserves(ctx, l, cfg)
		if err != nil {
			return err
		}
		event = c.newEvent(model.EventSwap, trader, reserves, model.SwapEventData{
			AssetIn:   assetIn.Hex(),
			AssetOut:  assetOut.Hex(),
			AmountIn:  amountIn.String(),
			AmountOut: quote.AmountOut.String(),
			Fee:       quote.Fee.String(),
			FeeBps:    cfg.FeeBps,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("swap",
		zap.String("trader", trader.Hex()),
		zap.String("asset_in", assetIn.Hex()),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", quote.AmountOut.String()),
		zap.String("fee", quote.Fee.String()),
	)
	c.emit(ctx, event)
	return quote.AmountOut, nil
}

// QuoteSwap prices a swap without moving funds. It returns 0 when the input
// reserve is empty or amountIn is not positive.
func (c *Controller) QuoteSwap(ctx context.Context, assetIn model.Identity, amountIn *big.Int) (*big.Int, error) {
	var out *big.Int
	err := c.view(ctx, func(tx storage.Tx) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		out, err = QuoteFromReader(ctx, tx.Ledger(), c.address, cfg, assetIn, amountIn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetFee replaces the fee. The caller must be authorized as admin and admin
// must be the stored admin.
func (c *Controller) SetFee(ctx context.Context, admin model.Identity, feeBps uint16) error {
	var (
		event  *model.PoolEvent
		oldFee uint16
	)
	err := c.update(ctx, "set_fee", func(tx storage.Tx) error {
		if err := c.authz.RequireAuth(ctx, admin); err != nil {
			return err
		}
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if cfg.Admin != admin {
			return fmt.Errorf("%w: %s is not the pool admin", ErrUnauthorized, admin.Hex())
		}
		oldFee = cfg.FeeBps
		if err := storage.SetFee(ctx, tx.Config(), feeBps); err != nil {
			return fmt.Errorf("save fee: %w", err)
		}
		reserves, err := c.readReserves(ctx, tx.Ledger(), cfg)
		if err != nil {
			return err
		}
		event = c.newEvent(model.EventSetFee, admin, reserves, model.SetFeeEventData{
			OldFeeBps: oldFee,
			FeeBps:    feeBps,
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("fee updated", zap.Uint16("old_fee_bps", oldFee), zap.Uint16("fee_bps", feeBps))
	c.emit(ctx, event)
	return nil
}

// GetReserves returns the pool's balances of both assets.
func (c *Controller) GetReserves(ctx context.Context) (model.Reserves, error) {
	var reserves model.Reserves
	err := c.view(ctx, func(tx storage.Tx) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		reserves, err = c.readReserves(ctx, tx.Ledger(), cfg)
		return err
	})
	return reserves, err
}

// GetContractInfo returns the admin, both assets and the fee.
func (c *Controller) GetContractInfo(ctx context.Context) (model.ContractInfo, error) {
	var info model.ContractInfo
	err := c.view(ctx, func(tx storage.Tx) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		info = model.ContractInfo{Admin: cfg.Admin, AssetA: cfg.AssetA, AssetB: cfg.AssetB, FeeBps: cfg.FeeBps}
		return nil
	})
	return info, err
}

// QuoteFromReader prices a swap of amountIn against the balances pool holds
// in r.
func QuoteFromReader(ctx context.Context, r ledger.BalanceReader, pool model.Identity, cfg model.PoolConfig, assetIn model.Identity, amountIn *big.Int) (*big.Int, error) {
	assetOut, ok := cfg.Counterpart(assetIn)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, assetIn.Hex())
	}
	if !validAmount(amountIn) {
		return nil, ErrInvalidAmount
	}
	if amountIn.Sign() <= 0 {
		return new(big.Int), nil
	}

	reserveIn, err := r.BalanceOf(ctx, pool, assetIn)
	if err != nil {
		return nil, fmt.Errorf("read reserve: %w", err)
	}
	if reserveIn.Sign() == 0 {
		return new(big.Int), nil
	}
	reserveOut, err := r.BalanceOf(ctx, pool, assetOut)
	if err != nil {
		return nil, fmt.Errorf("read reserve: %w", err)
	}
	return pricing.AmountOut(reserveIn, reserveOut, amountIn, cfg.FeeBps)
}

func (c *Controller) update(ctx context.Context, op string, fn func(tx storage.Tx) error) error {
	tx, err := c.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		c.logger.Debug("pool call failed", zap.String("op", op), zap.Error(err))
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", op, err)
	}
	return nil
}

func (c *Controller) view(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := c.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	return fn(tx)
}

func (c *Controller) readReserves(ctx context.Context, r ledger.BalanceReader, cfg model.PoolConfig) (model.Reserves, error) {
	a, err := r.BalanceOf(ctx, c.address, cfg.AssetA)
	if err != nil {
		return model.Reserves{}, fmt.Errorf("read reserve a: %w", err)
	}
	b, err := r.BalanceOf(ctx, c.address, cfg.AssetB)
	if err != nil {
		return model.Reserves{}, fmt.Errorf("read reserve b: %w", err)
	}
	return model.Reserves{A: a, B: b}, nil
}

func (c *Controller) newEvent(kind model.EventKind, actor model.Identity, reserves model.Reserves, data interface{}) *model.PoolEvent {
	return &model.PoolEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Pool:      strings.ToLower(c.address.Hex()),
		Actor:     strings.ToLower(actor.Hex()),
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		ReserveA:  model.AmountString(reserves.A),
		ReserveB:  model.AmountString(reserves.B),
		Data:      data,
	}
}

func (c *Controller) emit(ctx context.Context, event *model.PoolEvent) {
	if c.sink == nil || event == nil {
		return
	}
	if err := c.sink.PutEventBatch(ctx, []model.PoolEvent{*event}); err != nil {
		c.logger.Warn("event sink failed", zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}

func loadConfig(ctx context.Context, tx storage.Tx) (model.PoolConfig, error) {
	cfg, err := storage.LoadPoolConfig(ctx, tx.Config())
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return model.PoolConfig{}, fmt.Errorf("%w: %w", ErrNotInitialized, err)
		}
		return model.PoolConfig{}, fmt.Errorf("load pool config: %w", err)
	}
	if !cfg.Initialized {
		return model.PoolConfig{}, fmt.Errorf("%w: %w: %s", ErrNotInitialized, storage.ErrKeyNotFound, storage.KeyInitialized)
	}
	return cfg, nil
}

func validAmount(v *big.Int) bool {
	return v != nil && model.InRange(v)
}
