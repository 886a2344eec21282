package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ammpool/internal/ledger"
	"ammpool/internal/model"
)

const erc20BalanceOfABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	balanceOfABI    abi.ABI
	balanceOfOnce   sync.Once
	balanceOfABIErr error
)

func getBalanceOfABI() (abi.ABI, error) {
	balanceOfOnce.Do(func() {
		balanceOfABI, balanceOfABIErr = abi.JSON(strings.NewReader(erc20BalanceOfABIJSON))
	})
	return balanceOfABI, balanceOfABIErr
}

// ContractCaller is the part of Client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ ledger.BalanceReader = (*BalanceReader)(nil)

// BalanceReader serves ERC20 balanceOf as a read-only ledger. Block pins
// reads to one block; nil reads latest.
type BalanceReader struct {
	Caller     ContractCaller
	Block      *big.Int
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *zap.Logger
}

func (r *BalanceReader) BalanceOf(ctx context.Context, holder, asset model.Identity) (*big.Int, error) {
	var bal *big.Int
	attempt := 0
	err := withRetry(ctx, r.MaxRetries, r.BaseDelay, func(ctx context.Context) error {
		attempt++
		v, err := balanceOf(ctx, r.Caller, asset, holder, r.Block)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Debug("balanceOf failed",
					zap.String("token", asset.Hex()),
					zap.String("owner", holder.Hex()),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			return err
		}
		bal = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !model.InRange(bal) {
		return nil, fmt.Errorf("balance of %s: %w", asset.Hex(), ledger.ErrAmountOutOfRange)
	}
	return bal, nil
}

// ReadReserves fetches the pool's balances of both assets concurrently.
func ReadReserves(ctx context.Context, r ledger.BalanceReader, pool, assetA, assetB model.Identity) (model.Reserves, error) {
	var reserves model.Reserves
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.BalanceOf(gctx, pool, assetA)
		if err != nil {
			return fmt.Errorf("reserve a: %w", err)
		}
		reserves.A = v
		return nil
	})
	g.Go(func() error {
		v, err := r.BalanceOf(gctx, pool, assetB)
		if err != nil {
			return fmt.Errorf("reserve b: %w", err)
		}
		reserves.B = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Reserves{}, err
	}
	return reserves, nil
}

func balanceOf(ctx context.Context, caller ContractCaller, token common.Address, owner common.Address, blockNumber *big.Int) (*big.Int, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	balanceABI, err := getBalanceOfABI()
	if err != nil {
		return nil, err
	}

	data, err := balanceABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	msg := ethereum.CallMsg{To: &token, Data: data}
	resp, err := caller.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	values, err := balanceABI.Unpack("balanceOf", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("balanceOf return size %d", len(values))
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf unexpected type %T", values[0])
	}
	return bal, nil
}
