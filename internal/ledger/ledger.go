// Package ledger defines the asset ledger the pool holds its reserves in.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"ammpool/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("negative amount")
	ErrAmountOutOfRange    = errors.New("amount out of range")
)

// BalanceReader reads per-asset, per-holder balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, holder, asset model.Identity) (*big.Int, error)
}

// Ledger moves balances between holders. Transfer requires authorization of
// from and fails without effect on insufficient balance.
type Ledger interface {
	BalanceReader
	Transfer(ctx context.Context, from, to, asset model.Identity, amount *big.Int) error
}

// TransferError describes a rejected transfer.
type TransferError struct {
	Asset  model.Identity
	From   model.Identity
	To     model.Identity
	Amount *big.Int
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s of %s from %s to %s: %v",
		model.AmountString(e.Amount), e.Asset.Hex(), e.From.Hex(), e.To.Hex(), e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ValidateAmount rejects negative or out-of-range transfer amounts.
func ValidateAmount(amount *big.Int) error {
	if amount == nil || !model.InRange(amount) {
		return ErrAmountOutOfRange
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}
