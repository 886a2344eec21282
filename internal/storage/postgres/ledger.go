package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5"

	"ammpool/internal/auth"
	"ammpool/internal/ledger"
	"ammpool/internal/model"
)

type ledgerStore struct {
	q     querier
	authz auth.Authorizer
}

func (l *ledgerStore) BalanceOf(ctx context.Context, holder, asset model.Identity) (*big.Int, error) {
	return l.balance(ctx, asset, holder, false)
}

func (l *ledgerStore) Transfer(ctx context.Context, from, to, asset model.Identity, amount *big.Int) error {
	fail := func(err error) error {
		return &ledger.TransferError{Asset: asset, From: from, To: to, Amount: amount, Err: err}
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return fail(err)
	}
	if err := l.authz.RequireAuth(ctx, from); err != nil {
		return fail(err)
	}

	fromBal, err := l.balance(ctx, asset, from, true)
	if err != nil {
		return fail(err)
	}
	if fromBal.Cmp(amount) < 0 {
		return fail(ledger.ErrInsufficientBalance)
	}
	if from == to || amount.Sign() == 0 {
		return nil
	}

	if _, err := l.q.Exec(ctx, `
		UPDATE ledger_balances SET amount = amount - $3::numeric, updated_at = now()
		WHERE asset=$1 AND holder=$2
	`, addrKey(asset), addrKey(from), amount.String()); err != nil {
		return fail(err)
	}
	if err := l.credit(ctx, asset, to, amount); err != nil {
		return fail(err)
	}
	return nil
}

func (l *ledgerStore) credit(ctx context.Context, asset, to model.Identity, amount *big.Int) error {
	toBal, err := l.balance(ctx, asset, to, true)
	if err != nil {
		return err
	}
	if !model.InRange(new(big.Int).Add(toBal, amount)) {
		return ledger.ErrAmountOutOfRange
	}
	_, err = l.q.Exec(ctx, `
		INSERT INTO ledger_balances (asset, holder, amount, updated_at)
		VALUES ($1, $2, $3::numeric, now())
		ON CONFLICT (asset, holder) DO UPDATE
		SET amount = ledger_balances.amount + EXCLUDED.amount, updated_at = now()
	`, addrKey(asset), addrKey(to), amount.String())
	return err
}

func (l *ledgerStore) balance(ctx context.Context, asset, holder model.Identity, forUpdate bool) (*big.Int, error) {
	query := `SELECT amount::text FROM ledger_balances WHERE asset=$1 AND holder=$2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw string
	if err := l.q.QueryRow(ctx, query, addrKey(asset), addrKey(holder)).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return new(big.Int), nil
		}
		return nil, err
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored balance: %s", raw)
	}
	return v, nil
}

func addrKey(id model.Identity) string {
	return strings.ToLower(id.Hex())
}
