package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"ammpool/internal/auth"
	"ammpool/internal/model"
)

type transferRecord struct {
	from   model.Identity
	to     model.Identity
	asset  model.Identity
	amount *big.Int
}

// Journal records transfers made through it so they can be compensated when
// the enclosing call aborts. It is for ledgers without native transactions.
type Journal struct {
	ledger  Ledger
	entries []transferRecord
}

func NewJournal(l Ledger) *Journal {
	return &Journal{ledger: l}
}

func (j *Journal) BalanceOf(ctx context.Context, holder, asset model.Identity) (*big.Int, error) {
	return j.ledger.BalanceOf(ctx, holder, asset)
}

func (j *Journal) Transfer(ctx context.Context, from, to, asset model.Identity, amount *big.Int) error {
	if err := j.ledger.Transfer(ctx, from, to, asset, amount); err != nil {
		return err
	}
	j.entries = append(j.entries, transferRecord{
		from:   from,
		to:     to,
		asset:  asset,
		amount: new(big.Int).Set(amount),
	})
	return nil
}

// Len returns the number of recorded transfers.
func (j *Journal) Len() int {
	return len(j.entries)
}

// Revert issues reversing transfers newest-first and clears the journal.
// The recipient of each recorded transfer authorizes its reversal.
func (j *Journal) Revert(ctx context.Context) error {
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		rec := j.entries[i]
		revCtx := auth.WithPrincipals(ctx, rec.to)
		if err := j.ledger.Transfer(revCtx, rec.to, rec.from, rec.asset, rec.amount); err != nil {
			errs = append(errs, fmt.Errorf("compensate transfer %d: %w", i, err))
		}
	}
	j.entries = nil
	return errors.Join(errs...)
}

// Forget drops recorded transfers, making them permanent.
func (j *Journal) Forget() {
	j.entries = nil
}
