package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"ammpool/internal/auth"
	"ammpool/internal/model"
)

// Memory is an in-process ledger. Transfers take effect immediately.
type Memory struct {
	mu       sync.RWMutex
	authz    auth.Authorizer
	balances map[model.Identity]map[model.Identity]*big.Int
}

func NewMemory(authz auth.Authorizer) *Memory {
	if authz == nil {
		authz = auth.ContextAuthorizer{}
	}
	return &Memory{
		authz:    authz,
		balances: make(map[model.Identity]map[model.Identity]*big.Int),
	}
}

func (m *Memory) BalanceOf(_ context.Context, holder, asset model.Identity) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.balance(asset, holder)), nil
}

func (m *Memory) Transfer(ctx context.Context, from, to, asset model.Identity, amount *big.Int) error {
	fail := func(err error) error {
		return &TransferError{Asset: asset, From: from, To: to, Amount: amount, Err: err}
	}
	if err := ValidateAmount(amount); err != nil {
		return fail(err)
	}
	if err := m.authz.RequireAuth(ctx, from); err != nil {
		return fail(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromBal := m.balance(asset, from)
	if fromBal.Cmp(amount) < 0 {
		return fail(ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}
	toBal := new(big.Int).Add(m.balance(asset, to), amount)
	if !model.InRange(toBal) {
		return fail(ErrAmountOutOfRange)
	}

	m.set(asset, from, new(big.Int).Sub(fromBal, amount))
	m.set(asset, to, toBal)
	return nil
}

// Mint credits amount of asset to holder without a source.
func (m *Memory) Mint(_ context.Context, asset, to model.Identity, amount *big.Int) error {
	if err := ValidateAmount(amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := new(big.Int).Add(m.balance(asset, to), amount)
	if !model.InRange(next) {
		return fmt.Errorf("mint: %w", ErrAmountOutOfRange)
	}
	m.set(asset, to, next)
	return nil
}

// Balances returns every nonzero balance sorted by asset then holder.
func (m *Memory) Balances() []model.Balance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Balance, 0)
	for asset, holders := range m.balances {
		for holder, amount := range holders {
			if amount.Sign() == 0 {
				continue
			}
			out = append(out, model.Balance{Asset: asset, Holder: holder, Amount: amount.String()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset.Hex() < out[j].Asset.Hex()
		}
		return out[i].Holder.Hex() < out[j].Holder.Hex()
	})
	return out
}

// Load replaces all balances.
func (m *Memory) Load(balances []model.Balance) error {
	next := make(map[model.Identity]map[model.Identity]*big.Int)
	for _, b := range balances {
		amount, err := model.ParseAmount(b.Amount)
		if err != nil {
			return fmt.Errorf("balance %s/%s: %w", b.Asset.Hex(), b.Holder.Hex(), err)
		}
		if amount.Sign() < 0 {
			return fmt.Errorf("balance %s/%s: %w", b.Asset.Hex(), b.Holder.Hex(), ErrNegativeAmount)
		}
		if next[b.Asset] == nil {
			next[b.Asset] = make(map[model.Identity]*big.Int)
		}
		next[b.Asset][b.Holder] = amount
	}

	m.mu.Lock()
	m.balances = next
	m.mu.Unlock()
	return nil
}

func (m *Memory) balance(asset, holder model.Identity) *big.Int {
	if holders, ok := m.balances[asset]; ok {
		if v, ok := holders[holder]; ok {
			return v
		}
	}
	return new(big.Int)
}

func (m *Memory) set(asset, holder model.Identity, amount *big.Int) {
	holders, ok := m.balances[asset]
	if !ok {
		holders = make(map[model.Identity]*big.Int)
		m.balances[asset] = holders
	}
	holders[holder] = amount
}
