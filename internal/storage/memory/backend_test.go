package memory

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"ammpool/internal/auth"
	"ammpool/internal/storage"
)

var (
	asset  = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	holder = common.HexToAddress("0x1111111111111111111111111111111111111111")
	pool   = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
)

func TestRollbackDiscardsConfigAndTransfers(t *testing.T) {
	req := require.New(t)
	ctx := auth.WithPrincipals(context.Background(), holder)
	b := New(auth.ContextAuthorizer{})
	req.NoError(b.Mint(ctx, asset, holder, big.NewInt(100)))

	tx, err := b.Begin(ctx)
	req.NoError(err)
	req.NoError(tx.Config().Set(ctx, storage.KeyFee, "30"))
	req.NoError(tx.Ledger().Transfer(ctx, holder, pool, asset, big.NewInt(60)))

	v, err := tx.Config().Get(ctx, storage.KeyFee)
	req.NoError(err)
	req.Equal("30", v)
	bal, err := tx.Ledger().BalanceOf(ctx, pool, asset)
	req.NoError(err)
	req.Equal("60", bal.String())

	req.NoError(tx.Rollback(ctx))
	req.NoError(tx.Rollback(ctx))

	tx, err = b.Begin(ctx)
	req.NoError(err)
	defer tx.Rollback(ctx)
	_, err = tx.Config().Get(ctx, storage.KeyFee)
	req.ErrorIs(err, storage.ErrKeyNotFound)
	has, err := tx.Config().Has(ctx, storage.KeyFee)
	req.NoError(err)
	req.False(has)
	bal, err = tx.Ledger().BalanceOf(ctx, holder, asset)
	req.NoError(err)
	req.Equal("100", bal.String())
}

func TestCommitPersistsSnapshot(t *testing.T) {
	req := require.New(t)
	ctx := auth.WithPrincipals(context.Background(), holder)
	path := filepath.Join(t.TempDir(), "state", "pool.json")

	b, err := Open(path, auth.ContextAuthorizer{})
	req.NoError(err)
	req.NoError(b.Mint(ctx, asset, holder, big.NewInt(100)))

	tx, err := b.Begin(ctx)
	req.NoError(err)
	req.NoError(tx.Config().Set(ctx, storage.KeyInitialized, "true"))
	req.NoError(tx.Ledger().Transfer(ctx, holder, pool, asset, big.NewInt(25)))
	req.NoError(tx.Commit(ctx))
	req.ErrorIs(tx.Commit(ctx), storage.ErrTxDone)
	req.NoError(tx.Rollback(ctx))

	reopened, err := Open(path, auth.ContextAuthorizer{})
	req.NoError(err)
	tx, err = reopened.Begin(ctx)
	req.NoError(err)
	defer tx.Rollback(ctx)

	has, err := tx.Config().Has(ctx, storage.KeyInitialized)
	req.NoError(err)
	req.True(has)
	bal, err := tx.Ledger().BalanceOf(ctx, pool, asset)
	req.NoError(err)
	req.Equal("25", bal.String())
	bal, err = tx.Ledger().BalanceOf(ctx, holder, asset)
	req.NoError(err)
	req.Equal("75", bal.String())
}

func TestBeginCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Begin(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
