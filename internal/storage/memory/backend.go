// Package memory is an in-process storage backend. Configuration writes are
// staged until commit; ledger transfers are compensated on rollback.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"ammpool/internal/auth"
	"ammpool/internal/ledger"
	"ammpool/internal/model"
	"ammpool/internal/storage"
)

var _ storage.Backend = (*Backend)(nil)

// Backend serializes transactions with a mutex held from Begin until Commit
// or Rollback.
type Backend struct {
	mu     sync.Mutex
	config map[storage.Key]string
	ledger *ledger.Memory

	snapshot *SnapshotFile
}

// New returns an empty backend over a fresh in-memory ledger.
func New(authz auth.Authorizer) *Backend {
	return &Backend{
		config: make(map[storage.Key]string),
		ledger: ledger.NewMemory(authz),
	}
}

// Open returns a backend persisted to a JSON snapshot at path, loading any
// existing snapshot first.
func Open(path string, authz auth.Authorizer) (*Backend, error) {
	b := New(authz)
	b.snapshot = &SnapshotFile{Path: path}

	snap, ok, err := b.snapshot.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		for name, value := range snap.Config {
			key, known := storage.ParseKey(name)
			if !known {
				return nil, fmt.Errorf("snapshot: unknown config key %q", name)
			}
			b.config[key] = value
		}
		if err := b.ledger.Load(snap.Balances); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	return b, nil
}

// Ledger exposes the live ledger, e.g. to mint test balances.
func (b *Backend) Ledger() *ledger.Memory {
	return b.ledger
}

func (b *Backend) Begin(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	return &tx{
		backend: b,
		overlay: &overlay{base: b.config, writes: make(map[storage.Key]string)},
		journal: ledger.NewJournal(b.ledger),
	}, nil
}

type tx struct {
	backend *Backend
	overlay *overlay
	journal *ledger.Journal
	done    bool
}

func (t *tx) Config() storage.ConfigStore { return t.overlay }

func (t *tx) Ledger() ledger.Ledger { return t.journal }

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return storage.ErrTxDone
	}

	next := make(map[storage.Key]string, len(t.backend.config)+len(t.overlay.writes))
	for k, v := range t.backend.config {
		next[k] = v
	}
	for k, v := range t.overlay.writes {
		next[k] = v
	}

	if t.backend.snapshot != nil {
		if err := t.backend.snapshot.Save(next, t.backend.ledger.Balances()); err != nil {
			rbErr := t.Rollback(ctx)
			if rbErr != nil {
				return fmt.Errorf("save snapshot: %w (rollback: %v)", err, rbErr)
			}
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	t.backend.config = next
	t.journal.Forget()
	t.finish()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	err := t.journal.Revert(ctx)
	t.finish()
	return err
}

func (t *tx) finish() {
	t.done = true
	t.backend.mu.Unlock()
}

// overlay reads through to the committed config and buffers writes.
type overlay struct {
	base   map[storage.Key]string
	writes map[storage.Key]string
}

func (o *overlay) Has(_ context.Context, key storage.Key) (bool, error) {
	if _, ok := o.writes[key]; ok {
		return true, nil
	}
	_, ok := o.base[key]
	return ok, nil
}

func (o *overlay) Get(_ context.Context, key storage.Key) (string, error) {
	if v, ok := o.writes[key]; ok {
		return v, nil
	}
	if v, ok := o.base[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
}

func (o *overlay) Set(_ context.Context, key storage.Key, value string) error {
	o.writes[key] = value
	return nil
}

// Mint credits a holder outside any pool call and persists the result.
func (b *Backend) Mint(ctx context.Context, asset, to model.Identity, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ledger.Mint(ctx, asset, to, amount); err != nil {
		return err
	}
	if b.snapshot != nil {
		return b.snapshot.Save(b.config, b.ledger.Balances())
	}
	return nil
}
