// Package storage holds the pool's configuration store contract, the
// transaction boundary every pool call runs in, and the event sink.
package storage

import (
	"context"
	"errors"

	"ammpool/internal/ledger"
	"ammpool/internal/model"
)

var (
	// ErrKeyNotFound is the lookup error for an absent configuration key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("transaction already finished")
)

// Key enumerates the persisted configuration entries of a pool.
type Key uint8

const (
	KeyAdmin Key = iota + 1
	KeyAssetA
	KeyAssetB
	KeyFee
	KeyInitialized
)

// Keys lists every configuration key.
var Keys = []Key{KeyAdmin, KeyAssetA, KeyAssetB, KeyFee, KeyInitialized}

func (k Key) String() string {
	switch k {
	case KeyAdmin:
		return "admin"
	case KeyAssetA:
		return "asset_a"
	case KeyAssetB:
		return "asset_b"
	case KeyFee:
		return "fee"
	case KeyInitialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// ParseKey is the inverse of Key.String.
func ParseKey(name string) (Key, bool) {
	for _, k := range Keys {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// ConfigStore is a small key-value store over Key. Get returns
// ErrKeyNotFound for absent keys.
type ConfigStore interface {
	Has(ctx context.Context, key Key) (bool, error)
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
}

// Tx is one all-or-nothing unit of work spanning the configuration store and
// the ledger. Rollback after Commit is a no-op.
type Tx interface {
	Config() ConfigStore
	Ledger() ledger.Ledger
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Backend opens transactions. Begin blocks until no other transaction is
// open against the same pool.
type Backend interface {
	Begin(ctx context.Context) (Tx, error)
}

// EventSink receives committed pool events.
type EventSink interface {
	PutEventBatch(ctx context.Context, events []model.PoolEvent) error
}

// MultiSink fans events out to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) PutEventBatch(ctx context.Context, events []model.PoolEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.PutEventBatch(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
