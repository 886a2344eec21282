// Package postgres keeps pool configuration and ledger balances in one
// Postgres database so every pool call commits or aborts as a unit.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammpool/internal/auth"
	"ammpool/internal/ledger"
	"ammpool/internal/model"
	"ammpool/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

var (
	_ storage.Backend   = (*Store)(nil)
	_ storage.EventSink = (*Store)(nil)
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides the Postgres backend for one pool.
type Store struct {
	pool    *pgxpool.Pool
	address model.Identity
	authz   auth.Authorizer
}

func NewStore(ctx context.Context, dsn string, poolAddress model.Identity, authz auth.Authorizer) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if authz == nil {
		authz = auth.ContextAuthorizer{}
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, address: poolAddress, authz: authz}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) poolKey() string {
	return strings.ToLower(s.address.Hex())
}

// Begin opens a transaction and takes the pool's advisory lock, so calls
// against the same pool run one at a time.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.poolKey()); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("lock pool: %w", err)
	}
	return &pgTx{
		tx:     tx,
		config: &configStore{q: tx, pool: s.poolKey()},
		ledger: &ledgerStore{q: tx, authz: s.authz},
	}, nil
}

// Mint credits a holder in its own transaction.
func (s *Store) Mint(ctx context.Context, asset, to model.Identity, amount *big.Int) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.poolKey()); err != nil {
		return fmt.Errorf("lock pool: %w", err)
	}

	l := &ledgerStore{q: tx, authz: s.authz}
	if err := l.credit(ctx, asset, to, amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	return tx.Commit(ctx)
}

// PutEventBatch inserts committed pool events.
func (s *Store) PutEventBatch(ctx context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range events {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
		batch.Queue(`
			INSERT INTO pool_events (
				id, pool_address, kind, actor, reserve_a, reserve_b, data, created_at
			) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8::timestamptz)
			ON CONFLICT (id) DO NOTHING
		`,
			e.ID,
			strings.ToLower(e.Pool),
			string(e.Kind),
			strings.ToLower(e.Actor),
			zeroIfEmpty(e.ReserveA),
			zeroIfEmpty(e.ReserveB),
			data,
			e.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func zeroIfEmpty(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

type pgTx struct {
	tx     pgx.Tx
	config *configStore
	ledger *ledgerStore
	done   bool
}

func (t *pgTx) Config() storage.ConfigStore { return t.config }

func (t *pgTx) Ledger() ledger.Ledger { return t.ledger }

func (t *pgTx) Commit(ctx context.Context) error {
	if t.done {
		return storage.ErrTxDone
	}
	t.done = true
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback(ctx)
}
