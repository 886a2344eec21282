package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ammpool/internal/storage"
)

type configStore struct {
	q    querier
	pool string
}

func (c *configStore) Has(ctx context.Context, key storage.Key) (bool, error) {
	var exists bool
	row := c.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pool_config WHERE pool_address=$1 AND key=$2)`, c.pool, key.String())
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (c *configStore) Get(ctx context.Context, key storage.Key) (string, error) {
	var value string
	row := c.q.QueryRow(ctx, `SELECT value FROM pool_config WHERE pool_address=$1 AND key=$2`, c.pool, key.String())
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
		}
		return "", err
	}
	return value, nil
}

func (c *configStore) Set(ctx context.Context, key storage.Key, value string) error {
	_, err := c.q.Exec(ctx, `
		INSERT INTO pool_config (pool_address, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (pool_address, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, c.pool, key.String(), value)
	return err
}
