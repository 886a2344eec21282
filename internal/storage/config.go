package storage

import (
	"context"
	"fmt"
	"strconv"

	"ammpool/internal/model"
)

// GetIdentity reads an address-valued key.
func GetIdentity(ctx context.Context, s ConfigStore, key Key) (model.Identity, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return model.Identity{}, err
	}
	id, err := model.ParseIdentity(raw)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%s: %w", key, err)
	}
	return id, nil
}

// SetIdentity writes an address-valued key.
func SetIdentity(ctx context.Context, s ConfigStore, key Key, id model.Identity) error {
	return s.Set(ctx, key, id.Hex())
}

// GetFee reads the fee in basis points.
func GetFee(ctx context.Context, s ConfigStore) (uint16, error) {
	raw, err := s.Get(ctx, KeyFee)
	if err != nil {
		return 0, err
	}
	fee, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", KeyFee, err)
	}
	return uint16(fee), nil
}

// SetFee writes the fee in basis points.
func SetFee(ctx context.Context, s ConfigStore, feeBps uint16) error {
	return s.Set(ctx, KeyFee, strconv.FormatUint(uint64(feeBps), 10))
}

// LoadPoolConfig reads every configuration key.
func LoadPoolConfig(ctx context.Context, s ConfigStore) (model.PoolConfig, error) {
	var cfg model.PoolConfig
	var err error
	if cfg.Admin, err = GetIdentity(ctx, s, KeyAdmin); err != nil {
		return model.PoolConfig{}, err
	}
	if cfg.AssetA, err = GetIdentity(ctx, s, KeyAssetA); err != nil {
		return model.PoolConfig{}, err
	}
	if cfg.AssetB, err = GetIdentity(ctx, s, KeyAssetB); err != nil {
		return model.PoolConfig{}, err
	}
	if cfg.FeeBps, err = GetFee(ctx, s); err != nil {
		return model.PoolConfig{}, err
	}
	cfg.Initialized, err = s.Has(ctx, KeyInitialized)
	if err != nil {
		return model.PoolConfig{}, err
	}
	return cfg, nil
}

// SavePoolConfig writes every configuration key, the initialized flag last.
func SavePoolConfig(ctx context.Context, s ConfigStore, cfg model.PoolConfig) error {
	if err := SetIdentity(ctx, s, KeyAdmin, cfg.Admin); err != nil {
		return err
	}
	if err := SetIdentity(ctx, s, KeyAssetA, cfg.AssetA); err != nil {
		return err
	}
	if err := SetIdentity(ctx, s, KeyAssetB, cfg.AssetB); err != nil {
		return err
	}
	if err := SetFee(ctx, s, cfg.FeeBps); err != nil {
		return err
	}
	return s.Set(ctx, KeyInitialized, strconv.FormatBool(true))
}
