package pool

import (
	"errors"

	"ammpool/internal/auth"
)

var (
	ErrAlreadyInitialized    = errors.New("pool already initialized")
	ErrNotInitialized        = errors.New("pool not initialized")
	ErrUnauthorized          = auth.ErrUnauthorized
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrUnknownAsset          = errors.New("unknown asset")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrIdenticalAssets       = errors.New("identical assets")
)
