// Package auth decides whether the current call may act on behalf of an
// identity.
package auth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"ammpool/internal/model"
)

var ErrUnauthorized = errors.New("unauthorized")

// Authorizer aborts a call whose invoking principals do not include id.
type Authorizer interface {
	RequireAuth(ctx context.Context, id model.Identity) error
}

type principalsKey struct{}

// WithPrincipals returns a context that authorizes ids in addition to any
// principals already present.
func WithPrincipals(ctx context.Context, ids ...model.Identity) context.Context {
	existing := Principals(ctx)
	merged := make([]model.Identity, 0, len(existing)+len(ids))
	merged = append(merged, existing...)
	merged = append(merged, ids...)
	return context.WithValue(ctx, principalsKey{}, merged)
}

// Principals returns the identities authorized in ctx.
func Principals(ctx context.Context) []model.Identity {
	ids, _ := ctx.Value(principalsKey{}).([]model.Identity)
	return ids
}

// ContextAuthorizer authorizes identities carried by WithPrincipals.
type ContextAuthorizer struct{}

func (ContextAuthorizer) RequireAuth(ctx context.Context, id model.Identity) error {
	for _, p := range Principals(ctx) {
		if p == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, id.Hex())
}

// AllowAll authorizes every identity.
type AllowAll struct{}

func (AllowAll) RequireAuth(context.Context, model.Identity) error { return nil }

// PrincipalFromKey derives the address controlled by a hex secp256k1 key.
func PrincipalFromKey(hexKey string) (model.Identity, *ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return model.Identity{}, nil, fmt.Errorf("parse private key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), key, nil
}
