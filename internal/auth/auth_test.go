package auth

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestContextAuthorizer(t *testing.T) {
	req := require.New(t)

	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob := common.HexToAddress("0x2222222222222222222222222222222222222222")
	authz := ContextAuthorizer{}

	req.ErrorIs(authz.RequireAuth(context.Background(), alice), ErrUnauthorized)

	ctx := WithPrincipals(context.Background(), alice)
	req.NoError(authz.RequireAuth(ctx, alice))
	req.ErrorIs(authz.RequireAuth(ctx, bob), ErrUnauthorized)

	ctx = WithPrincipals(ctx, bob)
	req.NoError(authz.RequireAuth(ctx, alice))
	req.NoError(authz.RequireAuth(ctx, bob))
}

func TestAllowAll(t *testing.T) {
	require.NoError(t, AllowAll{}.RequireAuth(context.Background(), common.Address{}))
}

func TestPrincipalFromKey(t *testing.T) {
	req := require.New(t)

	key, err := crypto.GenerateKey()
	req.NoError(err)
	hexKey := common.Bytes2Hex(crypto.FromECDSA(key))

	id, parsed, err := PrincipalFromKey("0x" + hexKey)
	req.NoError(err)
	req.Equal(crypto.PubkeyToAddress(key.PublicKey), id)
	req.Equal(key.D, parsed.D)

	_, _, err = PrincipalFromKey("not-a-key")
	req.Error(err)
}
