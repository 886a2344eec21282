package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Identity names a ledger holder, an asset, or an authorizing principal.
type Identity = common.Address

// ParseIdentity converts a hex address into an Identity.
func ParseIdentity(input string) (Identity, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return Identity{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseIdentities converts string addresses into identities, skipping blanks.
func ParseIdentities(inputs []string) ([]Identity, error) {
	ids := make([]Identity, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		id, err := ParseIdentity(input)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
