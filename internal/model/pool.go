package model

import "math/big"

// PoolConfig is the singleton configuration record of a pool.
type PoolConfig struct {
	Admin       Identity `json:"admin"`
	AssetA      Identity `json:"asset_a"`
	AssetB      Identity `json:"asset_b"`
	FeeBps      uint16   `json:"fee_bps"`
	Initialized bool     `json:"initialized"`
}

// Counterpart returns the opposite asset of in. ok is false when in is neither
// configured asset.
func (c PoolConfig) Counterpart(in Identity) (out Identity, ok bool) {
	switch in {
	case c.AssetA:
		return c.AssetB, true
	case c.AssetB:
		return c.AssetA, true
	default:
		return Identity{}, false
	}
}

// ContractInfo is the public projection of PoolConfig.
type ContractInfo struct {
	Admin  Identity `json:"admin"`
	AssetA Identity `json:"asset_a"`
	AssetB Identity `json:"asset_b"`
	FeeBps uint16   `json:"fee_bps"`
}

// Reserves are the pool's ledger balances of both assets.
type Reserves struct {
	A *big.Int `json:"reserve_a"`
	B *big.Int `json:"reserve_b"`
}

// Balance is one holder's balance of one asset.
type Balance struct {
	Asset  Identity `json:"asset"`
	Holder Identity `json:"holder"`
	Amount string   `json:"amount"`
}
