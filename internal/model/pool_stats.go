package model

// AssetStats is the swap flow of one asset over a stats window.
type AssetStats struct {
	Asset     string `json:"asset"`
	VolumeIn  string `json:"volume_in"`
	VolumeOut string `json:"volume_out"`
	// Fees is the unpriced fraction of VolumeIn that stayed in the reserve.
	Fees    string  `json:"fees"`
	FeeRate *string `json:"fee_rate,omitempty"`
}

// PoolStats summarizes a pool's event journal over one window. An empty
// WindowStart means the whole journal.
type PoolStats struct {
	Pool           string       `json:"pool"`
	WindowStart    string       `json:"window_start,omitempty"`
	WindowEnd      string       `json:"window_end,omitempty"`
	FirstEvent     string       `json:"first_event"`
	LastEvent      string       `json:"last_event"`
	AssetA         string       `json:"asset_a,omitempty"`
	AssetB         string       `json:"asset_b,omitempty"`
	SwapCount      uint64       `json:"swap_count"`
	DepositCount   uint64       `json:"deposit_count"`
	FeeChangeCount uint64       `json:"fee_change_count"`
	DepositedA     string       `json:"deposited_a"`
	DepositedB     string       `json:"deposited_b"`
	ReserveA       string       `json:"reserve_a"`
	ReserveB       string       `json:"reserve_b"`
	Assets         []AssetStats `json:"assets"`
}
