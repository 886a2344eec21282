package model

import "encoding/json"

// EventKind names a committed pool operation.
type EventKind string

const (
	EventInitialize EventKind = "initialize"
	EventDeposit    EventKind = "deposit"
	EventSwap       EventKind = "swap"
	EventSetFee     EventKind = "set_fee"
)

// InitializeEventData is the payload of an initialize event.
type InitializeEventData struct {
	Admin  string `json:"admin"`
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`
	FeeBps uint16 `json:"fee_bps"`
}

// DepositEventData is the payload of a deposit event.
type DepositEventData struct {
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

// SwapEventData is the payload of a swap event. Fee is the part of AmountIn
// that stayed in the pool without being priced.
type SwapEventData struct {
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Fee       string `json:"fee"`
	FeeBps    uint16 `json:"fee_bps"`
}

// SetFeeEventData is the payload of a set_fee event.
type SetFeeEventData struct {
	OldFeeBps uint16 `json:"old_fee_bps"`
	FeeBps    uint16 `json:"fee_bps"`
}

// PoolEvent is a committed pool operation with post-operation reserves.
type PoolEvent struct {
	ID        string      `json:"id"`
	Kind      EventKind   `json:"kind"`
	Pool      string      `json:"pool"`
	Actor     string      `json:"actor"`
	Timestamp string      `json:"timestamp"`
	ReserveA  string      `json:"reserve_a"`
	ReserveB  string      `json:"reserve_b"`
	Data      interface{} `json:"data"`
}

// PoolEventRecord is the JSON representation used when reading a journal back.
type PoolEventRecord struct {
	ID        string          `json:"id"`
	Kind      EventKind       `json:"kind"`
	Pool      string          `json:"pool"`
	Actor     string          `json:"actor"`
	Timestamp string          `json:"timestamp"`
	ReserveA  string          `json:"reserve_a"`
	ReserveB  string          `json:"reserve_b"`
	Data      json.RawMessage `json:"data"`
}
