package model

import (
	"encoding/json"
	"testing"
)

func TestSwapEventDataJSONStringFields(t *testing.T) {
	event := PoolEvent{
		ID:   "e1",
		Kind: EventSwap,
		Data: SwapEventData{
			AssetIn:   "0x1111111111111111111111111111111111111111",
			AssetOut:  "0x2222222222222222222222222222222222222222",
			AmountIn:  "170141183460469231731687303715884105727",
			AmountOut: "90",
			Fee:       "0",
			FeeBps:    30,
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var record PoolEventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if record.Kind != EventSwap {
		t.Fatalf("kind mismatch: %s", record.Kind)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(record.Data, &decoded); err != nil {
		t.Fatalf("unmarshal data failed: %v", err)
	}
	if _, ok := decoded["amount_in"].(string); !ok {
		t.Fatalf("amount_in should be string")
	}
	if _, ok := decoded["amount_out"].(string); !ok {
		t.Fatalf("amount_out should be string")
	}
	if _, ok := decoded["fee"].(string); !ok {
		t.Fatalf("fee should be string")
	}
}
