package model

// TokenMeta describes an ERC20 asset backing an on-chain pool reserve.
// Symbol and Name are best effort.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}
