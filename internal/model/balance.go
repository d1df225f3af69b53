package model

// Balance is an account balance. All values are decimal strings, never floats.
type Balance struct {
	XRP    string         `json:"xrp"`
	Tokens []TokenBalance `json:"tokens,omitempty"`
}

// TokenBalance is the balance of one issued asset
type TokenBalance struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// AccountState is the ledger state of an account as reported by account_info.
// Unfunded accounts are reported with Exists=false and a zero balance.
type AccountState struct {
	Address    string `json:"address"`
	Drops      uint64 `json:"drops"`
	Sequence   uint32 `json:"sequence"`
	OwnerCount uint32 `json:"ownerCount"`
	Exists     bool   `json:"exists"`
}
