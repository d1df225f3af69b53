package model

// GenerateResponse represents the result of creating and funding a new wallet
type GenerateResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Wallet  *Wallet `json:"wallet,omitempty"`
	Balance string  `json:"balance,omitempty"`
}

// AccountInfoRequest represents request for POST /xrpl/account-info
type AccountInfoRequest struct {
	Address string `json:"address"`
}

// AccountInfoResponse represents response for POST /xrpl/account-info
type AccountInfoResponse struct {
	Success  bool   `json:"success"`
	Account  string `json:"account"`
	Balance  string `json:"balance"` // drops
	XRP      string `json:"xrp"`
	Sequence uint32 `json:"sequence"`
}
