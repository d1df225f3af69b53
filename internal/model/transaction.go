package model

import (
	"fmt"
	"time"
)

// SuccessCode is the ledger's canonical success result
const SuccessCode = "tesSUCCESS"

// TransactionResult is the classified outcome of a submission.
// Success is derived from the ledger result code, never from the presence of a hash.
type TransactionResult struct {
	Hash    string `json:"hash"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ClassifyResult maps a ledger result code to a TransactionResult
func ClassifyResult(hash, code string) *TransactionResult {
	if code == SuccessCode {
		return &TransactionResult{Hash: hash, Success: true}
	}
	return &TransactionResult{Hash: hash, Success: false, Error: code}
}

// FailedResult is a business failure with no ledger hash
func FailedResult(reason string) *TransactionResult {
	return &TransactionResult{Success: false, Error: reason}
}

// PaymentIntent asks to send Amount to Destination.
// An empty Currency means XRP and Amount is a decimal XRP value.
type PaymentIntent struct {
	Destination    string  `json:"destination"`
	Amount         string  `json:"amount"`
	Currency       string  `json:"currency,omitempty"`
	Issuer         string  `json:"issuer,omitempty"`
	DestinationTag *uint32 `json:"destinationTag,omitempty"`
}

// IsNative reports whether the payment moves XRP
func (p *PaymentIntent) IsNative() bool {
	return p.Currency == "" || p.Currency == "XRP"
}

// TrustLineIntent asks to trust Issuer for Currency up to Limit
type TrustLineIntent struct {
	Issuer   string `json:"issuer"`
	Currency string `json:"currency"`
	Limit    string `json:"limit"`
}

// Validate checks the intent has all fields
func (t *TrustLineIntent) Validate() error {
	if t.Issuer == "" || t.Currency == "" || t.Limit == "" {
		return fmt.Errorf("trust line needs issuer, currency and limit")
	}
	return nil
}

// TrustLine is one entry of account_lines
type TrustLine struct {
	Issuer    string `json:"issuer"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	Limit     string `json:"limit"`
	LimitPeer string `json:"limitPeer"`
	NoRipple  bool   `json:"noRipple"`
}

// AccountTransaction is one entry of account_tx
type AccountTransaction struct {
	Hash        string    `json:"hash"`
	Type        string    `json:"type"`
	Account     string    `json:"account"`
	Destination string    `json:"destination,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Fee         string    `json:"fee"`
	Result      string    `json:"result"`
	LedgerIndex uint32    `json:"ledgerIndex"`
	Validated   bool      `json:"validated"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryRequest represents request parameters for transaction history
type HistoryRequest struct {
	Address string
	Limit   int
}

// MaxHistoryLimit bounds one account_tx page
const MaxHistoryLimit = 400

// Validate validates HistoryRequest parameters.
func (r *HistoryRequest) Validate() error {
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	if r.Limit <= 0 || r.Limit > MaxHistoryLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxHistoryLimit)
	}
	return nil
}

// SignedMessage is the artifact of signing an arbitrary message.
// The ledger has no message-signing primitive: the message is carried as the memo of an
// AccountSet transaction that is signed but never submitted. TxBlob is that signed transaction.
type SignedMessage struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey,omitempty"`
	TxBlob    string `json:"txBlob,omitempty"`
}
