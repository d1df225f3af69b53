package tx

import (
	"encoding/hex"
	"strings"
)

// Type is the TransactionType field
type Type string

const (
	TypePayment    Type = "Payment"
	TypeAccountSet Type = "AccountSet"
	TypeTrustSet   Type = "TrustSet"
	// TypeSignIn is a pseudo transaction understood only by the remote approval relay.
	// It proves account ownership and is never encoded or submitted to the ledger.
	TypeSignIn Type = "SignIn"
)

var typeCodes = map[Type]uint16{
	TypePayment:    0,
	TypeAccountSet: 3,
	TypeTrustSet:   20,
}

// TfSetNoRipple disables rippling on the trust line
const TfSetNoRipple uint32 = 0x00020000

// Transaction is a ledger transaction in its JSON form
type Transaction struct {
	TransactionType    Type           `json:"TransactionType"`
	Account            string         `json:"Account,omitempty"`
	Destination        string         `json:"Destination,omitempty"`
	Amount             *Amount        `json:"Amount,omitempty"`
	LimitAmount        *Amount        `json:"LimitAmount,omitempty"`
	Fee                string         `json:"Fee,omitempty"`
	Flags              uint32         `json:"Flags,omitempty"`
	Sequence           uint32         `json:"Sequence,omitempty"`
	LastLedgerSequence uint32         `json:"LastLedgerSequence,omitempty"`
	NetworkID          uint32         `json:"NetworkID,omitempty"`
	SourceTag          *uint32        `json:"SourceTag,omitempty"`
	DestinationTag     *uint32        `json:"DestinationTag,omitempty"`
	SetFlag            *uint32        `json:"SetFlag,omitempty"`
	ClearFlag          *uint32        `json:"ClearFlag,omitempty"`
	Memos              []MemoEnvelope `json:"Memos,omitempty"`
	SigningPubKey      string         `json:"SigningPubKey,omitempty"`
	TxnSignature       string         `json:"TxnSignature,omitempty"`
}

// MemoEnvelope wraps a memo the way the ledger JSON nests it
type MemoEnvelope struct {
	Memo Memo `json:"Memo"`
}

// Memo fields are hex encoded
type Memo struct {
	MemoType   string `json:"MemoType,omitempty"`
	MemoData   string `json:"MemoData,omitempty"`
	MemoFormat string `json:"MemoFormat,omitempty"`
}

// NewMemo hex encodes a plain text memo
func NewMemo(memoType, data string) MemoEnvelope {
	return MemoEnvelope{Memo: Memo{
		MemoType: hexText(memoType),
		MemoData: hexText(data),
	}}
}

func hexText(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString([]byte(s)))
}
