package provider

import (
	"context"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// Kind names a signing backend
type Kind string

const (
	KindFaucet   Kind = "faucet"
	KindXaman    Kind = "xaman"
	KindWeb3Auth Kind = "web3auth"
)

// ParseKind parses a provider name
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindFaucet, KindXaman, KindWeb3Auth:
		return k, true
	}
	return "", false
}

// Provider is the capability set every signing backend offers.
// Business outcomes (ledger failure codes, rejected requests) come back as
// TransactionResult{Success:false}; errors are reserved for configuration,
// transport and capability problems.
// IsConnected reports whether an identity is bound. A dropped ledger connection does
// not clear it; the gateway redials on the next request.
type Provider interface {
	Kind() Kind
	Connect(ctx context.Context) (*model.Wallet, error)
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Wallet() *model.Wallet
	GetBalance(ctx context.Context) (*model.Balance, error)
	SendPayment(ctx context.Context, intent *model.PaymentIntent) (*model.TransactionResult, error)
	EstablishTrustline(ctx context.Context, intent *model.TrustLineIntent) (*model.TransactionResult, error)
}

// MessageSigner is implemented by backends able to sign arbitrary messages
type MessageSigner interface {
	SignMessage(ctx context.Context, message string) (*model.SignedMessage, error)
}

// Funder is implemented by backends able to request test network funds
type Funder interface {
	FundAccount(ctx context.Context) (*model.Balance, error)
}
