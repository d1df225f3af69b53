package genie

import (
	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/provider"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

type (
	Network             = model.Network
	Asset               = model.Asset
	Wallet              = model.Wallet
	Balance             = model.Balance
	TokenBalance        = model.TokenBalance
	TrustLine           = model.TrustLine
	AccountTransaction  = model.AccountTransaction
	PaymentIntent       = model.PaymentIntent
	TrustLineIntent     = model.TrustLineIntent
	TransactionResult   = model.TransactionResult
	SignedMessage       = model.SignedMessage
	SigningRequest      = model.SigningRequest
	SigningRequestState = model.SigningRequestState
	RequestStatus       = model.RequestStatus
	ProviderKind        = provider.Kind
	KeyType             = crypto.KeyType
	// Gateway is the ledger client a backend reads and submits through
	Gateway = client.XRPLClient
	// NotifyFunc receives remote signing requests as they are created
	NotifyFunc = provider.NotifyFunc
)

const (
	Testnet = model.NetworkTestnet
	Mainnet = model.NetworkMainnet

	ProviderFaucet   = provider.KindFaucet
	ProviderXaman    = provider.KindXaman
	ProviderWeb3Auth = provider.KindWeb3Auth

	Ed25519   = crypto.Ed25519
	Secp256k1 = crypto.Secp256k1
)

var (
	ErrConfig           = model.ErrConfig
	ErrUnsupported      = model.ErrUnsupported
	ErrNotConnected     = model.ErrNotConnected
	ErrRequestRejected  = model.ErrRequestRejected
	ErrRequestCancelled = model.ErrRequestCancelled
	ErrRequestExpired   = model.ErrRequestExpired
)

// VerifyMessage checks a signed message and returns the address that signed it
func VerifyMessage(m *SignedMessage) (string, error) {
	return tx.VerifyMessage(m)
}
