package tx

import (
	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const messageMemoType = "message"

// NewPayment builds a Payment from a payment intent. account may be empty when the
// signer fills it in (remote approval).
func NewPayment(account string, intent *model.PaymentIntent) (*Transaction, error) {
	if account != "" && !crypto.IsValidAddress(account) {
		return nil, errors.Errorf("invalid source address %q", account)
	}
	if !crypto.IsValidAddress(intent.Destination) {
		return nil, errors.Errorf("invalid destination address %q", intent.Destination)
	}
	if account == intent.Destination {
		return nil, errors.New("cannot send a payment to the sending account")
	}

	amount, err := paymentAmount(intent)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		TransactionType: TypePayment,
		Account:         account,
		Destination:     intent.Destination,
		Amount:          amount,
		DestinationTag:  intent.DestinationTag,
	}, nil
}

func paymentAmount(intent *model.PaymentIntent) (*Amount, error) {
	if intent.IsNative() {
		drops, err := common.XRPToDrops(intent.Amount)
		if err != nil {
			return nil, err
		}
		if drops == 0 {
			return nil, errors.New("payment amount must be positive")
		}
		return XRP(drops), nil
	}

	currency, err := common.EncodeCurrency(intent.Currency)
	if err != nil {
		return nil, err
	}
	if !crypto.IsValidAddress(intent.Issuer) {
		return nil, errors.Errorf("invalid issuer address %q", intent.Issuer)
	}
	v, err := common.ParseIssuedValue(intent.Amount)
	if err != nil {
		return nil, err
	}
	if v.IsZero() || v.Negative {
		return nil, errors.New("payment amount must be positive")
	}
	return Issued(currency, intent.Issuer, v.String()), nil
}

// NewTrustSet builds a TrustSet. No-rippling is always requested.
func NewTrustSet(account string, intent *model.TrustLineIntent) (*Transaction, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if account != "" && !crypto.IsValidAddress(account) {
		return nil, errors.Errorf("invalid account address %q", account)
	}
	if !crypto.IsValidAddress(intent.Issuer) {
		return nil, errors.Errorf("invalid issuer address %q", intent.Issuer)
	}
	if account == intent.Issuer {
		return nil, errors.New("an account cannot trust itself")
	}

	currency, err := common.EncodeCurrency(intent.Currency)
	if err != nil {
		return nil, err
	}
	limit, err := common.ParseIssuedValue(intent.Limit)
	if err != nil {
		return nil, err
	}
	if limit.Negative {
		return nil, errors.New("trust line limit cannot be negative")
	}

	return &Transaction{
		TransactionType: TypeTrustSet,
		Account:         account,
		LimitAmount:     Issued(currency, intent.Issuer, limit.String()),
		Flags:           TfSetNoRipple,
	}, nil
}

// NewSignIn builds the relay-only sign-in payload
func NewSignIn() *Transaction {
	return &Transaction{TransactionType: TypeSignIn}
}

// NewMessageSign builds the AccountSet carrying message as a memo.
// The ledger has no message signing primitive. This transaction is signed and never submitted:
// fee and sequence are zero so it could not be applied even if it were.
func NewMessageSign(account, publicKey, message string) *Transaction {
	return &Transaction{
		TransactionType: TypeAccountSet,
		Account:         account,
		Fee:             "0",
		Sequence:        0,
		SigningPubKey:   publicKey,
		Memos:           []MemoEnvelope{NewMemo(messageMemoType, message)},
	}
}
