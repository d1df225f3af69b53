package genie

import (
	"context"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/provider"
)

// SendPayment sends XRP or an issued currency and waits for the final result.
// A ledger or approval failure is a result with Success=false, not an error.
func (g *Genie) SendPayment(ctx context.Context, intent *PaymentIntent) (*TransactionResult, error) {
	if intent == nil {
		return nil, errors.New("payment intent is required")
	}
	res, err := g.backend.SendPayment(ctx, intent)
	if err != nil {
		return nil, err
	}
	g.logResult("Payment", res)
	return res, nil
}

// SendXRP sends amount XRP (decimal string) to destination
func (g *Genie) SendXRP(ctx context.Context, destination, amount string) (*TransactionResult, error) {
	return g.SendPayment(ctx, &PaymentIntent{Destination: destination, Amount: amount})
}

// SendToken sends an issued currency (faucet)
func (g *Genie) SendToken(ctx context.Context, destination, currency, issuer, amount string) (*TransactionResult, error) {
	f, err := g.faucetBackend("SendToken")
	if err != nil {
		return nil, err
	}
	return f.SendToken(ctx, destination, currency, issuer, amount)
}

// EstablishTrustline lets the account hold up to Limit of the issuer's currency. No-rippling is always set.
func (g *Genie) EstablishTrustline(ctx context.Context, intent *TrustLineIntent) (*TransactionResult, error) {
	if intent == nil {
		return nil, errors.New("trust line intent is required")
	}
	res, err := g.backend.EstablishTrustline(ctx, intent)
	if err != nil {
		return nil, err
	}
	g.logResult("TrustSet", res)
	return res, nil
}

// EstablishUSDCTrustline trusts the well-known USDC test issuer with the default limit (testnet only)
func (g *Genie) EstablishUSDCTrustline(ctx context.Context) (*TransactionResult, error) {
	usdc, limit, ok := g.network.USDC()
	if !ok {
		return nil, errors.Wrapf(model.ErrConfig, "no well-known USDC issuer on %s", g.network)
	}
	return g.EstablishTrustline(ctx, &TrustLineIntent{Issuer: usdc.Issuer, Currency: usdc.Currency, Limit: limit})
}

// SignMessage signs an arbitrary message. Backends without message signing return ErrUnsupported.
func (g *Genie) SignMessage(ctx context.Context, message string) (*SignedMessage, error) {
	signer, ok := g.backend.(provider.MessageSigner)
	if !ok {
		return nil, unsupported("SignMessage", g.kind)
	}
	return signer.SignMessage(ctx, message)
}

func (g *Genie) logResult(kind string, res *TransactionResult) {
	if res.Success {
		g.log.Info().Str("type", kind).Str("hash", res.Hash).Msg("Transaction succeeded")
		return
	}
	g.log.Warn().Str("type", kind).Str("hash", res.Hash).Str("result", res.Error).Msg("Transaction failed")
}
