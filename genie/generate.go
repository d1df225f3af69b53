package genie

import (
	"context"
)

// CreateWallet generates a new identity and funds it from the faucet (faucet, testnet only)
func (g *Genie) CreateWallet(ctx context.Context) (*Wallet, error) {
	f, err := g.faucetBackend("CreateWallet")
	if err != nil {
		return nil, err
	}
	return f.CreateWallet(ctx)
}

// ConnectExisting imports an identity from a family seed (faucet)
func (g *Genie) ConnectExisting(ctx context.Context, seed string) (*Wallet, error) {
	f, err := g.faucetBackend("ConnectExisting")
	if err != nil {
		return nil, err
	}
	return f.ConnectExisting(ctx, seed)
}

// Seed returns the family seed of the bound identity (faucet)
func (g *Genie) Seed() (string, error) {
	f, err := g.faucetBackend("Seed")
	if err != nil {
		return "", err
	}
	return f.Seed()
}

// PrivateKey returns the private key of the bound identity (faucet, or web3auth when requested on connect)
func (g *Genie) PrivateKey() (string, error) {
	holder, ok := g.backend.(interface{ PrivateKey() (string, error) })
	if !ok {
		return "", unsupported("PrivateKey", g.kind)
	}
	return holder.PrivateKey()
}
