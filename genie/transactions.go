package genie

import (
	"context"
)

// TransactionHistory returns the latest transactions of address, the bound identity when empty (faucet)
func (g *Genie) TransactionHistory(ctx context.Context, address string, limit int) ([]AccountTransaction, error) {
	f, err := g.faucetBackend("TransactionHistory")
	if err != nil {
		return nil, err
	}
	return f.TransactionHistory(ctx, address, limit)
}

// TrustLines lists the trust lines of address, the bound identity when empty (faucet)
func (g *Genie) TrustLines(ctx context.Context, address string) ([]TrustLine, error) {
	f, err := g.faucetBackend("TrustLines")
	if err != nil {
		return nil, err
	}
	return f.TrustLines(ctx, address)
}
