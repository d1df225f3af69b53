package genie

import (
	"context"

	"github.com/AlexZinkM/xrp-genie/internal/provider"
)

// GetBalance gets wallet balance. An unfunded account has a zero balance, not an error.
func (g *Genie) GetBalance(ctx context.Context) (*Balance, error) {
	return g.backend.GetBalance(ctx)
}

// FundAccount requests test XRP for the bound account. Mainnet always fails with ErrConfig.
func (g *Genie) FundAccount(ctx context.Context) (*Balance, error) {
	funder, ok := g.backend.(provider.Funder)
	if !ok {
		return nil, unsupported("FundAccount", g.kind)
	}
	return funder.FundAccount(ctx)
}
