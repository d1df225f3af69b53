package provider

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const (
	fundingPollInterval = time.Second
	fundingTimeout      = 30 * time.Second
)

// dropsFunc reads the current XRP balance of an account in drops
type dropsFunc func(ctx context.Context) (drops uint64, exists bool, err error)

// waitForFunds polls until the balance exceeds before. Faucet payments land a ledger or two
// after the faucet answers.
func waitForFunds(ctx context.Context, clk clock.Clock, address string, before uint64, read dropsFunc) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, fundingTimeout)
	defer cancel()
	for {
		drops, exists, err := read(ctx)
		if err != nil {
			return 0, err
		}
		if exists && drops > before {
			return drops, nil
		}
		select {
		case <-ctx.Done():
			return 0, errors.Wrapf(ctx.Err(), "waiting for faucet funds on %s", address)
		case <-clk.After(fundingPollInterval):
		}
	}
}
